package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const defaultMinThreshold = 100

// LoaderOptions describes how inputs should be read.
type LoaderOptions struct {
	// DefaultThreshold is used when min_threshold is absent or does not
	// parse as an integer. Zero means 100.
	DefaultThreshold int
}

// Load reads and validates all inputs. Any individual validation failure
// aborts the load; a partial Settings value is never returned.
//
// Each input is resolved from the GitHub Actions INPUT_* environment
// variable first, then from a plain variable of the same name, so the
// binary works both as an action step and as a local CLI.
func Load(opts LoaderOptions) (Settings, error) {
	v := viper.New()
	bindInputs(v)

	token, err := readToken(v)
	if err != nil {
		return Settings{}, err
	}

	threshold, err := readMinThreshold(v, opts.DefaultThreshold)
	if err != nil {
		return Settings{}, err
	}

	reportPath, err := readReportFilePath(v)
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		Token:             token,
		MinThreshold:      threshold,
		ReportFilePath:    reportPath,
		ShowFileBreakdown: v.GetBool("show_file_breakdown"),
	}, nil
}

func bindInputs(v *viper.Viper) {
	_ = v.BindEnv("github_token", "INPUT_GITHUB_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv("min_threshold", "INPUT_MIN_THRESHOLD", "MIN_THRESHOLD")
	_ = v.BindEnv("report_file_path", "INPUT_REPORT_FILE_PATH", "REPORT_FILE_PATH")
	_ = v.BindEnv("show_file_breakdown", "INPUT_SHOW_FILE_BREAKDOWN", "SHOW_FILE_BREAKDOWN")
	v.SetDefault("show_file_breakdown", false)
}

func readToken(v *viper.Viper) (string, error) {
	token := strings.TrimSpace(v.GetString("github_token"))
	if token == "" {
		return "", &ConfigError{Input: "github_token", Err: ErrTokenRequired}
	}
	return token, nil
}

// readMinThreshold parses the threshold input. A value that is not an
// integer falls back to the configured default; an integer outside [0,100]
// is an error.
func readMinThreshold(v *viper.Viper, fallback int) (int, error) {
	if fallback == 0 {
		fallback = defaultMinThreshold
	}

	raw := strings.TrimSpace(v.GetString("min_threshold"))
	threshold, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, nil
	}
	if threshold < 0 || threshold > 100 {
		return 0, &ConfigError{Input: "min_threshold", Err: ErrThresholdOutOfRange}
	}
	return threshold, nil
}

// readReportFilePath verifies the report path references an existing
// regular file. It is a pure existence check.
func readReportFilePath(v *viper.Viper) (string, error) {
	path := strings.TrimSpace(v.GetString("report_file_path"))
	info, err := os.Stat(path)
	if path == "" || err != nil || info.IsDir() {
		return "", &ConfigError{Input: "report_file_path", Err: ErrReportNotFound}
	}
	return path, nil
}
