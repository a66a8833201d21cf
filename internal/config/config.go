// Package config validates and normalizes the action's external inputs.
package config

import (
	"errors"
	"fmt"
)

// Validation sentinels, matchable with errors.Is.
var (
	ErrTokenRequired       = errors.New("token required")
	ErrReportNotFound      = errors.New("report not found")
	ErrThresholdOutOfRange = errors.New("min threshold must be between 0 and 100")
)

// ConfigError wraps a validation failure for one named input.
type ConfigError struct {
	Input string
	Err   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("input %s: %v", e.Input, e.Err)
}

// Unwrap exposes the underlying sentinel for errors.Is.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Settings holds the validated inputs for a single run. Constructed once by
// Load and never mutated.
type Settings struct {
	// Token authenticates against the GitHub API. Never logged.
	Token string

	// MinThreshold is the minimum acceptable coverage percentage in [0,100].
	MinThreshold int

	// ReportFilePath points at the LCOV report. Existence is verified at
	// load time; content validity is the parser's concern.
	ReportFilePath string

	// ShowFileBreakdown enables the per-file coverage table in the
	// workflow log.
	ShowFileBreakdown bool
}
