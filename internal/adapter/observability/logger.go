// Package observability provides the structured logger used across the
// action.
package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"
)

// Logger provides leveled structured logging.
type Logger interface {
	LogDebug(ctx context.Context, message string, fields map[string]any)
	LogInfo(ctx context.Context, message string, fields map[string]any)
	LogError(ctx context.Context, message string, fields map[string]any)
}

// LogLevel defines the logging verbosity.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelError
)

// LogFormat defines the output format.
type LogFormat int

const (
	LogFormatHuman LogFormat = iota
	LogFormatJSON
)

// ParseLevel maps a LOG_LEVEL value to a LogLevel, defaulting to info.
func ParseLevel(value string) LogLevel {
	switch strings.ToLower(value) {
	case "debug":
		return LogLevelDebug
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// ParseFormat maps a LOG_FORMAT value to a LogFormat. An empty value picks
// human output on a terminal and JSON otherwise, which keeps Actions logs
// machine-parseable without configuration.
func ParseFormat(value string) LogFormat {
	switch strings.ToLower(value) {
	case "human":
		return LogFormatHuman
	case "json":
		return LogFormatJSON
	default:
		if term.IsTerminal(int(os.Stderr.Fd())) {
			return LogFormatHuman
		}
		return LogFormatJSON
	}
}

// DefaultLogger writes leveled logs through the standard logger.
type DefaultLogger struct {
	level  LogLevel
	format LogFormat
}

// NewLogger creates a logger with the given level and format.
func NewLogger(level LogLevel, format LogFormat) *DefaultLogger {
	return &DefaultLogger{level: level, format: format}
}

// LogDebug logs a debug message.
func (l *DefaultLogger) LogDebug(ctx context.Context, message string, fields map[string]any) {
	if l.level > LogLevelDebug {
		return
	}
	l.emit("debug", message, fields)
}

// LogInfo logs an informational message.
func (l *DefaultLogger) LogInfo(ctx context.Context, message string, fields map[string]any) {
	if l.level > LogLevelInfo {
		return
	}
	l.emit("info", message, fields)
}

// LogError logs an error message.
func (l *DefaultLogger) LogError(ctx context.Context, message string, fields map[string]any) {
	l.emit("error", message, fields)
}

func (l *DefaultLogger) emit(level, message string, fields map[string]any) {
	if l.format == LogFormatJSON {
		entry := make(map[string]any, len(fields)+2)
		for k, v := range fields {
			entry[k] = v
		}
		entry["level"] = level
		entry["message"] = message
		data, err := json.Marshal(entry)
		if err != nil {
			log.Printf(`{"level":"error","message":"marshal log entry: %v"}`, err)
			return
		}
		log.Print(string(data))
		return
	}

	if len(fields) == 0 {
		log.Printf("[%s] %s", strings.ToUpper(level), message)
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	log.Printf("[%s] %s (%s)", strings.ToUpper(level), message, strings.Join(pairs, ", "))
}
