// Package logger builds the bullets loggers used across gitlab-backport.
//
// Usage:
//
//	log := logger.NewLogger("debug")
//	log.Debug("Fetching target branch")
//
//	silentLog := logger.NoLogger() // Suppresses all output
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sgaunet/bullets"
)

// ParseLevel maps a textual level to a bullets level.
// Unknown values fall back to info; matching is case-insensitive.
func ParseLevel(logLevel string) bullets.Level {
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
	case "debug":
		return bullets.DebugLevel
	case "warn", "warning":
		return bullets.WarnLevel
	case "error":
		return bullets.ErrorLevel
	default:
		return bullets.InfoLevel
	}
}

// NewLogger creates a logger writing to stdout at the given level.
func NewLogger(logLevel string) *bullets.Logger {
	return NewLoggerTo(os.Stdout, logLevel)
}

// NewLoggerTo creates a logger writing to w at the given level.
func NewLoggerTo(w io.Writer, logLevel string) *bullets.Logger {
	logger := bullets.New(w)
	logger.SetLevel(ParseLevel(logLevel))
	return logger
}

// NoLogger creates a logger that suppresses all output by setting the level to Fatal.
func NoLogger() *bullets.Logger {
	logger := bullets.New(io.Discard)
	logger.SetLevel(bullets.FatalLevel)
	return logger
}
