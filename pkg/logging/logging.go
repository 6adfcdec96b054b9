// Package logging builds the process-wide zap loggers used across eventq.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// NewSugaredLogger returns the process logger. Verbose selects zap's
// development preset (debug level, console encoding); otherwise the
// production preset (info level, JSON) is used.
func NewSugaredLogger(verbose bool) (*zap.SugaredLogger, error) {
	build := zap.NewProduction
	if verbose {
		build = zap.NewDevelopment
	}

	l, err := build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l.Sugar(), nil
}

// Nop returns a logger that discards everything. Useful as a default when
// callers do not wire a logger of their own.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
