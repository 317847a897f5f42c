// Package logging owns the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

var level = new(slog.LevelVar)

var logger = slog.New(newHandler())

// Logger returns the process logger.
func Logger() *slog.Logger {
	return logger
}

// SetLevel adjusts the minimum level of the process logger.
func SetLevel(l slog.Level) {
	level.Set(l)
}

func newHandler() slog.Handler {
	opts := &tint.Options{Level: level}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		opts.NoColor = true
	}
	return tint.NewHandler(os.Stderr, opts)
}
