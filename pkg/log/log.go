package log

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var (
	// logger is the global logger instance
	logger atomic.Pointer[slog.Logger]
	// level controls the log level
	level = new(slog.LevelVar)
	// output is where new handlers write
	output atomic.Pointer[io.Writer]
	// jsonFormat switches handlers to JSON lines (server mode)
	jsonFormat atomic.Bool
)

func init() {
	// Default to warning level (quiet mode)
	level.Set(slog.LevelWarn)
	var w io.Writer = os.Stderr
	output.Store(&w)
	rebuild()
}

func rebuild() {
	w := *output.Load()
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if jsonFormat.Load() {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	logger.Store(slog.New(h))
}

// SetVerbose enables debug logging
func SetVerbose(verbose bool) {
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelWarn)
	}
}

// SetQuiet disables all logging except errors
func SetQuiet(quiet bool) {
	if quiet {
		level.Set(slog.LevelError)
	}
}

// SetLevel sets the minimum level directly.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// SetJSON switches between JSON and text output
func SetJSON(enabled bool) {
	jsonFormat.Store(enabled)
	rebuild()
}

// SetOutput changes the log output destination
func SetOutput(w io.Writer) {
	output.Store(&w)
	rebuild()
}

// Logger returns the current logger
func Logger() *slog.Logger {
	return logger.Load()
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	logger.Load().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	logger.Load().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	logger.Load().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	logger.Load().Error(msg, args...)
}

// With returns a logger with the given attributes
func With(args ...any) *slog.Logger {
	return logger.Load().With(args...)
}
