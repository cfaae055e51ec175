// Package logging provides the structured debug log (slog) and the
// user-facing CLI output helpers.
//
//	logging.Debug("catalog refreshed", "presets", n)
//	logging.UserSuccess("Saved preset %s", id)
//
// UserInfo and UserSuccess write to stdout; UserWarning and UserError write
// to stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	// Logger is the process-wide structured logger.
	Logger *slog.Logger

	// Verbose enables debug logging.
	Verbose bool
)

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Setup configures the logger. A nil writer means stderr.
func Setup(verbose bool, jsonOutput bool, w io.Writer) {
	Verbose = verbose

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if w == nil {
		w = os.Stderr
	}
	if jsonOutput {
		Logger = slog.New(slog.NewJSONHandler(w, opts))
	} else {
		Logger = slog.New(slog.NewTextHandler(w, opts))
	}
}

// ParseLevel maps a settings-file level name onto verbosity. Only "debug"
// turns on debug output.
func ParseLevel(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), "debug")
}

func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// With returns a logger with additional attributes.
func With(args ...any) *slog.Logger {
	return Logger.With(args...)
}
