package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Verbose mode lowers the
// level to Debug so per-request upstream traffic becomes visible.
func New(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
