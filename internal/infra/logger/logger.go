package logger

import (
	"log/slog"
	"os"
)

var Logger *slog.Logger

// New creates the process-wide JSON logger. Level comes from LOG_LEVEL.
func New() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	})
	Logger = slog.New(handler)
	return Logger
}
