package logger

import (
	"context"
	"log/slog"
)

type ContextKey string

// RequestIDKey carries the request ID assigned at the HTTP boundary through
// the orchestration loop.
const RequestIDKey ContextKey = "newsqa.request.id"

// WithRequestID stamps a request ID onto the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestIDFrom returns the request ID from the context, or "".
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
