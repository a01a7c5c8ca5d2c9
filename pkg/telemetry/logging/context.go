package logging

import (
	"context"
	"log/slog"
)

type contextKey string

const compileIDKey contextKey = "compile_id"

// WithCompileID attaches a compile ID to ctx.
func WithCompileID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, compileIDKey, id)
}

// CompileID returns the compile ID carried by ctx, or "".
func CompileID(ctx context.Context) string {
	id, _ := ctx.Value(compileIDKey).(string)
	return id
}

// FromContext returns logger annotated with the compile ID in ctx, if any.
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if id := CompileID(ctx); id != "" {
		return logger.With("compile_id", id)
	}
	return logger
}
