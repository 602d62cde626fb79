// Package logging carries a structured logger through contexts.
package logging

import (
	"context"
	"log/slog"
)

type loggerContextKey struct{}

// FromContext returns the logger stored in ctx, or a fallback based on slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default().With(slog.String("logger", "fallback"))
	}
	return logger
}

// AddToContext returns a copy of ctx carrying logger.
func AddToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// AddMetaToContext returns a copy of ctx whose logger also records args.
func AddMetaToContext(ctx context.Context, args ...slog.Attr) context.Context {
	logger := FromContext(ctx)

	anySlice := make([]any, len(args))
	for i, arg := range args {
		anySlice[i] = arg
	}

	return AddToContext(ctx, logger.With(anySlice...))
}
