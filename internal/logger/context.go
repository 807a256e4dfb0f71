package logger

import (
	"context"
	"log/slog"
)

type correlationKey struct{}

// WithCorrelationID stores id on ctx so components deeper in the call chain can log it
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id stored by WithCorrelationID, or ""
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// FromContext enriches log with the correlation id carried by ctx, if any
func FromContext(ctx context.Context, log *slog.Logger) *slog.Logger {
	if id := CorrelationID(ctx); id != "" {
		return log.With("correlation_id", id)
	}
	return log
}
