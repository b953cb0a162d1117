// Package telemetry carries per-turn correlation ids through contexts.
package telemetry

import (
	"context"

	"github.com/google/uuid"
)

type turnIDKey struct{}

// WithTurnID returns a child context that carries the provided turn ID.
func WithTurnID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, turnIDKey{}, id)
}

// TurnIDFromContext returns the turn ID from ctx, if present and non-empty.
func TurnIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	s, ok := ctx.Value(turnIDKey{}).(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// EnsureTurnID reuses the caller's turn ID or mints a new one.
func EnsureTurnID(ctx context.Context) (context.Context, string) {
	if id, ok := TurnIDFromContext(ctx); ok {
		return ctx, id
	}
	id := "turn-" + uuid.NewString()
	return WithTurnID(ctx, id), id
}
