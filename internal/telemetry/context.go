package telemetry

import "context"

type turnIDKey struct{}

// WithTurnID attaches a turn ID to the context. A nil ctx is promoted to
// context.Background.
func WithTurnID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, turnIDKey{}, id)
}

// TurnIDFromContext extracts the turn ID carried by ctx. The second return
// is false when no non-empty string ID is present.
func TurnIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(turnIDKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
