package telemetry

import "github.com/google/uuid"

// NewTurnID returns a fresh identifier correlating all events of one turn.
func NewTurnID() string {
	return uuid.NewString()
}
