package realtime

import (
	"time"

	"github.com/VaheKhachatryan/InTechTestAppSln/internal/ids"
)

// NewConnectionID returns a ULID used as the websocket connection id.
// ULID is preferable to random hex for tracing and ordering in logs.
func NewConnectionID(now time.Time) (string, error) {
	return ids.NewULID(now)
}

// NewEnvelopeID returns a ULID used as envelope id.
// This keeps IDs uniform across the system.
func NewEnvelopeID(now time.Time) (string, error) {
	return ids.NewULID(now)
}
