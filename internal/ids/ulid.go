// Package ids provides the ULID primitives used for connection and envelope
// identifiers.
package ids

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewULID returns a 26-character ULID for the given timestamp (zero means
// now). ULIDs sort lexicographically by time, which keeps connection and
// envelope ids ordered and greppable in logs.
func NewULID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
