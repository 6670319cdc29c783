package realtime

import (
	"crypto/rand"
	"encoding/hex"
)

// NewRandomHex returns a random hex string of length 2*nBytes. The gateway
// uses it as the fallback connection id when ULID generation fails.
// nBytes <= 0 defaults to 16 bytes (32 hex chars).
func NewRandomHex(nBytes int) string {
	if nBytes <= 0 {
		nBytes = 16
	}

	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		// Effectively unreachable; an empty id is its own signal in the logs.
		return ""
	}
	return hex.EncodeToString(b)
}
