// Package cache implements the distributed expiring key-value store backing
// the session layer. Values are JSON-serialized and namespaced under an
// instance prefix so several server instances can share one Redis database.
package cache

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrStoreUnavailable is returned when the backing store cannot be reached.
	// Transient: callers may retry.
	ErrStoreUnavailable = errors.New("cache store unavailable")

	// ErrCorruptValue is returned when a stored value cannot be (de)serialized.
	// Non-retryable.
	ErrCorruptValue = errors.New("cache value corrupt")
)

// DefaultTTL is the cache time applied when a caller does not specify one.
const DefaultTTL = 900 * time.Second

// entry is the stored representation of a cached value.
// The set-time TTL is recorded alongside the payload so a sliding refresh
// (Exists with refresh=true) can restore the originally configured duration.
type entry struct {
	TTLSeconds int64           `json:"t"`
	Value      json.RawMessage `json:"v"`
}
