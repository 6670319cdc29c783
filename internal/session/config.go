package session

import "time"

// TTL policy defaults. The create TTL is deliberately short: the session only
// needs to bridge the gap between token issuance over HTTP and the realtime
// connection handshake. The grace TTL re-arms an even shorter window after a
// disconnect so a client can reconnect without recreating a session.
const (
	DefaultCreateTTL          = 20 * time.Second
	DefaultDisconnectGraceTTL = 15 * time.Second
)

// Config holds the session TTL policy.
type Config struct {
	// CreateTTL is applied when a session is created.
	CreateTTL time.Duration

	// DisconnectGraceTTL is applied to the session when its realtime
	// connection drops.
	DisconnectGraceTTL time.Duration
}

// DefaultConfig returns the compatibility defaults (20s create, 15s grace).
func DefaultConfig() Config {
	return Config{
		CreateTTL:          DefaultCreateTTL,
		DisconnectGraceTTL: DefaultDisconnectGraceTTL,
	}
}

func (c Config) withDefaults() Config {
	if c.CreateTTL <= 0 {
		c.CreateTTL = DefaultCreateTTL
	}
	if c.DisconnectGraceTTL <= 0 {
		c.DisconnectGraceTTL = DefaultDisconnectGraceTTL
	}
	return c
}
