package realtime

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/VaheKhachatryan/InTechTestAppSln/internal/metrics"
	"github.com/VaheKhachatryan/InTechTestAppSln/internal/session"
)

var (
	// ErrSessionExpired means the handshake token is missing, unknown, or expired.
	// User-facing rejection, not a bug.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionGone means the session vanished between the existence check and
	// the fetch (concurrent expiry). Surfaced to the client as an unknown error.
	ErrSessionGone = errors.New("session vanished")
)

// Notifier delivers eviction notifications to live connections.
// Delivery is fire-and-forget; failures never block admission.
type Notifier interface {
	ForceStop(connectionID string)
}

// Coordinator orchestrates the connect/disconnect lifecycle: it validates the
// session, resolves identity, evicts stale connections for that identity, and
// keeps the registry consistent.
type Coordinator struct {
	log      *slog.Logger
	sessions *session.Service
	registry *Registry
	notifier Notifier
	graceTTL time.Duration
	metrics  *metrics.Set
}

// NewCoordinator constructs a presence Coordinator. sessions and registry
// are required; notifier and m may be nil.
func NewCoordinator(log *slog.Logger, sessions *session.Service, registry *Registry, notifier Notifier, m *metrics.Set) *Coordinator {
	if log == nil {
		log = slog.Default()
	}

	return &Coordinator{
		log:      log,
		sessions: sessions,
		registry: registry,
		notifier: notifier,
		graceTTL: sessions.Config().DisconnectGraceTTL,
		metrics:  m,
	}
}

// Registry exposes the connection registry (read-mostly; used by handlers and tests).
func (c *Coordinator) Registry() *Registry { return c.registry }

// Connect admits a new connection for the session identified by token.
//
// Prior connections for the same identity are evicted before the new one is
// registered, so at most one live connection per identity is the steady state.
// Two simultaneous connects for one identity race; the registry's per-key
// atomicity keeps the final set consistent even if the winner is not
// deterministic.
//
// Returns the identity key on success. Failures are tagged: ErrSessionExpired
// for a missing/expired token, ErrSessionGone for the check/fetch race; any
// other error is a store failure.
func (c *Coordinator) Connect(ctx context.Context, token, connectionID string) (string, error) {
	if token == "" {
		return "", ErrSessionExpired
	}

	ok, err := c.sessions.Exists(ctx, token)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrSessionExpired
	}

	sess, ok, err := c.sessions.Get(ctx, token)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrSessionGone
	}

	identityKey := sess.IdentityKey()

	for _, stale := range c.registry.Connections(identityKey) {
		if stale == connectionID {
			continue
		}
		if c.notifier != nil {
			c.notifier.ForceStop(stale)
		}
		c.registry.Remove(identityKey, stale)
		c.metrics.Evicted()
		c.log.Info("presence.evict", "identity", identityKey, "stale_id", stale, "new_id", connectionID)
	}

	c.registry.Add(identityKey, connectionID)
	c.metrics.ConnOpened()
	c.log.Info("presence.connect", "identity", identityKey, "connection_id", connectionID)

	return identityKey, nil
}

// Disconnect cleans up after a closed connection (any reason: timeout, client
// close, or forced eviction) and re-arms the session's grace window so the
// client can reconnect briefly without recreating a session.
//
// The expiry refresh is best-effort: its failure never prevents cleanup.
func (c *Coordinator) Disconnect(ctx context.Context, token, connectionID, identityKey string) {
	if identityKey != "" {
		c.registry.Remove(identityKey, connectionID)
		c.metrics.ConnClosed()
		c.log.Info("presence.disconnect", "identity", identityKey, "connection_id", connectionID)
	}

	if token == "" {
		return
	}
	if err := c.sessions.RefreshExpiry(ctx, token, c.graceTTL); err != nil {
		c.log.Info("presence.disconnect.refresh_fail", "connection_id", connectionID, "err", err)
	}
}
