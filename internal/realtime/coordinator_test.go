package realtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/VaheKhachatryan/InTechTestAppSln/internal/cache"
	"github.com/VaheKhachatryan/InTechTestAppSln/internal/session"
)

type recordingNotifier struct {
	stopped []string
}

func (n *recordingNotifier) ForceStop(connectionID string) {
	n.stopped = append(n.stopped, connectionID)
}

func newTestCoordinator(t *testing.T) (*Coordinator, *session.Service, *recordingNotifier, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	sessions := session.NewService(nil, cache.NewManager(rdb, "test", 0), session.DefaultConfig())
	notifier := &recordingNotifier{}
	return NewCoordinator(nil, sessions, NewRegistry(), notifier, nil), sessions, notifier, mr
}

func TestConnectRejectsMissingOrExpiredToken(t *testing.T) {
	c, sessions, _, mr := newTestCoordinator(t)
	ctx := context.Background()

	if _, err := c.Connect(ctx, "", "c1"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("empty token: %v", err)
	}
	if _, err := c.Connect(ctx, "no-such-token", "c1"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("unknown token: %v", err)
	}

	token, err := sessions.Create(ctx, session.Session{UserID: "1", UserName: "n"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	mr.FastForward(session.DefaultCreateTTL + time.Second)

	if _, err := c.Connect(ctx, token, "c1"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expired token: %v", err)
	}
	if c.Registry().Len() != 0 {
		t.Fatalf("registry must stay empty after rejections, len=%d", c.Registry().Len())
	}
}

func TestConnectRegistersIdentity(t *testing.T) {
	c, sessions, notifier, _ := newTestCoordinator(t)
	ctx := context.Background()

	token, err := sessions.Create(ctx, session.Session{UserID: "7", UserName: "ani"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	identity, err := c.Connect(ctx, token, "c1")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if identity != "7-ani" {
		t.Fatalf("identity = %q", identity)
	}
	if got := c.Registry().Connections(identity); len(got) != 1 || got[0] != "c1" {
		t.Fatalf("registry = %v", got)
	}
	if len(notifier.stopped) != 0 {
		t.Fatalf("unexpected evictions: %v", notifier.stopped)
	}
}

func TestReconnectEvictsStaleConnection(t *testing.T) {
	c, sessions, notifier, _ := newTestCoordinator(t)
	ctx := context.Background()

	token, err := sessions.Create(ctx, session.Session{UserID: "7", UserName: "ani"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := c.Connect(ctx, token, "c1"); err != nil {
		t.Fatalf("first connect: %v", err)
	}
	identity, err := c.Connect(ctx, token, "c2")
	if err != nil {
		t.Fatalf("second connect: %v", err)
	}

	if got := c.Registry().Connections(identity); len(got) != 1 || got[0] != "c2" {
		t.Fatalf("expected only the new connection, got %v", got)
	}
	if len(notifier.stopped) != 1 || notifier.stopped[0] != "c1" {
		t.Fatalf("expected c1 force-stopped, got %v", notifier.stopped)
	}
}

func TestReconnectWithFreshTokenEvictsByIdentity(t *testing.T) {
	c, sessions, notifier, _ := newTestCoordinator(t)
	ctx := context.Background()

	// Two distinct tokens for the same identity still collapse to one
	// live connection: eviction is keyed by identity, not token.
	t1, err := sessions.Create(ctx, session.Session{UserID: "7", UserName: "ani"})
	if err != nil {
		t.Fatalf("create t1: %v", err)
	}
	t2, err := sessions.Create(ctx, session.Session{UserID: "7", UserName: "ani"})
	if err != nil {
		t.Fatalf("create t2: %v", err)
	}
	if t1 == t2 {
		t.Fatalf("expected distinct tokens")
	}

	if _, err := c.Connect(ctx, t1, "c1"); err != nil {
		t.Fatalf("connect t1: %v", err)
	}
	identity, err := c.Connect(ctx, t2, "c2")
	if err != nil {
		t.Fatalf("connect t2: %v", err)
	}

	if got := c.Registry().Connections(identity); len(got) != 1 || got[0] != "c2" {
		t.Fatalf("registry = %v", got)
	}
	if len(notifier.stopped) != 1 || notifier.stopped[0] != "c1" {
		t.Fatalf("stopped = %v", notifier.stopped)
	}
}

func TestConnectIsIdempotentForSameConnection(t *testing.T) {
	c, sessions, notifier, _ := newTestCoordinator(t)
	ctx := context.Background()

	token, err := sessions.Create(ctx, session.Session{UserID: "1", UserName: "n"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := c.Connect(ctx, token, "c1"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	identity, err := c.Connect(ctx, token, "c1")
	if err != nil {
		t.Fatalf("re-connect: %v", err)
	}

	// The same connection id never evicts itself.
	if len(notifier.stopped) != 0 {
		t.Fatalf("self-eviction: %v", notifier.stopped)
	}
	if got := c.Registry().Connections(identity); len(got) != 1 {
		t.Fatalf("registry = %v", got)
	}
}

func TestDisconnectRemovesConnectionAndArmsGrace(t *testing.T) {
	c, sessions, _, mr := newTestCoordinator(t)
	ctx := context.Background()

	token, err := sessions.Create(ctx, session.Session{UserID: "7", UserName: "ani"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	identity, err := c.Connect(ctx, token, "c1")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	c.Disconnect(ctx, token, "c1", identity)

	if got := c.Registry().Connections(identity); len(got) != 0 {
		t.Fatalf("registry not cleaned: %v", got)
	}
	if ttl := mr.TTL("test:" + token); ttl != session.DefaultDisconnectGraceTTL {
		t.Fatalf("grace ttl = %v, want %v", ttl, session.DefaultDisconnectGraceTTL)
	}

	// Inside the grace window the token still admits a reconnect.
	mr.FastForward(session.DefaultDisconnectGraceTTL - time.Second)
	if _, err := c.Connect(ctx, token, "c2"); err != nil {
		t.Fatalf("reconnect inside grace window: %v", err)
	}
}

func TestDisconnectAfterStoreLossStillCleansRegistry(t *testing.T) {
	c, sessions, _, mr := newTestCoordinator(t)
	ctx := context.Background()

	token, err := sessions.Create(ctx, session.Session{UserID: "1", UserName: "n"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	identity, err := c.Connect(ctx, token, "c1")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	mr.Close()

	// Refresh fails against the dead store; cleanup must proceed anyway.
	c.Disconnect(ctx, token, "c1", identity)
	if got := c.Registry().Connections(identity); len(got) != 0 {
		t.Fatalf("registry not cleaned: %v", got)
	}
}
