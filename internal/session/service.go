package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/VaheKhachatryan/InTechTestAppSln/internal/cache"
)

// Service owns the canonical session representation in the cache.
type Service struct {
	log   *slog.Logger
	cache *cache.Manager
	cfg   Config

	// newToken generates an opaque, unguessable session token
	// (128-bit random rendered as text). Injectable for tests.
	newToken func() string
}

// NewService constructs a session Service on top of the cache manager.
func NewService(log *slog.Logger, cacheMgr *cache.Manager, cfg Config) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		log:      log,
		cache:    cacheMgr,
		cfg:      cfg.withDefaults(),
		newToken: uuid.NewString,
	}
}

// Config returns the TTL policy the service was built with.
func (s *Service) Config() Config { return s.cfg }

// Create validates the identity, generates a fresh token, and stores the
// session under it with the create TTL. The token is the sole credential
// required to fetch or refresh the session.
func (s *Service) Create(ctx context.Context, sess Session) (string, error) {
	if sess.UserID == "" || sess.UserName == "" {
		return "", ErrInvalidSession
	}

	token := s.newToken()

	exists, err := s.cache.Exists(ctx, token, false)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrDuplicateSession
	}

	if err := s.cache.Set(ctx, token, sess, s.cfg.CreateTTL); err != nil {
		return "", err
	}

	s.log.Info("session.create", "user_id", sess.UserID, "ttl", s.cfg.CreateTTL)
	return token, nil
}

// Exists reports whether the token maps to a live session. No refresh.
func (s *Service) Exists(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, ErrInvalidArgument
	}
	return s.cache.Exists(ctx, token, false)
}

// Get returns the session stored under token. An expired or missing session
// yields (Session{}, false, nil): absence is a recoverable condition, not an
// error.
func (s *Service) Get(ctx context.Context, token string) (Session, bool, error) {
	if token == "" {
		return Session{}, false, ErrInvalidArgument
	}

	var sess Session
	ok, err := s.cache.Get(ctx, token, &sess)
	if err != nil || !ok {
		return Session{}, ok, err
	}
	return sess, true, nil
}

// RefreshExpiry extends the session's TTL without altering the payload.
func (s *Service) RefreshExpiry(ctx context.Context, token string, ttl time.Duration) error {
	if token == "" || ttl <= 0 {
		return ErrInvalidArgument
	}
	return s.cache.RefreshExpiry(ctx, token, ttl)
}
