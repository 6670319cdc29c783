// Package app wires the InTech server runtime: config, logging, the cache
// store, the session service, the HTTP routes, and the realtime gateway.
//
// Components are constructed with their dependencies passed at creation; there
// is no ambient global lookup.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/VaheKhachatryan/InTechTestAppSln/internal/cache"
	"github.com/VaheKhachatryan/InTechTestAppSln/internal/metrics"
	"github.com/VaheKhachatryan/InTechTestAppSln/internal/realtime"
	"github.com/VaheKhachatryan/InTechTestAppSln/internal/session"
	"github.com/VaheKhachatryan/InTechTestAppSln/internal/sessionapi"
)

// App is the server runtime: it owns the HTTP server wiring and every
// long-lived dependency (Redis client, hub, registry, gateway).
type App struct {
	cfg Config
	log Logger

	rdb      *redis.Client
	cache    *cache.Manager
	sessions *session.Service

	hub      *realtime.Hub
	registry *realtime.Registry
	presence *realtime.Coordinator
	ws       *realtime.WSGateway

	api *sessionapi.Handler

	metrics *metrics.Set
	promReg *prometheus.Registry
}

// New constructs a fully wired App instance from config and logger.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	rdb, err := NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var (
		promReg *prometheus.Registry
		mset    *metrics.Set
	)
	if cfg.MetricsEnabled {
		promReg = prometheus.NewRegistry()
		promReg.MustRegister(collectors.NewGoCollector())
		mset = metrics.New(promReg)
	}

	cacheMgr := cache.NewManager(rdb, cfg.CacheInstance, cfg.CacheDefaultTTL)
	sessions := session.NewService(log, cacheMgr, cfg.SessionConfig())

	hub := realtime.NewHub(log)
	registry := realtime.NewRegistry()
	presence := realtime.NewCoordinator(log, sessions, registry, hub, mset)
	ws := realtime.NewWSGateway(log, hub, presence, mset)

	api := sessionapi.NewHandler(log, sessions, mset)

	return &App{
		cfg:      cfg,
		log:      log,
		rdb:      rdb,
		cache:    cacheMgr,
		sessions: sessions,
		hub:      hub,
		registry: registry,
		presence: presence,
		ws:       ws,
		api:      api,
		metrics:  mset,
		promReg:  promReg,
	}, nil
}

// Cache exposes the cache manager (used by tooling and tests).
func (a *App) Cache() *cache.Manager { return a.cache }

// Sessions exposes the session service (used by tooling and tests).
func (a *App) Sessions() *session.Service { return a.sessions }

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.rdb, a.ws, a.api, a.promReg)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(mux, a.log),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "redis", a.cfg.RedisAddr, "instance", a.cfg.CacheInstance)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.rdb.Close(); err != nil {
		a.log.Error("redis.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
