package app

import (
	"time"

	"github.com/VaheKhachatryan/InTechTestAppSln/internal/session"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// Cache backing store (Redis).
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// CacheInstance namespaces every cache key for this server instance.
	CacheInstance string

	// CacheDefaultTTL is the cache time applied when callers do not specify one.
	CacheDefaultTTL time.Duration

	// Session TTL policy (compatibility defaults: 20s create, 15s grace).
	SessionCreateTTL time.Duration
	SessionGraceTTL  time.Duration

	MetricsEnabled        bool
	ReadinessRequireStore bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("INTECH_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("INTECH_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("INTECH_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("INTECH_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("INTECH_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("INTECH_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("INTECH_HTTP_MAX_HEADER_BYTES", 1<<20),

		RedisAddr:     EnvString("INTECH_REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: EnvString("INTECH_REDIS_PASSWORD", ""),
		RedisDB:       EnvInt("INTECH_REDIS_DB", 0),

		CacheInstance:   EnvString("INTECH_CACHE_INSTANCE", "intech"),
		CacheDefaultTTL: EnvDuration("INTECH_CACHE_DEFAULT_TTL", 900*time.Second),

		SessionCreateTTL: EnvDuration("INTECH_SESSION_CREATE_TTL", session.DefaultCreateTTL),
		SessionGraceTTL:  EnvDuration("INTECH_SESSION_GRACE_TTL", session.DefaultDisconnectGraceTTL),

		MetricsEnabled:        EnvBool("INTECH_METRICS_ENABLED", true),
		ReadinessRequireStore: EnvBool("INTECH_READINESS_REQUIRE_STORE", true),
	}
}

// SessionConfig derives the session TTL policy from app config.
func (c Config) SessionConfig() session.Config {
	return session.Config{
		CreateTTL:          c.SessionCreateTTL,
		DisconnectGraceTTL: c.SessionGraceTTL,
	}
}
