package app

import (
	"testing"
	"time"

	"github.com/VaheKhachatryan/InTechTestAppSln/internal/session"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.HTTPAddr != "0.0.0.0:8080" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.RedisAddr != "127.0.0.1:6379" {
		t.Fatalf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.CacheInstance != "intech" {
		t.Fatalf("CacheInstance = %q", cfg.CacheInstance)
	}
	if cfg.CacheDefaultTTL != 900*time.Second {
		t.Fatalf("CacheDefaultTTL = %v", cfg.CacheDefaultTTL)
	}
	if cfg.SessionCreateTTL != session.DefaultCreateTTL || cfg.SessionGraceTTL != session.DefaultDisconnectGraceTTL {
		t.Fatalf("session TTLs = %v / %v", cfg.SessionCreateTTL, cfg.SessionGraceTTL)
	}
	if !cfg.MetricsEnabled || !cfg.ReadinessRequireStore {
		t.Fatalf("feature toggles = %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("INTECH_HTTP_ADDR", "127.0.0.1:9999")
	t.Setenv("INTECH_LOG_LEVEL", "debug")
	t.Setenv("INTECH_SESSION_CREATE_TTL", "45s")
	t.Setenv("INTECH_SESSION_GRACE_TTL", "5s")
	t.Setenv("INTECH_METRICS_ENABLED", "false")
	t.Setenv("INTECH_REDIS_DB", "3")

	cfg := LoadConfig()

	if cfg.HTTPAddr != "127.0.0.1:9999" || cfg.LogLevel != "debug" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.SessionCreateTTL != 45*time.Second || cfg.SessionGraceTTL != 5*time.Second {
		t.Fatalf("session TTLs = %v / %v", cfg.SessionCreateTTL, cfg.SessionGraceTTL)
	}
	if cfg.MetricsEnabled {
		t.Fatalf("metrics toggle not applied")
	}
	if cfg.RedisDB != 3 {
		t.Fatalf("RedisDB = %d", cfg.RedisDB)
	}

	sc := cfg.SessionConfig()
	if sc.CreateTTL != 45*time.Second || sc.DisconnectGraceTTL != 5*time.Second {
		t.Fatalf("SessionConfig() = %+v", sc)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("T_STR", "  value  ")
	t.Setenv("T_BOOL", "true")
	t.Setenv("T_BOOL_BAD", "yep")
	t.Setenv("T_INT", "42")
	t.Setenv("T_INT_NEG", "-5")
	t.Setenv("T_DUR", "2m")
	t.Setenv("T_DUR_BAD", "soon")

	if got := EnvString("T_STR", "d"); got != "value" {
		t.Fatalf("EnvString = %q", got)
	}
	if got := EnvString("T_MISSING", "d"); got != "d" {
		t.Fatalf("EnvString default = %q", got)
	}
	if !EnvBool("T_BOOL", false) {
		t.Fatalf("EnvBool true not parsed")
	}
	if !EnvBool("T_BOOL_BAD", true) {
		t.Fatalf("EnvBool must fall back on parse error")
	}
	if got := EnvInt("T_INT", 0); got != 42 {
		t.Fatalf("EnvInt = %d", got)
	}
	if got := EnvInt("T_INT_NEG", 7); got != 7 {
		t.Fatalf("EnvInt must reject negatives, got %d", got)
	}
	if got := EnvDuration("T_DUR", time.Second); got != 2*time.Minute {
		t.Fatalf("EnvDuration = %v", got)
	}
	if got := EnvDuration("T_DUR_BAD", time.Second); got != time.Second {
		t.Fatalf("EnvDuration must fall back on parse error, got %v", got)
	}
}
