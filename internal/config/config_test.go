package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.BoardPollInterval != 30*time.Second {
		t.Errorf("expected default poll interval 30s, got %s", cfg.BoardPollInterval)
	}
	if cfg.BoardCacheTTL != 15*time.Second {
		t.Errorf("expected default cache ttl 15s, got %s", cfg.BoardCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BOARD_POLL_INTERVAL", "10s")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.BoardPollInterval != 10*time.Second {
		t.Errorf("expected poll interval 10s, got %s", cfg.BoardPollInterval)
	}
	if !cfg.RedisTLS {
		t.Error("expected redis tls enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadBadDuration(t *testing.T) {
	t.Setenv("BOARD_POLL_INTERVAL", "not-a-duration")
	cfg := Load()
	if cfg.BoardPollInterval != 30*time.Second {
		t.Errorf("bad duration should fall back to default, got %s", cfg.BoardPollInterval)
	}
}
