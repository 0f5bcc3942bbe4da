package config

import (
	"testing"
	"time"
)

func TestLoadRateLimitFromEnv(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "7")
	t.Setenv("RATE_LIMIT_WINDOW", "30m")

	cfg := Load()
	if cfg.RateLimitMax != 7 {
		t.Fatalf("expected RateLimitMax 7, got %d", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow != 30*time.Minute {
		t.Fatalf("expected 30m window, got %v", cfg.RateLimitWindow)
	}
}

func TestLoadRateLimitDefaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "")
	t.Setenv("RATE_LIMIT_WINDOW", "not-a-duration")

	cfg := Load()
	if cfg.RateLimitMax != 100 {
		t.Fatalf("expected default max 100, got %d", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow != 15*time.Minute {
		t.Fatalf("expected default 15m window, got %v", cfg.RateLimitWindow)
	}
}
