package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:5000/api" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second || cfg.API.RetryMaxElapsed != 0 {
		t.Fatalf("unexpected api timings %+v", cfg.API)
	}
	if cfg.Session.Backend != BackendMemory || cfg.Session.IdleEvict != 30*time.Minute || cfg.Session.GateSettle != 2*time.Second {
		t.Fatalf("unexpected session config %+v", cfg.Session)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development by default")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":                   "production",
		"COOKIE_SECRET":         "s3cret",
		"SESSION_BACKEND":       "redis",
		"REDIS_ADDR":            "redis:6379",
		"API_RETRY_MAX_ELAPSED": "3s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Session.Backend != BackendRedis || cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("unexpected config %+v %+v", cfg.Session, cfg.Redis)
	}
	if cfg.API.RetryMaxElapsed != 3*time.Second {
		t.Fatalf("unexpected retry %v", cfg.API.RetryMaxElapsed)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":           {"SESSION_BACKEND": "sqlite"},
		"production without secret": {"ENV": "production"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(env)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
