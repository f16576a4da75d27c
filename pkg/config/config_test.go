package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "https://api.example.com/api" {
		t.Fatalf("expected trailing slash to be trimmed, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Fatalf("expected default timeout 15s, got %v", cfg.API.Timeout)
	}
	if cfg.Cache.WidgetTTL != time.Hour {
		t.Fatalf("expected widget ttl 1h, got %v", cfg.Cache.WidgetTTL)
	}
	if cfg.Cache.UseRedis() {
		t.Fatalf("redis should be disabled without a url")
	}
	if cfg.Storage.Path != "storefront.db" {
		t.Fatalf("unexpected storage path %q", cfg.Storage.Path)
	}
	if got := cfg.Payment.NormalizedCurrency(); got != "INR" {
		t.Fatalf("unexpected currency %q", got)
	}
}

func TestLoad_OverridesAndLists(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvRedisURL, "redis://localhost:6379/1")
	t.Setenv(EnvAllowedOrigins, "http://a.test,http://b.test")
	t.Setenv(EnvPaymentCurrency, "usd")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.Cache.UseRedis() {
		t.Fatalf("expected redis cache to be enabled")
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.Server.AllowedOrigins)
	}
	if got := cfg.Payment.NormalizedCurrency(); got != "USD" {
		t.Fatalf("unexpected currency %q", got)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAPIBaseURL); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAPIBaseURL, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsNonHTTPBaseURL(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvAPIBaseURL, "ftp://api.example.com")
	if _, err := Load(); err == nil {
		t.Fatal("expected scheme validation error")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvAPIBaseURL, "https://api.example.com/api/")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}
