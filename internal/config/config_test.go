package config_test

import (
	"testing"
	"time"

	"ecofinds/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("CATALOG_API_URL", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("AUTH_DELAY_MS", "")

	cfg := config.Load()
	if cfg.Port != "8080" || cfg.DBDSN != "ecofinds.db" {
		t.Fatalf("bad defaults: %+v", cfg)
	}
	if cfg.CatalogAPIURL != "https://dummyjson.com" {
		t.Fatalf("bad api default: %q", cfg.CatalogAPIURL)
	}
	// file logging is opt-in
	if cfg.LogFile != "" {
		t.Fatalf("LOG_FILE should default to empty, got %q", cfg.LogFile)
	}
	if cfg.AuthDelay != time.Second {
		t.Fatalf("bad delay default: %v", cfg.AuthDelay)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DSN", ":memory:")
	t.Setenv("LOG_FILE", "/tmp/app.log")
	t.Setenv("AUTH_DELAY_MS", "0")

	cfg := config.Load()
	if cfg.Port != "9090" || cfg.DBDSN != ":memory:" || cfg.LogFile != "/tmp/app.log" {
		t.Fatalf("overrides ignored: %+v", cfg)
	}
	if cfg.AuthDelay != 0 {
		t.Fatalf("want zero delay, got %v", cfg.AuthDelay)
	}
}
