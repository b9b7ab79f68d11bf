package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("QUESTGRID_DB_DSN", "postgres://localhost/questgrid")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.Environment != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.StaleExchange != 30*time.Minute {
		t.Fatalf("expected 30m stale window, got %s", cfg.StaleExchange)
	}
}

func TestLoad_RequiresDSN(t *testing.T) {
	t.Setenv("QUESTGRID_DB_DSN", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without QUESTGRID_DB_DSN")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("QUESTGRID_DB_DSN", "postgres://localhost/questgrid")
	t.Setenv("QUESTGRID_PORT", "9191")
	t.Setenv("QUESTGRID_REDIS_ADDR", "localhost:6379")
	t.Setenv("QUESTGRID_STALE_EXCHANGE_AFTER", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9191 || cfg.RedisAddr != "localhost:6379" || cfg.StaleExchange != 15*time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q)=%v want %v", in, got, want)
		}
	}
}
