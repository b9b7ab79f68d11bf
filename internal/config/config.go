package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is loaded from the environment; QUESTGRID_DB_DSN is the only
// required value. Leaving QUESTGRID_REDIS_ADDR empty disables the realtime
// channel and clients fall back to polling.
type Config struct {
	Port          int           `env:"QUESTGRID_PORT" envDefault:"8080"`
	DatabaseDSN   string        `env:"QUESTGRID_DB_DSN,required"`
	RedisAddr     string        `env:"QUESTGRID_REDIS_ADDR"`
	MigrationsDir string        `env:"QUESTGRID_MIGRATIONS_DIR" envDefault:"./migrations"`
	Environment   string        `env:"QUESTGRID_ENV" envDefault:"development"`
	LogLevel      string        `env:"QUESTGRID_LOG_LEVEL" envDefault:"info"`
	StaleExchange time.Duration `env:"QUESTGRID_STALE_EXCHANGE_AFTER" envDefault:"30m"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// SetupLogger builds the process logger and installs it as the slog
// default. Production gets JSON lines, everything else human-readable text.
func SetupLogger(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
