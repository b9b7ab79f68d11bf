package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	gormrepo "questgrid/internal/adapter/repo/gorm"
	"questgrid/internal/config"
	"questgrid/internal/content"
)

// Imports an episode seed file into the content store. Typical usage:
//
//	QUESTGRID_DB_DSN=... go run ./cmd/seed -file seeds/episode1.yaml
func main() {
	file := flag.String("file", "", "path to the episode seed YAML")
	flag.Parse()
	if *file == "" {
		slog.Error("missing -file flag")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := config.SetupLogger(cfg)

	seed, err := content.Load(*file)
	if err != nil {
		logger.Error("load seed", "err", err, "file", *file)
		os.Exit(1)
	}

	db, err := gormrepo.OpenPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Error("open postgres", "err", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := gormrepo.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		logger.Error("apply migrations", "err", err)
		os.Exit(1)
	}

	imp := content.Importer{
		Content:     gormrepo.NewContentRepo(db),
		ItemEffects: gormrepo.NewItemEffectRepo(db),
	}
	if err := imp.Import(ctx, seed); err != nil {
		logger.Error("import seed", "err", err)
		os.Exit(1)
	}

	logger.Info("seed imported",
		"episode", seed.EpisodeID,
		"nodes", len(seed.Nodes),
		"item_effects", len(seed.ItemEffects),
	)
}
