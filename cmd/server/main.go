package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	httpadapter "questgrid/internal/adapter/http"
	metricsinmem "questgrid/internal/adapter/metrics/inmemory"
	redispub "questgrid/internal/adapter/realtime/redis"
	gormrepo "questgrid/internal/adapter/repo/gorm"
	"questgrid/internal/app/effects"
	"questgrid/internal/app/exchange"
	"questgrid/internal/app/itemeffects"
	"questgrid/internal/app/items"
	"questgrid/internal/app/nodes"
	"questgrid/internal/app/ports"
	"questgrid/internal/app/targets"
	"questgrid/internal/config"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := config.SetupLogger(cfg)

	db, err := gormrepo.OpenPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Error("open postgres", "err", err)
		os.Exit(1)
	}
	if err := gormrepo.ApplyMigrations(context.Background(), db, cfg.MigrationsDir); err != nil {
		logger.Error("apply migrations", "err", err, "dir", cfg.MigrationsDir)
		os.Exit(1)
	}

	contentRepo := gormrepo.NewContentRepo(db)
	playerRepo := gormrepo.NewPlayerRepo(db)
	inventoryRepo := gormrepo.NewInventoryRepo(db)
	progressItemRepo := gormrepo.NewProgressItemRepo(db)
	achievementRepo := gormrepo.NewAchievementRepo(db)
	statusEffectRepo := gormrepo.NewStatusEffectRepo(db)
	targetProgressRepo := gormrepo.NewTargetProgressRepo(db)
	itemEffectRepo := gormrepo.NewItemEffectRepo(db)
	exchangeRepo := gormrepo.NewExchangeRepo(db)
	txManager := gormrepo.NewTxManager(db)

	var publisher ports.ExchangePublisher
	if cfg.RedisAddr != "" {
		client := redispub.NewClient(cfg.RedisAddr)
		pub := redispub.NewPublisher(client, logger)
		if err := pub.Ping(context.Background()); err != nil {
			logger.Error("redis unreachable", "err", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		publisher = pub
	} else {
		logger.Warn("redis address not set, exchange snapshots will not be broadcast")
	}

	kpiRecorder := metricsinmem.NewRecorder()
	itemEngine := itemeffects.NewEngine(itemEffectRepo, statusEffectRepo, logger)
	applier := effects.Applier{
		Players:       playerRepo,
		Inventory:     inventoryRepo,
		ProgressItems: progressItemRepo,
		Achievements:  achievementRepo,
		StatusEffects: statusEffectRepo,
		ItemEngine:    itemEngine,
		Logger:        logger,
	}

	exchangeUC := exchange.UseCase{
		Exchanges: exchangeRepo,
		Players:   playerRepo,
		Inventory: inventoryRepo,
		Publisher: publisher,
		Metrics:   kpiRecorder,
		Logger:    logger,
	}

	h := httpadapter.Handler{
		NodesUC: nodes.UseCase{
			Content:       contentRepo,
			Players:       playerRepo,
			Inventory:     inventoryRepo,
			ProgressItems: progressItemRepo,
			Achievements:  achievementRepo,
			StatusEffects: statusEffectRepo,
			Progress:      targetProgressRepo,
		},
		TargetsUC: targets.UseCase{
			TxManager:  txManager,
			Content:    contentRepo,
			Progress:   targetProgressRepo,
			Inventory:  inventoryRepo,
			ItemEngine: itemEngine,
			Applier:    applier,
			Metrics:    kpiRecorder,
			Logger:     logger,
		},
		ItemsUC: items.UseCase{
			Inventory: inventoryRepo,
			Engine:    itemEngine,
		},
		ExchangeUC: exchangeUC,
		KPI:        kpiRecorder,
	}

	go runStaleExchangeJanitor(logger, exchangeUC, cfg.StaleExchange)

	s := server.Default(server.WithHostPorts(fmt.Sprintf(":%d", cfg.Port)))
	s.Use(httpadapter.CORSMiddleware())
	h.RegisterRoutes(s)

	logger.Info("questgrid server listening", "port", cfg.Port, "env", cfg.Environment)
	s.Spin()
}

// runStaleExchangeJanitor sweeps abandoned exchange sessions so that
// selected items do not stay soft-reserved forever.
func runStaleExchangeJanitor(logger *slog.Logger, uc exchange.UseCase, olderThan time.Duration) {
	ticker := time.NewTicker(olderThan / 2)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := uc.CancelStale(ctx, olderThan)
		cancel()
		if err != nil {
			logger.Error("cancel stale exchanges", "err", err)
			continue
		}
		if n > 0 {
			logger.Info("cancelled stale exchanges", "count", n)
		}
	}
}
