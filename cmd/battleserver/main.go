// Package main runs the battle HTTP server.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/api"
	"github.com/cory-johannsen/battlesim/internal/config"
	"github.com/cory-johannsen/battlesim/internal/game/combat"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
	"github.com/cory-johannsen/battlesim/internal/observability"
	"github.com/cory-johannsen/battlesim/internal/server"
	"github.com/cory-johannsen/battlesim/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	engine := combat.NewEngine(sourceFactory(cfg.Battle.Seed), logger)
	var opts []api.Option

	if cfg.Database.Enabled {
		dbStart := time.Now()
		store, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer store.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		opts = append(opts,
			api.WithPresets(store.Presets),
			api.WithSnapshots(store.Snapshots),
			api.WithHealthCheck(store.Ping),
		)
	} else {
		logger.Info("database disabled; presets and snapshots unavailable")
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      api.New(engine, cfg.Battle, logger, opts...),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	lc := server.NewLifecycle(logger)
	lc.Add("http", server.HTTPService(srv, cfg.HTTP.ShutdownTimeout, logger))

	logger.Info("battle server ready",
		zap.String("addr", srv.Addr),
		zap.Bool("seeded", cfg.Battle.Seed != 0),
		zap.Duration("startup", time.Since(start)),
	)
	if err := lc.Run(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// sourceFactory returns per-battle randomness. A non-zero seed derives a
// distinct deterministic stream for each battle in creation order.
func sourceFactory(seed uint64) func() dice.Source {
	if seed == 0 {
		return dice.NewCryptoSource
	}
	var n atomic.Uint64
	return func() dice.Source {
		return dice.NewSeededSource(seed + n.Add(1))
	}
}
