package main

import (
	"context"
	"os"

	"github.com/oggyb/muzz-matching/internal/app"
	"github.com/oggyb/muzz-matching/internal/cache"
	"github.com/oggyb/muzz-matching/internal/config"
	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/logger"
	"github.com/oggyb/muzz-matching/internal/server"
	"github.com/oggyb/muzz-matching/internal/service/discovery"
	"github.com/oggyb/muzz-matching/internal/service/mailbox"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB (migrates on open)
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	defer redisCache.Close()
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}

	appCtx := app.New(cfg, database, redisCache, log)

	registrars := []server.Registrar{
		discovery.NewRegistrar(appCtx),
		mailbox.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	if err := server.StartGRPCServer(cfg, log, registrars...); err != nil {
		log.Error("gRPC server stopped", "err", err)
		os.Exit(1)
	}
}
