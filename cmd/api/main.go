package main

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/avitans/atelier/internal/api"
	"github.com/avitans/atelier/internal/config"
	"github.com/avitans/atelier/internal/service"
	"github.com/avitans/atelier/internal/store"
	"github.com/avitans/atelier/internal/uploads"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		logger = logger.Level(level)
	}

	ctx := context.Background()
	dbPool, err := store.Connect(ctx, cfg.DB.Source)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to database")
	}
	defer dbPool.Close()

	if err := store.EnsureSchema(ctx, dbPool); err != nil {
		logger.Fatal().Err(err).Msg("bootstrap schema")
	}

	imageStore, err := uploads.NewStorage(cfg.Uploads.Dir)
	if err != nil {
		logger.Fatal().Err(err).Msg("init uploads storage")
	}

	// Initialize Layers
	st := store.New(dbPool)
	orders := service.NewOrderService(dbPool)
	handler := api.NewHandler(st, orders, imageStore)

	r := api.NewRouter(handler, logger, cfg.Static.Dir, cfg.Uploads.Dir)

	logger.Info().Str("port", cfg.Server.Port).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.Server.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
