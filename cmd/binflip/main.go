package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"binflip/internal/application/usecase/flipper"
	"binflip/internal/infrastructure/config"
	"binflip/internal/infrastructure/logger"
	"binflip/internal/infrastructure/svc"

	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	defaultPath := flag.String("default-config", "configs/default.toml", "fallback config used when -config is missing")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	logger.Setup(*verbose)

	cfg, err := config.Load(*configPath, *defaultPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := svc.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("service init failed")
	}
	defer func() { _ = sc.Close() }()

	service := flipper.NewService(sc.BuildFlipperDeps())

	log.Info().
		Str("config", *configPath).
		Str("base_url", cfg.Source.BaseURL).
		Int64("min_price", cfg.Filters.MinPrice).
		Int64("min_flip", cfg.Filters.MinFlip).
		Int("min_supply", cfg.Filters.MinSupply).
		Int("workers", cfg.Source.FetchWorkers).
		Msg("binflip started")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("flipper service exited")
	}
}
