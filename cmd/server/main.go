package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"staffing-hub/internal/app"
	"staffing-hub/internal/config"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	bootstrap, cleanup, err := app.Bootstrap(cfg)
	if err != nil {
		log.Fatalf("failed to bootstrap app: %v", err)
	}
	logger := bootstrap.Container.Logger
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error().Err(err).Msg("cleanup error")
		}
	}()

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid HTTP port")
	}

	migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	err = bootstrap.Container.Migrate(migCtx)
	migCancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(rootCtx)

	group.Go(func() error {
		bootstrap.Container.Hub.Run(gctx)
		return nil
	})

	group.Go(func() error {
		logger.Info().Str("addr", addr).Msg("http server listening")
		return bootstrap.Fiber.Listen(addr)
	})

	group.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return bootstrap.Fiber.ShutdownWithContext(ctx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("server stopped with error")
		return
	}
	logger.Info().Msg("server stopped")
}
