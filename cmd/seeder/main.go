package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"staffing-hub/internal/app"
	"staffing-hub/internal/config"
	"staffing-hub/internal/database/seeder"
)

func main() {
	fixturePath := flag.String("fixture", "fixtures/staffing.yaml", "path to the YAML fixture")
	migrateOnly := flag.Bool("migrate-only", false, "apply migrations and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.App)
	c, err := app.NewContainer(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init container")
	}
	defer func() {
		_ = c.Close()
	}()

	migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer migCancel()
	if err := c.Migrate(migCtx); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
	if *migrateOnly {
		return
	}

	fh, err := os.Open(*fixturePath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *fixturePath).Msg("open fixture")
	}
	fixture, err := seeder.LoadFixture(fh)
	_ = fh.Close()
	if err != nil {
		logger.Fatal().Err(err).Str("path", *fixturePath).Msg("load fixture")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	r := seeder.Runner{Seeders: []seeder.Seeder{seeder.FixtureSeeder{Fixture: fixture}}, Logger: logger}
	if err := r.Run(ctx, c.DB); err != nil {
		logger.Fatal().Err(err).Msg("seed failed")
	}
	logger.Info().
		Int("skills", len(fixture.Skills)).
		Int("employees", len(fixture.Employees)).
		Int("projects", len(fixture.Projects)).
		Int("roles", len(fixture.Roles)).
		Msg("fixture loaded")
}
