package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/catalog-pricing/internal/seed"
	"github.com/angelmondragon/catalog-pricing/pkg/config"
	"github.com/angelmondragon/catalog-pricing/pkg/db"
	"github.com/angelmondragon/catalog-pricing/pkg/logger"
	"github.com/angelmondragon/catalog-pricing/pkg/migrate"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "pricing-seed"})

	_ = godotenv.Load()

	path := flag.String("file", "seeds/catalog.yaml", "catalog fixture to load")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	if cfg.App.IsProd() {
		fmt.Fprintln(os.Stderr, "refusing to seed a prod environment")
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pricing-seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "file": *path})

	defaultMargin, err := decimal.NewFromString(cfg.Pricing.DefaultMarginPercent)
	if err != nil {
		logg.Error(ctx, "invalid default margin percent", err)
		os.Exit(1)
	}

	fixture, err := seed.LoadFile(*path)
	if err != nil {
		logg.Error(ctx, "failed to load fixture", err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	summary, err := seed.NewSeeder(dbClient.DB(), logg, defaultMargin).Apply(ctx, fixture)
	for _, rowErr := range multierr.Errors(err) {
		logg.Warn(logg.WithField(ctx, "error", rowErr.Error()), "seed.row.failed")
	}
	fmt.Printf("seeded %d rules, %d offers, %d variants\n", summary.Rules, summary.Offers, summary.Variants)
	if err != nil {
		os.Exit(1)
	}
}
