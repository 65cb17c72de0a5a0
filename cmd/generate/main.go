// Command generate runs series materialization once and exits. Meant for
// cron-less deployments and manual runs after editing series.
package main

import (
	"context"
	"flag"
	"os"

	"showcal/internal/config"
	"showcal/internal/database"
	"showcal/internal/logging"
	"showcal/internal/materialize"
	"showcal/internal/search"
	"showcal/internal/store"
)

func main() {
	configPath := flag.String("config", "showcal.yaml", "path to config file")
	seriesID := flag.Int64("series", 0, "generate only this series ID (default: all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Setup("info").Error("load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	mat := materialize.New(store.NewSeriesStore(db), store.NewEventStore(db), nil, logger)
	index := search.NewIndex(db)

	ctx := context.Background()
	if *seriesID > 0 {
		err = mat.Generate(ctx, *seriesID)
	} else {
		err = mat.GenerateAll(ctx)
	}
	if err != nil {
		logger.Error("generation failed", "error", err)
		os.Exit(1)
	}

	if err := index.Rebuild(); err != nil {
		logger.Error("reindex failed", "error", err)
		os.Exit(1)
	}
	logger.Info("generation complete")
}
