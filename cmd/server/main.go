package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"popstats/internal/api"
	"popstats/internal/config"
	"popstats/internal/engine"
	"popstats/internal/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("POPSTATS_CONFIG"))
	logger := cfg.NewLogger(os.Stderr)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	repo, err := store.NewDir(cfg.Data.Dir, logger)
	if err != nil {
		logger.Error("cannot open data directory", "dir", cfg.Data.Dir, "error", err)
		os.Exit(1)
	}

	// 1. Server starts with no dataset and answers 503 until the load finishes
	h := api.NewHandler(nil, logger)
	e := api.NewServer(h)

	// 2. Load the collections in the background
	go func() {
		d, issues := engine.Load(repo, engine.OptionsFromConfig(cfg), logger)
		for _, issue := range issues {
			logger.Warn("collection started empty", "reason", issue)
		}
		h.SetDataset(d)
		logger.Info("dataset ready, API fully available")
	}()

	// 3. Serve until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = api.Serve(ctx, e, cfg.Server.Addr, logger)
	stop()
	if err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
