package main

import (
	"errors"
	"fmt"
	"log/slog"

	"popstats/internal/config"
	"popstats/internal/engine"
	"popstats/internal/store"

	"github.com/spf13/cobra"
)

// app is the state every subcommand shares once flags are parsed.
type app struct {
	configPath string
	dataDir    string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "popstats",
		Short:         "Country population indicators: data entry, reports and an HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "popstats.yaml", "Path to YAML config (missing file means defaults)")
	root.PersistentFlags().StringVarP(&a.dataDir, "data-dir", "d", "", "Directory holding the JSON collections (overrides config)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(
		newMenuCmd(a),
		newReportCmd(a),
		newAddCmd(a),
		newExportCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.Data.Dir = a.dataDir
	}
	if cmd.Flags().Changed("log-level") {
		if _, err := config.ParseLevel(a.logLevel); err != nil {
			return err
		}
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger(cmd.ErrOrStderr())
	return nil
}

// open loads the dataset synchronously. Every collection that failed to load
// starts empty; missing and malformed ones were already logged by the
// repository, anything else is logged here.
func (a *app) open() (*engine.Dataset, error) {
	repo, err := store.NewDir(a.cfg.Data.Dir, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}
	opts := engine.OptionsFromConfig(a.cfg)
	if !repo.Exists(opts.CountriesCollection) && !repo.Exists(opts.IndicatorsCollection) && !repo.Exists(opts.PopulationCollection) {
		a.logger.Info("no collections in data dir, starting with an empty dataset", "dir", a.cfg.Data.Dir)
	}
	d, issues := engine.Load(repo, opts, a.logger)
	for _, issue := range issues {
		if errors.Is(issue, store.ErrCollectionMissing) || errors.Is(issue, store.ErrCollectionMalformed) {
			continue
		}
		a.logger.Error("collection could not be read, starting empty", "error", issue)
	}
	return d, nil
}
