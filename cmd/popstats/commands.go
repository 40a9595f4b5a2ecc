package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"popstats/internal/api"
	"popstats/internal/report"
	"popstats/internal/store"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (a *app) catalog() *report.Catalog {
	return report.NewCatalog(report.DefaultParams(), a.cfg.Indicators.DefaultUnit)
}

func newMenuCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive menu for data entry and reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.open()
			if err != nil {
				return err
			}
			return report.NewMenu(d, a.catalog(), cmd.InOrStdin(), cmd.OutOrStdout()).Run()
		},
	}
}

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report LETTER",
		Short: "Print one report (A-Y) and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.open()
			if err != nil {
				return err
			}
			return a.catalog().Run(cmd.OutOrStdout(), args[0], d.Snapshot())
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	add := &cobra.Command{
		Use:   "add",
		Short: "Add countries, indicators or population records",
	}

	add.AddCommand(&cobra.Command{
		Use:   "country NAME ISO2 ISO3",
		Short: "Add a country",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.open()
			if err != nil {
				return err
			}
			if err := d.AddCountry(args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Country %s added.\n", args[0])
			return nil
		},
	})

	add.AddCommand(&cobra.Command{
		Use:   "indicator ID DESCRIPTION",
		Short: "Add an indicator",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.open()
			if err != nil {
				return err
			}
			if err := d.AddIndicator(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indicator %s added.\n", args[0])
			return nil
		},
	})

	var status, unit string
	population := &cobra.Command{
		Use:   "population YEAR COUNTRY INDICATOR VALUE",
		Short: "Add or update a population record",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			value, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q", args[3])
			}
			d, err := a.open()
			if err != nil {
				return err
			}
			created, err := d.UpsertPopulation(year, args[1], args[2], value, status, unit)
			if err != nil {
				return err
			}
			verb := "updated"
			if created {
				verb = "added"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Record %s: %s %d = %s\n", verb, args[1], year, humanize.Commaf(value))
			return nil
		},
	}
	population.Flags().StringVar(&status, "status", "", "Record status (default from config)")
	population.Flags().StringVar(&unit, "unit", "", "Record unit (default from config)")
	add.AddCommand(population)

	return add
}

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dataset to a SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.open()
			if err != nil {
				return err
			}
			t := store.Tables{
				Countries:  d.Countries(),
				Indicators: d.Indicators(),
				Population: d.Population(),
			}
			if err := store.ExportSQLite(cmd.Context(), out, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s records to %s\n",
				humanize.Comma(int64(len(t.Population))), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "sqlite", "popstats.db", "Output SQLite file")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			d, err := a.open()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			e := api.NewServer(api.NewHandler(d, a.logger))
			return api.Serve(ctx, e, a.cfg.Server.Addr, a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}
