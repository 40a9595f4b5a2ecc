package engine

import (
	"log/slog"
	"time"

	"popstats/internal/models"
	"popstats/internal/store"
)

// Load reads the three collections once at startup. A missing or malformed
// collection does not stop the load: the repository logs it, the collection
// starts empty, and the condition is returned in issues for the caller to
// report.
func Load(repo *store.Repository, opts Options, logger *slog.Logger) (*Dataset, []error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	logger.Debug("loading dataset",
		"countries", opts.CountriesCollection,
		"indicators", opts.IndicatorsCollection,
		"population", opts.PopulationCollection)

	var issues []error
	indicators, err := store.Load[models.Indicator](repo, opts.IndicatorsCollection)
	if err != nil {
		issues = append(issues, err)
	}
	countries, err := store.Load[models.Country](repo, opts.CountriesCollection)
	if err != nil {
		issues = append(issues, err)
	}
	population, err := store.Load[models.PopulationRecord](repo, opts.PopulationCollection)
	if err != nil {
		issues = append(issues, err)
	}

	d := New(repo, opts, logger, countries, indicators, population)
	logger.Info("load complete",
		"countries", len(countries),
		"indicators", len(indicators),
		"records", len(population),
		"elapsed", time.Since(start))
	return d, issues
}
