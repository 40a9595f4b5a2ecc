package engine

import (
	"log/slog"
	"slices"
	"sync"

	"popstats/internal/config"
	"popstats/internal/models"
)

// Persister rewrites a whole named collection. *store.Repository implements it.
type Persister interface {
	Save(name string, records any) error
}

// Options carry the collection names and indicator defaults the engine needs.
type Options struct {
	CountriesCollection  string
	IndicatorsCollection string
	PopulationCollection string

	TotalPopulationIndicator string
	DefaultStatus            string
	DefaultUnit              string
}

func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultConfig())
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		CountriesCollection:      cfg.Data.Countries,
		IndicatorsCollection:     cfg.Data.Indicators,
		PopulationCollection:     cfg.Data.Population,
		TotalPopulationIndicator: cfg.Indicators.TotalPopulation,
		DefaultStatus:            cfg.Indicators.DefaultStatus,
		DefaultUnit:              cfg.Indicators.DefaultUnit,
	}
}

// Dataset owns the three in-memory collections. Each collection has its own
// lock; a mutation holds the write lock of the collection it rewrites for the
// whole read-modify-persist cycle. Locks are always taken in the order
// countries, indicators, population.
type Dataset struct {
	countriesMu sync.RWMutex
	countries   []models.Country

	indicatorsMu sync.RWMutex
	indicators   []models.Indicator

	populationMu sync.RWMutex
	population   []models.PopulationRecord
	// natural key -> index into population
	popIndex map[models.RecordKey]int

	persist Persister
	opts    Options
	logger  *slog.Logger
}

// New builds a Dataset from already loaded collections. The slices are owned
// by the Dataset afterwards.
func New(persist Persister, opts Options, logger *slog.Logger,
	countries []models.Country, indicators []models.Indicator, population []models.PopulationRecord) *Dataset {
	if logger == nil {
		logger = slog.Default()
	}
	if countries == nil {
		countries = []models.Country{}
	}
	if indicators == nil {
		indicators = []models.Indicator{}
	}
	if population == nil {
		population = []models.PopulationRecord{}
	}

	d := &Dataset{
		countries:  countries,
		indicators: indicators,
		population: population,
		popIndex:   make(map[models.RecordKey]int, len(population)),
		persist:    persist,
		opts:       opts,
		logger:     logger,
	}
	for i, r := range population {
		// first occurrence wins, matching the linear scan an upsert would do
		if _, exists := d.popIndex[r.Key()]; !exists {
			d.popIndex[r.Key()] = i
		}
	}
	return d
}

// Snapshot copies the collections into an immutable view for the query engine.
func (d *Dataset) Snapshot() *Snapshot {
	d.countriesMu.RLock()
	countries := slices.Clone(d.countries)
	d.countriesMu.RUnlock()

	d.indicatorsMu.RLock()
	indicators := slices.Clone(d.indicators)
	d.indicatorsMu.RUnlock()

	d.populationMu.RLock()
	population := slices.Clone(d.population)
	d.populationMu.RUnlock()

	return NewSnapshot(d.opts.TotalPopulationIndicator, countries, indicators, population)
}

func (d *Dataset) Countries() []models.Country {
	d.countriesMu.RLock()
	defer d.countriesMu.RUnlock()
	return slices.Clone(d.countries)
}

func (d *Dataset) Indicators() []models.Indicator {
	d.indicatorsMu.RLock()
	defer d.indicatorsMu.RUnlock()
	return slices.Clone(d.indicators)
}

func (d *Dataset) Population() []models.PopulationRecord {
	d.populationMu.RLock()
	defer d.populationMu.RUnlock()
	return slices.Clone(d.population)
}

// Lookup returns the record stored under the natural key.
func (d *Dataset) Lookup(year int, iso3, indicatorID string) (models.PopulationRecord, bool) {
	d.populationMu.RLock()
	defer d.populationMu.RUnlock()
	i, ok := d.popIndex[models.RecordKey{Year: year, ISO3: iso3, IndicatorID: indicatorID}]
	if !ok {
		return models.PopulationRecord{}, false
	}
	return d.population[i], true
}
