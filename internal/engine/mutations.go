package engine

import (
	"errors"
	"fmt"

	"popstats/internal/models"
)

var (
	ErrDuplicateCountry   = errors.New("a country with this ISO3 code already exists")
	ErrDuplicateIndicator = errors.New("an indicator with this id already exists")
	ErrUnknownCountry     = errors.New("country not found")
	ErrUnknownIndicator   = errors.New("indicator not found")
)

// AddCountry appends a country and rewrites the country collection. It fails
// with ErrDuplicateCountry, leaving everything untouched, if iso3 is taken.
func (d *Dataset) AddCountry(name, iso2, iso3 string) error {
	d.countriesMu.Lock()
	defer d.countriesMu.Unlock()

	for _, c := range d.countries {
		if c.ISO3 == iso3 {
			return fmt.Errorf("%w: %q", ErrDuplicateCountry, iso3)
		}
	}

	n := len(d.countries)
	d.countries = append(d.countries, models.Country{Name: name, ISO2: iso2, ISO3: iso3})
	if err := d.save(d.opts.CountriesCollection, d.countries); err != nil {
		d.countries = d.countries[:n]
		return err
	}
	d.logger.Info("country added", "name", name, "iso3", iso3)
	return nil
}

// AddIndicator appends an indicator and rewrites the indicator collection.
func (d *Dataset) AddIndicator(id, description string) error {
	d.indicatorsMu.Lock()
	defer d.indicatorsMu.Unlock()

	for _, ind := range d.indicators {
		if ind.ID == id {
			return fmt.Errorf("%w: %q", ErrDuplicateIndicator, id)
		}
	}

	n := len(d.indicators)
	d.indicators = append(d.indicators, models.Indicator{ID: id, Description: description})
	if err := d.save(d.opts.IndicatorsCollection, d.indicators); err != nil {
		d.indicators = d.indicators[:n]
		return err
	}
	d.logger.Info("indicator added", "id", id)
	return nil
}

// UpsertPopulation writes the value of an indicator for a country and year.
// The country is resolved by name and the indicator by id; their ISO3 code and
// description are copied onto the record, and an empty one fails resolution. An existing record with the same
// (year, iso3, indicator) key has its value, status and unit overwritten,
// otherwise a new record is appended. created reports which path was taken.
// Empty status or unit fall back to the configured defaults.
func (d *Dataset) UpsertPopulation(year int, countryName, indicatorID string, value float64, status, unit string) (created bool, err error) {
	if status == "" {
		status = d.opts.DefaultStatus
	}
	if unit == "" {
		unit = d.opts.DefaultUnit
	}

	d.countriesMu.RLock()
	defer d.countriesMu.RUnlock()
	d.indicatorsMu.RLock()
	defer d.indicatorsMu.RUnlock()
	d.populationMu.Lock()
	defer d.populationMu.Unlock()

	iso3, ok := d.iso3Of(countryName)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownCountry, countryName)
	}
	description, ok := d.descriptionOf(indicatorID)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownIndicator, indicatorID)
	}

	key := models.RecordKey{Year: year, ISO3: iso3, IndicatorID: indicatorID}
	if i, exists := d.popIndex[key]; exists {
		prev := d.population[i]
		d.population[i].Value = value
		d.population[i].Status = status
		d.population[i].Unit = unit
		if err := d.save(d.opts.PopulationCollection, d.population); err != nil {
			d.population[i] = prev
			return false, err
		}
		d.logger.Info("population record updated", "year", year, "iso3", iso3, "indicator", indicatorID)
		return false, nil
	}

	d.population = append(d.population, models.PopulationRecord{
		Year:        year,
		Country:     countryName,
		ISO3:        iso3,
		IndicatorID: indicatorID,
		Description: description,
		Value:       value,
		Status:      status,
		Unit:        unit,
	})
	d.popIndex[key] = len(d.population) - 1
	if err := d.save(d.opts.PopulationCollection, d.population); err != nil {
		d.population = d.population[:len(d.population)-1]
		delete(d.popIndex, key)
		return false, err
	}
	d.logger.Info("population record added", "year", year, "iso3", iso3, "indicator", indicatorID)
	return true, nil
}

// iso3Of needs countriesMu held. A country without an ISO3 code cannot key
// a record, so it does not resolve.
func (d *Dataset) iso3Of(name string) (string, bool) {
	for _, c := range d.countries {
		if c.Name == name {
			return c.ISO3, c.ISO3 != ""
		}
	}
	return "", false
}

// descriptionOf needs indicatorsMu held. An indicator without a description
// does not resolve.
func (d *Dataset) descriptionOf(id string) (string, bool) {
	for _, ind := range d.indicators {
		if ind.ID == id {
			return ind.Description, ind.Description != ""
		}
	}
	return "", false
}

// LookupByCountry is Lookup with the country given by name.
func (d *Dataset) LookupByCountry(year int, countryName, indicatorID string) (models.PopulationRecord, bool) {
	d.countriesMu.RLock()
	iso3, ok := d.iso3Of(countryName)
	d.countriesMu.RUnlock()
	if !ok {
		return models.PopulationRecord{}, false
	}
	return d.Lookup(year, iso3, indicatorID)
}

func (d *Dataset) save(name string, records any) error {
	if d.persist == nil {
		return nil
	}
	if err := d.persist.Save(name, records); err != nil {
		d.logger.Error("failed to persist collection", "collection", name, "error", err)
		return fmt.Errorf("persist %s: %w", name, err)
	}
	return nil
}
