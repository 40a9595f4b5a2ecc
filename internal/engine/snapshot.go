package engine

import (
	"math"
	"slices"

	"popstats/internal/models"
)

// Snapshot is a read-only copy of the dataset. All query methods are pure
// functions of it. "Total population" below means records whose indicator is
// the configured total population indicator.
type Snapshot struct {
	Countries  []models.Country
	Indicators []models.Indicator
	Population []models.PopulationRecord

	totalID string
}

func NewSnapshot(totalPopulationIndicator string, countries []models.Country,
	indicators []models.Indicator, population []models.PopulationRecord) *Snapshot {
	return &Snapshot{
		Countries:  countries,
		Indicators: indicators,
		Population: population,
		totalID:    totalPopulationIndicator,
	}
}

func (s *Snapshot) TotalPopulationIndicator() string {
	return s.totalID
}

// --- FILTER HELPERS ---

// filter keeps insertion order. The result never aliases s.Population.
func (s *Snapshot) filter(keep func(r *models.PopulationRecord) bool) []models.PopulationRecord {
	out := make([]models.PopulationRecord, 0)
	for i := range s.Population {
		if keep(&s.Population[i]) {
			out = append(out, s.Population[i])
		}
	}
	return out
}

func (s *Snapshot) isTotal(r *models.PopulationRecord) bool {
	return r.IndicatorID == s.totalID
}

// totals returns the total population records of a country in insertion order.
func (s *Snapshot) totals(country string) []models.PopulationRecord {
	return s.filter(func(r *models.PopulationRecord) bool {
		return r.Country == country && s.isTotal(r)
	})
}

func (s *Snapshot) totalsInRange(country string, from, to int) []models.PopulationRecord {
	return s.filter(func(r *models.PopulationRecord) bool {
		return r.Country == country && r.Year >= from && r.Year <= to && s.isTotal(r)
	})
}

// totalYears is the set of years with a total population record for country.
func (s *Snapshot) totalYears(country string) map[int]struct{} {
	years := make(map[int]struct{})
	for i := range s.Population {
		r := &s.Population[i]
		if r.Country == country && s.isTotal(r) {
			years[r.Year] = struct{}{}
		}
	}
	return years
}

// MaxYear is the latest year across all records of any indicator.
func (s *Snapshot) MaxYear() (int, bool) {
	if len(s.Population) == 0 {
		return 0, false
	}
	maxYear := s.Population[0].Year
	for _, r := range s.Population[1:] {
		if r.Year > maxYear {
			maxYear = r.Year
		}
	}
	return maxYear, true
}

// sortByYear is stable so records sharing a year keep their insertion order.
func sortByYear(records []models.PopulationRecord) {
	slices.SortStableFunc(records, func(a, b models.PopulationRecord) int {
		return a.Year - b.Year
	})
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// floorDecade rounds a year down to a multiple of ten, also for negative years.
func floorDecade(year int) int {
	d := year / 10
	if year%10 != 0 && year < 0 {
		d--
	}
	return d * 10
}

// --- RECORD LISTINGS ---

// RecordsForCountryInRange returns every record of the country, any indicator,
// with from <= year <= to.
func (s *Snapshot) RecordsForCountryInRange(country string, from, to int) []models.PopulationRecord {
	return s.filter(func(r *models.PopulationRecord) bool {
		return r.Country == country && r.Year >= from && r.Year <= to
	})
}

func (s *Snapshot) RecordsForIndicator(indicatorID string) []models.PopulationRecord {
	return s.filter(func(r *models.PopulationRecord) bool {
		return r.IndicatorID == indicatorID
	})
}

// RecordsInLastNYears returns records with year >= MaxYear-n+1.
func (s *Snapshot) RecordsInLastNYears(n int) []models.PopulationRecord {
	maxYear, ok := s.MaxYear()
	if !ok {
		return []models.PopulationRecord{}
	}
	from := maxYear - n + 1
	return s.filter(func(r *models.PopulationRecord) bool {
		return r.Year >= from
	})
}

func (s *Snapshot) TotalPopulationRecordsBefore(year int) []models.PopulationRecord {
	return s.filter(func(r *models.PopulationRecord) bool {
		return r.Year < year && s.isTotal(r)
	})
}

func (s *Snapshot) TotalPopulationRecordsAfter(year int) []models.PopulationRecord {
	return s.filter(func(r *models.PopulationRecord) bool {
		return r.Year > year && s.isTotal(r)
	})
}

// CountryByName returns the first country with that name.
func (s *Snapshot) CountryByName(name string) (models.Country, bool) {
	for _, c := range s.Countries {
		if c.Name == name {
			return c, true
		}
	}
	return models.Country{}, false
}
