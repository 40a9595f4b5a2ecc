package engine

import (
	"fmt"
	"slices"

	"popstats/internal/models"
)

// --- 1. GROWTH ---

// YearlyGrowth sorts the country's total population records in [from, to] by
// year and returns one point per consecutive pair, so k records give k-1
// points. The percentage is 0 when the previous value is not positive.
func (s *Snapshot) YearlyGrowth(country string, from, to int) []models.GrowthPoint {
	series := s.totalsInRange(country, from, to)
	sortByYear(series)
	return growthSeries(series)
}

func growthSeries(series []models.PopulationRecord) []models.GrowthPoint {
	if len(series) < 2 {
		return []models.GrowthPoint{}
	}
	out := make([]models.GrowthPoint, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1].Value, series[i].Value
		abs := cur - prev
		pct := 0.0
		if prev > 0 {
			pct = round2(abs / prev * 100)
		}
		out = append(out, models.GrowthPoint{
			Year:           series[i].Year,
			Population:     cur,
			AbsoluteGrowth: abs,
			PercentGrowth:  pct,
		})
	}
	return out
}

// PercentGrowth is the change between the two endpoint years as a percentage
// of the first, rounded to 2 decimals. ok is false when either endpoint has no
// total population record or the start value is not positive.
func (s *Snapshot) PercentGrowth(country string, from, to int) (float64, bool) {
	start, ok := s.TotalPopulationOf(country, from)
	if !ok {
		return 0, false
	}
	end, ok := s.TotalPopulationOf(country, to)
	if !ok || start <= 0 {
		return 0, false
	}
	return round2((end - start) / start * 100), true
}

// CountriesWithAvgGrowthAbove averages YearlyGrowth percentages over the last
// numYears of data (ending at MaxYear) for every country, keeping those whose
// average is strictly above percent. Countries keep collection order.
func (s *Snapshot) CountriesWithAvgGrowthAbove(percent float64, numYears int) []models.CountryGrowth {
	out := make([]models.CountryGrowth, 0)
	maxYear, ok := s.MaxYear()
	if !ok {
		return out
	}
	from := maxYear - numYears + 1

	for _, c := range s.Countries {
		growth := s.YearlyGrowth(c.Name, from, maxYear)
		if len(growth) == 0 {
			continue
		}
		var sum float64
		for _, g := range growth {
			sum += g.PercentGrowth
		}
		avg := sum / float64(len(growth))
		if avg > percent {
			out = append(out, models.CountryGrowth{Country: c.Name, AverageGrowth: round2(avg)})
		}
	}
	return out
}

// YearsWithGrowthAbove returns the later year of every consecutive pair of
// the country's total population series whose absolute growth exceeds threshold.
func (s *Snapshot) YearsWithGrowthAbove(country string, threshold float64) []int {
	series := s.totals(country)
	sortByYear(series)

	years := make([]int, 0)
	for i := 1; i < len(series); i++ {
		if series[i].Value-series[i-1].Value > threshold {
			years = append(years, series[i].Year)
		}
	}
	return years
}

// --- 2. POINT LOOKUPS & EXTREMA ---

// TotalPopulationOf returns the first total population value of the country in year.
func (s *Snapshot) TotalPopulationOf(country string, year int) (float64, bool) {
	for i := range s.Population {
		r := &s.Population[i]
		if r.Country == country && r.Year == year && s.isTotal(r) {
			return r.Value, true
		}
	}
	return 0, false
}

// YearOfMinPopulation returns the year of the smallest total population value.
// Ties go to the first record in insertion order.
func (s *Snapshot) YearOfMinPopulation(country string) (int, bool) {
	r, ok := s.extremum(country, func(v, best float64) bool { return v < best })
	return r.Year, ok
}

// YearOfMaxPopulation mirrors YearOfMinPopulation for the largest value.
func (s *Snapshot) YearOfMaxPopulation(country string) (int, bool) {
	r, ok := s.extremum(country, func(v, best float64) bool { return v > best })
	return r.Year, ok
}

func (s *Snapshot) extremum(country string, better func(v, best float64) bool) (models.PopulationRecord, bool) {
	var best models.PopulationRecord
	found := false
	for i := range s.Population {
		r := &s.Population[i]
		if r.Country != country || !s.isTotal(r) {
			continue
		}
		if !found || better(r.Value, best.Value) {
			best = *r
			found = true
		}
	}
	return best, found
}

// Extrema bundles both extremes of a country's total population series.
func (s *Snapshot) Extrema(country string) models.Extrema {
	e := models.Extrema{Country: country}
	lo, ok := s.extremum(country, func(v, best float64) bool { return v < best })
	if !ok {
		return e
	}
	hi, _ := s.extremum(country, func(v, best float64) bool { return v > best })
	e.HasRecords = true
	e.MinYear, e.MinValue = lo.Year, lo.Value
	e.MaxYear, e.MaxValue = hi.Year, hi.Value
	return e
}

// MinPopulationInLastNYears is the smallest total population value of the
// country in [MaxYear-numYears+1, MaxYear].
func (s *Snapshot) MinPopulationInLastNYears(country string, numYears int) (float64, bool) {
	maxYear, ok := s.MaxYear()
	if !ok {
		return 0, false
	}
	series := s.totalsInRange(country, maxYear-numYears+1, maxYear)
	if len(series) == 0 {
		return 0, false
	}
	lo := series[0].Value
	for _, r := range series[1:] {
		if r.Value < lo {
			lo = r.Value
		}
	}
	return lo, true
}

// AvgPopulation is the mean total population of the country in [from, to],
// rounded to 2 decimals.
func (s *Snapshot) AvgPopulation(country string, from, to int) (float64, bool) {
	series := s.totalsInRange(country, from, to)
	if len(series) == 0 {
		return 0, false
	}
	var sum float64
	for _, r := range series {
		sum += r.Value
	}
	return round2(sum / float64(len(series))), true
}

// PopulationAboveThreshold lists, in insertion order, the years whose total
// population value for the country exceeds threshold.
func (s *Snapshot) PopulationAboveThreshold(country string, threshold float64) []int {
	years := make([]int, 0)
	for i := range s.Population {
		r := &s.Population[i]
		if r.Country == country && s.isTotal(r) && r.Value > threshold {
			years = append(years, r.Year)
		}
	}
	return years
}

// --- 3. YEAR AGGREGATES ---

// TotalPopulationInYear sums every total population value recorded for year.
func (s *Snapshot) TotalPopulationInYear(year int) float64 {
	var total float64
	for i := range s.Population {
		r := &s.Population[i]
		if r.Year == year && s.isTotal(r) {
			total += r.Value
		}
	}
	return total
}

// RecordCountsByYear counts records of any indicator per year.
func (s *Snapshot) RecordCountsByYear() map[int]int {
	counts := make(map[int]int)
	for _, r := range s.Population {
		counts[r.Year]++
	}
	return counts
}

// SortedRecordCounts is RecordCountsByYear ordered by year.
func (s *Snapshot) SortedRecordCounts() []models.YearCount {
	counts := s.RecordCountsByYear()
	out := make([]models.YearCount, 0, len(counts))
	for year, n := range counts {
		out = append(out, models.YearCount{Year: year, Count: n})
	}
	slices.SortFunc(out, func(a, b models.YearCount) int { return a.Year - b.Year })
	return out
}

// YearsWithDataFromManyCountries returns, ascending, the years in which more
// than threshold distinct countries have a total population record.
func (s *Snapshot) YearsWithDataFromManyCountries(threshold int) []int {
	perYear := make(map[int]map[string]struct{})
	for i := range s.Population {
		r := &s.Population[i]
		if !s.isTotal(r) {
			continue
		}
		set, ok := perYear[r.Year]
		if !ok {
			set = make(map[string]struct{})
			perYear[r.Year] = set
		}
		set[r.Country] = struct{}{}
	}

	years := make([]int, 0)
	for year, countries := range perYear {
		if len(countries) > threshold {
			years = append(years, year)
		}
	}
	slices.Sort(years)
	return years
}

// --- 4. DECADES ---

// PopulationByDecade walks 10-year buckets starting at decadeStart rounded
// down to a multiple of ten, up to the bucket holding MaxYear. For each
// non-empty bucket it reports the country's total population record closest
// to the bucket start; ties go to the first record in insertion order.
func (s *Snapshot) PopulationByDecade(country string, decadeStart int) []models.DecadeSummary {
	out := make([]models.DecadeSummary, 0)
	maxYear, ok := s.MaxYear()
	if !ok {
		return out
	}
	series := s.totals(country)

	for decade := floorDecade(decadeStart); decade < maxYear+10; decade += 10 {
		best := -1
		for i, r := range series {
			if r.Year < decade || r.Year >= decade+10 {
				continue
			}
			if best < 0 || r.Year-decade < series[best].Year-decade {
				best = i
			}
		}
		if best < 0 {
			continue
		}
		out = append(out, models.DecadeSummary{
			Decade:     fmt.Sprintf("%ds", decade),
			Year:       series[best].Year,
			Population: series[best].Value,
		})
	}
	return out
}
