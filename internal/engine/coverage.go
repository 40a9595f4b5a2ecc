package engine

import "popstats/internal/models"

// CountYearsWithData counts distinct years with a total population record.
func (s *Snapshot) CountYearsWithData(country string) int {
	return len(s.totalYears(country))
}

// YearsMissingData lists, ascending, the years in [from, to] for which the
// country has no total population record.
func (s *Snapshot) YearsMissingData(country string, from, to int) []int {
	have := s.totalYears(country)
	missing := make([]int, 0)
	for year := from; year <= to; year++ {
		if _, ok := have[year]; !ok {
			missing = append(missing, year)
		}
		// year++ would wrap past math.MaxInt
		if year == to {
			break
		}
	}
	return missing
}

// CountriesWithCompleteData returns, in collection order, the names of the
// countries that have a total population record for every year in [from, to].
// An empty range is trivially complete.
func (s *Snapshot) CountriesWithCompleteData(from, to int) []string {
	out := make([]string, 0)
	for _, c := range s.Countries {
		if len(s.YearsMissingData(c.Name, from, to)) == 0 {
			out = append(out, c.Name)
		}
	}
	return out
}

// Coverage reports a country's data availability over [from, to].
func (s *Snapshot) Coverage(country string, from, to int) models.Coverage {
	missing := s.YearsMissingData(country, from, to)
	return models.Coverage{
		Country:       country,
		YearsWithData: s.CountYearsWithData(country),
		From:          from,
		To:            to,
		MissingYears:  missing,
		Complete:      len(missing) == 0,
	}
}
