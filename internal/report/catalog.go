// Package report renders the query engine's results as text: a fixed catalog
// of lettered reports plus an interactive menu for browsing them and entering
// data.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"popstats/internal/engine"
	"popstats/internal/models"
)

// Params are the fixed inputs the catalog's reports run with.
type Params struct {
	PeriodFrom, PeriodTo int     // A, R, W
	LastYears            int     // D
	BeforeYear           int     // F
	AfterYear            int     // G
	GrowthFrom, GrowthTo int     // H
	LatestYear           int     // I
	TotalYears           [4]int  // E, N, S, V
	AvgGrowthPercent     float64 // L
	AvgGrowthYears       int     // L
	LargePopulation      float64 // M
	MinWindowYears       int     // O
	AverageFrom          int     // P
	AverageTo            int     // P
	GrowthThreshold      float64 // T
	DecadeStart          int     // U
	ManyCountries        int     // Y
}

// DefaultParams are the fixed years and thresholds of the standard report set.
func DefaultParams() Params {
	return Params{
		PeriodFrom:       2000,
		PeriodTo:         2023,
		LastYears:        10,
		BeforeYear:       2000,
		AfterYear:        2010,
		GrowthFrom:       2010,
		GrowthTo:         2020,
		LatestYear:       2023,
		TotalYears:       [4]int{2022, 2000, 2019, 2023},
		AvgGrowthPercent: 2,
		AvgGrowthYears:   5,
		LargePopulation:  1_000_000_000,
		MinWindowYears:   20,
		AverageFrom:      1980,
		AverageTo:        2020,
		GrowthThreshold:  1_000_000,
		DecadeStart:      1960,
		ManyCountries:    50,
	}
}

// Report is one entry of the command table.
type Report struct {
	Key   string
	Title string
	run   func(p *printer, s *engine.Snapshot, params Params)
}

// Catalog maps a report letter to its handler.
type Catalog struct {
	reports map[string]Report
	params  Params
	unit    string
}

// NewCatalog builds the lettered report table. unit labels population totals.
func NewCatalog(params Params, unit string) *Catalog {
	c := &Catalog{reports: make(map[string]Report), params: params, unit: unit}
	for _, r := range buildReports(params) {
		c.reports[r.Key] = r
	}
	return c
}

// Reports lists the catalog in key order.
func (c *Catalog) Reports() []Report {
	out := make([]Report, 0, len(c.reports))
	for _, r := range c.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Run executes the report registered under key (case-insensitive).
func (c *Catalog) Run(w io.Writer, key string, s *engine.Snapshot) error {
	r, ok := c.reports[strings.ToUpper(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("unknown report %q", key)
	}
	p := newPrinter(w, c.unit)
	p.title(r.Title)
	r.run(p, s, c.params)
	return nil
}

func buildReports(pr Params) []Report {
	return []Report{
		{"A", fmt.Sprintf("Population data %d-%d", pr.PeriodFrom, pr.PeriodTo), reportCountryRange},
		{"B", "Countries with ISO codes", reportCountries},
		{"C", "Total population records", reportTotalRecords},
		{"D", fmt.Sprintf("Records from the last %d years", pr.LastYears), reportLastYears},
		{"E", fmt.Sprintf("Total population in %d", pr.TotalYears[0]), yearTotal(0)},
		{"F", fmt.Sprintf("Total population before %d", pr.BeforeYear), reportBefore},
		{"G", fmt.Sprintf("Total population after %d", pr.AfterYear), reportAfter},
		{"H", fmt.Sprintf("Percent growth %d-%d", pr.GrowthFrom, pr.GrowthTo), reportPercentGrowth},
		{"I", fmt.Sprintf("Population in %d", pr.LatestYear), reportLatest},
		{"J", "Year with the lowest population", reportMinYear},
		{"K", "Records per year", reportCounts},
		{"L", fmt.Sprintf("Countries averaging more than %g%% yearly growth", pr.AvgGrowthPercent), reportAvgGrowth},
		{"M", fmt.Sprintf("Years with population above %s", number(pr.LargePopulation)), reportAbove},
		{"N", fmt.Sprintf("Total population in %d", pr.TotalYears[1]), yearTotal(1)},
		{"O", fmt.Sprintf("Minimum population in the last %d years", pr.MinWindowYears), reportMinWindow},
		{"P", fmt.Sprintf("Average population %d-%d", pr.AverageFrom, pr.AverageTo), reportAverage},
		{"Q", "Years with population data", reportYearsWithData},
		{"R", fmt.Sprintf("Countries with data %d-%d", pr.PeriodFrom, pr.PeriodTo), reportComplete},
		{"S", fmt.Sprintf("Total population in %d", pr.TotalYears[2]), yearTotal(2)},
		{"T", fmt.Sprintf("Years with growth above %s", number(pr.GrowthThreshold)), reportGrowthYears},
		{"U", fmt.Sprintf("Population by decade since %d", pr.DecadeStart), reportDecades},
		{"V", fmt.Sprintf("Total population in %d", pr.TotalYears[3]), yearTotal(3)},
		{"W", "Years without population data", reportMissing},
		{"X", "Year with the highest population", reportMaxYear},
		{"Y", fmt.Sprintf("Years with data from more than %d countries", pr.ManyCountries), reportManyCountries},
	}
}

func reportCountryRange(p *printer, s *engine.Snapshot, pr Params) {
	for _, c := range s.Countries {
		p.line("\n%s:", c.Name)
		for _, r := range s.RecordsForCountryInRange(c.Name, pr.PeriodFrom, pr.PeriodTo) {
			p.line("  Year: %d, Population: %s %s", r.Year, number(r.Value), r.Unit)
		}
	}
}

func reportCountries(p *printer, s *engine.Snapshot, _ Params) {
	for _, c := range s.Countries {
		p.line("%s: ISO2 %s, ISO3 %s", c.Name, c.ISO2, c.ISO3)
	}
}

func reportTotalRecords(p *printer, s *engine.Snapshot, _ Params) {
	printRecords(p, s.RecordsForIndicator(s.TotalPopulationIndicator()))
}

func reportLastYears(p *printer, s *engine.Snapshot, pr Params) {
	printRecords(p, s.RecordsInLastNYears(pr.LastYears))
}

func reportBefore(p *printer, s *engine.Snapshot, pr Params) {
	printRecords(p, s.TotalPopulationRecordsBefore(pr.BeforeYear))
}

func reportAfter(p *printer, s *engine.Snapshot, pr Params) {
	printRecords(p, s.TotalPopulationRecordsAfter(pr.AfterYear))
}

func yearTotal(i int) func(p *printer, s *engine.Snapshot, pr Params) {
	return func(p *printer, s *engine.Snapshot, pr Params) {
		year := pr.TotalYears[i]
		p.line("Total population in %d: %s %s", year, number(s.TotalPopulationInYear(year)), p.unit)
	}
}

func reportPercentGrowth(p *printer, s *engine.Snapshot, pr Params) {
	for _, c := range s.Countries {
		if pct, ok := s.PercentGrowth(c.Name, pr.GrowthFrom, pr.GrowthTo); ok {
			p.line("%s: %g%%", c.Name, pct)
		}
	}
}

func reportLatest(p *printer, s *engine.Snapshot, pr Params) {
	for _, c := range s.Countries {
		if v, ok := s.TotalPopulationOf(c.Name, pr.LatestYear); ok {
			p.line("%s: %s %s", c.Name, number(v), p.unit)
		}
	}
}

func reportMinYear(p *printer, s *engine.Snapshot, _ Params) {
	for _, c := range s.Countries {
		if e := s.Extrema(c.Name); e.HasRecords {
			p.line("%s: Year %d, Population %s %s", c.Name, e.MinYear, number(e.MinValue), p.unit)
		}
	}
}

func reportMaxYear(p *printer, s *engine.Snapshot, _ Params) {
	for _, c := range s.Countries {
		if e := s.Extrema(c.Name); e.HasRecords {
			p.line("%s: Year %d, Population %s %s", c.Name, e.MaxYear, number(e.MaxValue), p.unit)
		}
	}
}

func reportCounts(p *printer, s *engine.Snapshot, _ Params) {
	for _, yc := range s.SortedRecordCounts() {
		p.line("Year %d: %d records", yc.Year, yc.Count)
	}
}

func reportAvgGrowth(p *printer, s *engine.Snapshot, pr Params) {
	for _, g := range s.CountriesWithAvgGrowthAbove(pr.AvgGrowthPercent, pr.AvgGrowthYears) {
		p.line("%s: %g%%", g.Country, g.AverageGrowth)
	}
}

func reportAbove(p *printer, s *engine.Snapshot, pr Params) {
	for _, c := range s.Countries {
		if ys := s.PopulationAboveThreshold(c.Name, pr.LargePopulation); len(ys) > 0 {
			p.line("%s: %s", c.Name, years(ys))
		}
	}
}

func reportMinWindow(p *printer, s *engine.Snapshot, pr Params) {
	for _, c := range s.Countries {
		if v, ok := s.MinPopulationInLastNYears(c.Name, pr.MinWindowYears); ok {
			p.line("%s: %s %s", c.Name, number(v), p.unit)
		}
	}
}

func reportAverage(p *printer, s *engine.Snapshot, pr Params) {
	for _, c := range s.Countries {
		if v, ok := s.AvgPopulation(c.Name, pr.AverageFrom, pr.AverageTo); ok {
			p.line("%s: %s %s", c.Name, number(v), p.unit)
		}
	}
}

func reportYearsWithData(p *printer, s *engine.Snapshot, _ Params) {
	for _, c := range s.Countries {
		p.line("%s: %d years", c.Name, s.CountYearsWithData(c.Name))
	}
}

func reportComplete(p *printer, s *engine.Snapshot, pr Params) {
	p.line("Countries with complete data: %s", names(s.CountriesWithCompleteData(pr.PeriodFrom, pr.PeriodTo)))
}

func reportGrowthYears(p *printer, s *engine.Snapshot, pr Params) {
	for _, c := range s.Countries {
		if ys := s.YearsWithGrowthAbove(c.Name, pr.GrowthThreshold); len(ys) > 0 {
			p.line("%s: %s", c.Name, years(ys))
		}
	}
}

func reportDecades(p *printer, s *engine.Snapshot, pr Params) {
	for _, c := range s.Countries {
		p.line("\n%s:", c.Name)
		for _, d := range s.PopulationByDecade(c.Name, pr.DecadeStart) {
			p.line("  %s: %s %s (year %d)", d.Decade, number(d.Population), p.unit, d.Year)
		}
	}
}

func reportMissing(p *printer, s *engine.Snapshot, pr Params) {
	for _, c := range s.Countries {
		if ys := s.YearsMissingData(c.Name, pr.PeriodFrom, pr.PeriodTo); len(ys) > 0 {
			p.line("%s: %s", c.Name, years(ys))
		}
	}
}

func reportManyCountries(p *printer, s *engine.Snapshot, pr Params) {
	p.line("Years: %s", years(s.YearsWithDataFromManyCountries(pr.ManyCountries)))
}

func printRecords(p *printer, records []models.PopulationRecord) {
	for _, r := range records {
		p.line("%s (%d): %s %s", r.Country, r.Year, number(r.Value), r.Unit)
	}
}
