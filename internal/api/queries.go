package api

import (
	"net/http"
	"strconv"

	"popstats/internal/models"

	"github.com/labstack/echo/v4"
)

// maxSpan bounds year ranges that are walked year by year.
const maxSpan = 1000

func (h *Handler) ListCountries(c echo.Context) error {
	return paginate(c, h.dataset().Countries())
}

func (h *Handler) ListIndicators(c echo.Context) error {
	return paginate(c, h.dataset().Indicators())
}

// ListRecords filters population records by any combination of indicator,
// country, from, to and last (the last N years of data).
func (h *Handler) ListRecords(c echo.Context) error {
	from, to, err := yearRange(c)
	if err != nil {
		return err
	}
	last, err := queryInt(c, "last", 0)
	if err != nil {
		return err
	}
	country := c.QueryParam("country")
	indicator := c.QueryParam("indicator")

	s := h.dataset().Snapshot()
	var records []models.PopulationRecord
	switch {
	case last > 0:
		records = s.RecordsInLastNYears(last)
	case country != "":
		records = s.RecordsForCountryInRange(country, from, to)
	case indicator != "":
		records = s.RecordsForIndicator(indicator)
	default:
		records = s.Population
	}

	out := make([]models.PopulationRecord, 0, len(records))
	for _, r := range records {
		if country != "" && r.Country != country {
			continue
		}
		if indicator != "" && r.IndicatorID != indicator {
			continue
		}
		if r.Year < from || r.Year > to {
			continue
		}
		out = append(out, r)
	}
	return paginate(c, out)
}

// --- PER COUNTRY ---

func (h *Handler) GetGrowth(c echo.Context) error {
	from, to, err := yearRange(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.dataset().Snapshot().YearlyGrowth(c.Param("name"), from, to))
}

func (h *Handler) GetPercentGrowth(c echo.Context) error {
	from, to, err := requiredRange(c)
	if err != nil {
		return err
	}
	name := c.Param("name")
	pct, ok := h.dataset().Snapshot().PercentGrowth(name, from, to)
	if !ok {
		return noData(name)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"country": name,
		"from":    from,
		"to":      to,
		"percent": pct,
	})
}

func (h *Handler) GetExtrema(c echo.Context) error {
	e := h.dataset().Snapshot().Extrema(c.Param("name"))
	if !e.HasRecords {
		return noData(e.Country)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) GetAverage(c echo.Context) error {
	from, to, err := yearRange(c)
	if err != nil {
		return err
	}
	name := c.Param("name")
	avg, ok := h.dataset().Snapshot().AvgPopulation(name, from, to)
	if !ok {
		return noData(name)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"country": name,
		"average": avg,
	})
}

func (h *Handler) GetMinRecent(c echo.Context) error {
	years, err := queryInt(c, "years", 20)
	if err != nil {
		return err
	}
	name := c.Param("name")
	lo, ok := h.dataset().Snapshot().MinPopulationInLastNYears(name, years)
	if !ok {
		return noData(name)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"country": name,
		"years":   years,
		"minimum": lo,
	})
}

func (h *Handler) GetCoverage(c echo.Context) error {
	from, to, err := spanRange(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.dataset().Snapshot().Coverage(c.Param("name"), from, to))
}

func (h *Handler) GetDecades(c echo.Context) error {
	start, err := queryInt(c, "start", 1960)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.dataset().Snapshot().PopulationByDecade(c.Param("name"), start))
}

func (h *Handler) GetYearsAbove(c echo.Context) error {
	threshold, err := queryFloat(c, "threshold", 1_000_000_000)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.dataset().Snapshot().PopulationAboveThreshold(c.Param("name"), threshold))
}

func (h *Handler) GetGrowthYears(c echo.Context) error {
	threshold, err := queryFloat(c, "threshold", 1_000_000)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.dataset().Snapshot().YearsWithGrowthAbove(c.Param("name"), threshold))
}

func (h *Handler) GetPopulation(c echo.Context) error {
	year, err := pathInt(c, "year")
	if err != nil {
		return err
	}
	name := c.Param("name")
	v, ok := h.dataset().Snapshot().TotalPopulationOf(name, year)
	if !ok {
		return noData(name + " in " + strconv.Itoa(year))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"country":    name,
		"year":       year,
		"population": v,
	})
}

// --- PER YEAR ---

func (h *Handler) GetYearCounts(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dataset().Snapshot().SortedRecordCounts())
}

func (h *Handler) GetYearTotal(c echo.Context) error {
	year, err := pathInt(c, "year")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"year":  year,
		"total": h.dataset().Snapshot().TotalPopulationInYear(year),
	})
}

func (h *Handler) GetMultiCountryYears(c echo.Context) error {
	threshold, err := queryInt(c, "threshold", 50)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.dataset().Snapshot().YearsWithDataFromManyCountries(threshold))
}

// --- CROSS COUNTRY REPORTS ---

func (h *Handler) GetAvgGrowth(c echo.Context) error {
	percent, err := queryFloat(c, "percent", 2)
	if err != nil {
		return err
	}
	years, err := queryInt(c, "years", 5)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.dataset().Snapshot().CountriesWithAvgGrowthAbove(percent, years))
}

func (h *Handler) GetComplete(c echo.Context) error {
	from, to, err := spanRange(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.dataset().Snapshot().CountriesWithCompleteData(from, to))
}

// spanRange is requiredRange limited to maxSpan years.
func spanRange(c echo.Context) (int, int, error) {
	from, to, err := requiredRange(c)
	if err != nil {
		return 0, 0, err
	}
	if to > from && uint(to-from) > maxSpan {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "year range too wide")
	}
	return from, to, nil
}
