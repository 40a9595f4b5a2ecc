package api

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync/atomic"

	"popstats/internal/engine"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	data   atomic.Pointer[engine.Dataset]
	logger *slog.Logger
}

// NewHandler accepts a nil dataset; the API then answers 503 until SetDataset.
func NewHandler(data *engine.Dataset, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{logger: logger}
	if data != nil {
		h.SetDataset(data)
	}
	return h
}

// SetDataset swaps in a loaded dataset. Safe to call while serving.
func (h *Handler) SetDataset(d *engine.Dataset) {
	h.data.Store(d)
	h.refreshGauges(d)
}

func (h *Handler) dataset() *engine.Dataset {
	return h.data.Load()
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Validator = &requestValidator{validate: validator.New()}

	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api", metrics.instrument, h.requireData)
	api.GET("/countries", h.ListCountries)
	api.POST("/countries", h.CreateCountry)
	api.GET("/indicators", h.ListIndicators)
	api.POST("/indicators", h.CreateIndicator)
	api.PUT("/population", h.UpsertPopulation)
	api.GET("/records", h.ListRecords)

	country := api.Group("/countries/:name")
	country.GET("/growth", h.GetGrowth)
	country.GET("/percent-growth", h.GetPercentGrowth)
	country.GET("/extrema", h.GetExtrema)
	country.GET("/average", h.GetAverage)
	country.GET("/min-recent", h.GetMinRecent)
	country.GET("/coverage", h.GetCoverage)
	country.GET("/decades", h.GetDecades)
	country.GET("/above", h.GetYearsAbove)
	country.GET("/growth-years", h.GetGrowthYears)
	country.GET("/population/:year", h.GetPopulation)

	api.GET("/years/counts", h.GetYearCounts)
	api.GET("/years/multi-country", h.GetMultiCountryYears)
	api.GET("/years/:year/total", h.GetYearTotal)

	api.GET("/reports/avg-growth", h.GetAvgGrowth)
	api.GET("/reports/complete", h.GetComplete)
}

// requireData answers 503 while the dataset is still loading.
func (h *Handler) requireData(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.dataset() == nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is loading")
		}
		return next(c)
	}
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"ready":  h.dataset() != nil,
	})
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// --- HELPERS ---
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func paginate[T any](c echo.Context, items []T) error {
	total := len(items)
	limit, offset := getPaginationParams(c, total)

	if offset >= total {
		return c.JSON(http.StatusOK, map[string]any{
			"data":   []T{},
			"total":  total,
			"limit":  limit,
			"offset": offset,
		})
	}

	end := offset + limit
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data":   items[offset:end],
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// queryInt reads an optional integer query parameter.
func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return v, nil
}

func queryFloat(c echo.Context, name string, def float64) (float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a number")
	}
	return v, nil
}

func pathInt(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return v, nil
}

// yearRange reads from/to, defaulting to an unbounded range.
func yearRange(c echo.Context) (int, int, error) {
	from, err := queryInt(c, "from", math.MinInt)
	if err != nil {
		return 0, 0, err
	}
	to, err := queryInt(c, "to", math.MaxInt)
	if err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

// requiredRange is yearRange for queries that need both endpoints.
func requiredRange(c echo.Context) (int, int, error) {
	if c.QueryParam("from") == "" || c.QueryParam("to") == "" {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "from and to are required")
	}
	return yearRange(c)
}

func noData(what string) error {
	return echo.NewHTTPError(http.StatusNotFound, "no data for "+what)
}
