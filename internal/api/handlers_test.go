package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"popstats/internal/engine"
	"popstats/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const total = "SP.POP.TOTL"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rec(year int, country, iso3 string, value float64) models.PopulationRecord {
	return models.PopulationRecord{
		Year: year, Country: country, ISO3: iso3, IndicatorID: total,
		Description: "Total population", Value: value, Status: "disponible", Unit: "personas",
	}
}

func fixture(persist engine.Persister) *engine.Dataset {
	return engine.New(persist, engine.DefaultOptions(), quietLogger(),
		[]models.Country{
			{Name: "France", ISO2: "FR", ISO3: "FRA"},
			{Name: "Chile", ISO2: "CL", ISO3: "CHL"},
		},
		[]models.Indicator{{ID: total, Description: "Total population"}},
		[]models.PopulationRecord{
			rec(2000, "France", "FRA", 58000000),
			rec(2010, "France", "FRA", 62000000),
			rec(2000, "Chile", "CHL", 15000000),
		},
	)
}

func newServer(d *engine.Dataset) (*echo.Echo, *Handler) {
	e := echo.New()
	h := NewHandler(d, quietLogger())
	h.RegisterRoutes(e)
	return e, h
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestLoadingReturns503(t *testing.T) {
	e, h := newServer(nil)

	w := do(e, http.MethodGet, "/api/countries", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	health := decode[map[string]any](t, do(e, http.MethodGet, "/healthz", ""))
	assert.Equal(t, false, health["ready"])

	h.SetDataset(fixture(nil))
	w = do(e, http.MethodGet, "/api/countries", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListCountriesPagination(t *testing.T) {
	e, _ := newServer(fixture(nil))

	w := do(e, http.MethodGet, "/api/countries?limit=1&offset=1", "")
	require.Equal(t, http.StatusOK, w.Code)

	page := decode[struct {
		Data   []models.Country `json:"data"`
		Total  int              `json:"total"`
		Limit  int              `json:"limit"`
		Offset int              `json:"offset"`
	}](t, w)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "CHL", page.Data[0].ISO3)

	w = do(e, http.MethodGet, "/api/countries?offset=10", "")
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestListRecordsFilters(t *testing.T) {
	e, _ := newServer(fixture(nil))

	page := decode[struct {
		Data  []models.PopulationRecord `json:"data"`
		Total int                       `json:"total"`
	}](t, do(e, http.MethodGet, "/api/records?country=France&from=2005", ""))
	require.Equal(t, 1, page.Total)
	assert.Equal(t, 2010, page.Data[0].Year)

	page = decode[struct {
		Data  []models.PopulationRecord `json:"data"`
		Total int                       `json:"total"`
	}](t, do(e, http.MethodGet, "/api/records?last=1", ""))
	assert.Equal(t, 1, page.Total)

	w := do(e, http.MethodGet, "/api/records?from=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCountryQueries(t *testing.T) {
	e, _ := newServer(fixture(nil))

	pct := decode[map[string]any](t, do(e, http.MethodGet, "/api/countries/France/percent-growth?from=2000&to=2010", ""))
	assert.Equal(t, 6.9, pct["percent"])

	w := do(e, http.MethodGet, "/api/countries/Chile/percent-growth?from=2000&to=2010", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(e, http.MethodGet, "/api/countries/France/percent-growth", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	growth := decode[[]models.GrowthPoint](t, do(e, http.MethodGet, "/api/countries/France/growth", ""))
	require.Len(t, growth, 1)
	assert.Equal(t, 4000000.0, growth[0].AbsoluteGrowth)

	ext := decode[models.Extrema](t, do(e, http.MethodGet, "/api/countries/France/extrema", ""))
	assert.Equal(t, 2000, ext.MinYear)
	assert.Equal(t, 2010, ext.MaxYear)

	cov := decode[models.Coverage](t, do(e, http.MethodGet, "/api/countries/Chile/coverage?from=2000&to=2002", ""))
	assert.Equal(t, []int{2001, 2002}, cov.MissingYears)
	assert.False(t, cov.Complete)

	w = do(e, http.MethodGet, "/api/countries/Chile/coverage?from=0&to=100000", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	pop := decode[map[string]any](t, do(e, http.MethodGet, "/api/countries/France/population/2010", ""))
	assert.Equal(t, 62000000.0, pop["population"])

	w = do(e, http.MethodGet, "/api/countries/France/population/1999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	years := decode[[]int](t, do(e, http.MethodGet, "/api/countries/France/growth-years?threshold=1000000", ""))
	assert.Equal(t, []int{2010}, years)
}

func TestYearQueries(t *testing.T) {
	e, _ := newServer(fixture(nil))

	tot := decode[map[string]any](t, do(e, http.MethodGet, "/api/years/2000/total", ""))
	assert.Equal(t, 73000000.0, tot["total"])

	counts := decode[[]models.YearCount](t, do(e, http.MethodGet, "/api/years/counts", ""))
	assert.Equal(t, []models.YearCount{{Year: 2000, Count: 2}, {Year: 2010, Count: 1}}, counts)

	multi := decode[[]int](t, do(e, http.MethodGet, "/api/years/multi-country?threshold=1", ""))
	assert.Equal(t, []int{2000}, multi)

	w := do(e, http.MethodGet, "/api/years/latest/total", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCountry(t *testing.T) {
	d := fixture(nil)
	e, _ := newServer(d)

	w := do(e, http.MethodPost, "/api/countries", `{"name":"Peru","iso2":"PE","iso3":"PER"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, d.Countries(), 3)

	w = do(e, http.MethodPost, "/api/countries", `{"name":"Peru again","iso2":"PE","iso3":"PER"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(e, http.MethodPost, "/api/countries", `{"name":"Nowhere","iso3":"TOOLONG"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, d.Countries(), 3)
}

func TestCreateIndicator(t *testing.T) {
	e, _ := newServer(fixture(nil))

	w := do(e, http.MethodPost, "/api/indicators", `{"id":"SP.POP.GROW","description":"Population growth"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(e, http.MethodPost, "/api/indicators", `{"id":"SP.POP.GROW"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(e, http.MethodPost, "/api/indicators", `{"description":"no id"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpsertPopulation(t *testing.T) {
	d := fixture(nil)
	e, _ := newServer(d)

	w := do(e, http.MethodPut, "/api/population", `{"year":2020,"country":"Chile","indicator":"SP.POP.TOTL","value":19000000}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.PopulationRecord](t, w)
	assert.Equal(t, "CHL", created.ISO3)
	assert.Equal(t, "disponible", created.Status)

	w = do(e, http.MethodPut, "/api/population", `{"year":2020,"country":"Chile","indicator":"SP.POP.TOTL","value":19500000,"status":"estimado"}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[models.PopulationRecord](t, w)
	assert.Equal(t, 19500000.0, updated.Value)
	assert.Equal(t, "estimado", updated.Status)
	assert.Len(t, d.Population(), 4)

	w = do(e, http.MethodPut, "/api/population", `{"year":2020,"country":"Narnia","indicator":"SP.POP.TOTL","value":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(e, http.MethodPut, "/api/population", `{"year":2020,"indicator":"SP.POP.TOTL","value":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpsertPopulationAcceptsYearZeroAndNegativeValues(t *testing.T) {
	d := fixture(nil)
	e, _ := newServer(d)

	w := do(e, http.MethodPut, "/api/population", `{"year":0,"country":"Chile","indicator":"SP.POP.TOTL","value":-5}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	r := decode[models.PopulationRecord](t, w)
	assert.Equal(t, 0, r.Year)
	assert.Equal(t, -5.0, r.Value)

	_, ok := d.Lookup(0, "CHL", total)
	assert.True(t, ok)
}

type failingPersister struct{}

func (failingPersister) Save(string, any) error { return errors.New("disk full") }

func TestMutationPersistFailure(t *testing.T) {
	d := fixture(failingPersister{})
	e, _ := newServer(d)

	w := do(e, http.MethodPost, "/api/countries", `{"name":"Peru","iso2":"PE","iso3":"PER"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Len(t, d.Countries(), 2)
}

func TestMetricsEndpoint(t *testing.T) {
	e, _ := newServer(fixture(nil))
	do(e, http.MethodGet, "/api/indicators", "")

	w := do(e, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "popstats_http_requests_total")
	assert.Contains(t, w.Body.String(), `route="/api/indicators"`)
}
