package api

import (
	"errors"
	"net/http"

	"popstats/internal/engine"

	"github.com/labstack/echo/v4"
)

type CountryRequest struct {
	Name string `json:"name" validate:"required"`
	ISO2 string `json:"iso2" validate:"omitempty,len=2"`
	ISO3 string `json:"iso3" validate:"required,len=3"`
}

type IndicatorRequest struct {
	ID          string `json:"id" validate:"required"`
	Description string `json:"description"`
}

type PopulationRequest struct {
	Year        int     `json:"year"`
	Country     string  `json:"country" validate:"required"`
	IndicatorID string  `json:"indicator" validate:"required"`
	Value       float64 `json:"value"`
	Status      string  `json:"status"`
	Unit        string  `json:"unit"`
}

func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

func (h *Handler) CreateCountry(c echo.Context) error {
	var req CountryRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	d := h.dataset()
	err := d.AddCountry(req.Name, req.ISO2, req.ISO3)
	metrics.mutation("country", err)
	if err != nil {
		return h.mutationError(err)
	}
	h.refreshGauges(d)
	return c.JSON(http.StatusCreated, req)
}

func (h *Handler) CreateIndicator(c echo.Context) error {
	var req IndicatorRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	d := h.dataset()
	err := d.AddIndicator(req.ID, req.Description)
	metrics.mutation("indicator", err)
	if err != nil {
		return h.mutationError(err)
	}
	h.refreshGauges(d)
	return c.JSON(http.StatusCreated, req)
}

// UpsertPopulation answers 201 with the new record or 200 with the updated one.
func (h *Handler) UpsertPopulation(c echo.Context) error {
	var req PopulationRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	d := h.dataset()
	created, err := d.UpsertPopulation(req.Year, req.Country, req.IndicatorID, req.Value, req.Status, req.Unit)
	metrics.mutation("population", err)
	if err != nil {
		return h.mutationError(err)
	}
	h.refreshGauges(d)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	if r, ok := d.LookupByCountry(req.Year, req.Country, req.IndicatorID); ok {
		return c.JSON(status, r)
	}
	return c.NoContent(status)
}

func (h *Handler) mutationError(err error) error {
	switch {
	case errors.Is(err, engine.ErrDuplicateCountry), errors.Is(err, engine.ErrDuplicateIndicator):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, engine.ErrUnknownCountry), errors.Is(err, engine.ErrUnknownIndicator):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("mutation failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not persist change")
	}
}

func (h *Handler) refreshGauges(d *engine.Dataset) {
	if d == nil {
		return
	}
	metrics.setRecords(len(d.Countries()), len(d.Indicators()), len(d.Population()))
}
