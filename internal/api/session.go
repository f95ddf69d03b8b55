package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/UnknownOlympus/swasthya/internal/auth"
	"github.com/UnknownOlympus/swasthya/internal/geocoding"
	"github.com/labstack/echo/v4"
)

// Session reports who the caller is.
func (h *Handler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, auth.SessionFrom(c.Request().Context()))
}

// Geocode resolves a free-text address for the location picker.
func (h *Handler) Geocode(c echo.Context) error {
	address := strings.TrimSpace(c.QueryParam("q"))
	if address == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	ctx := c.Request().Context()
	place, err := h.geocoder.Geocode(ctx, address)
	switch {
	case errors.Is(err, geocoding.ErrNominatimEmptyResponse), errors.Is(err, geocoding.ErrEmptyResponse):
		return echo.NewHTTPError(http.StatusNotFound, "address not found")
	case err != nil:
		h.log.WarnContext(ctx, "Geocoding failed", "address", address, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "geocoding provider unavailable")
	}

	return c.JSON(http.StatusOK, place)
}
