package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/UnknownOlympus/swasthya/internal/auth"
	"github.com/UnknownOlympus/swasthya/internal/links"
	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/UnknownOlympus/swasthya/internal/service"
	"github.com/labstack/echo/v4"
)

// HospitalView is a hospital as listed to a caller.
type HospitalView struct {
	models.Hospital
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// ListResponse is the body of the directory listings.
type ListResponse struct {
	Reference *models.Coordinates `json:"reference,omitempty"`
	Count     int                 `json:"count"`
	Hospitals []HospitalView      `json:"hospitals"`
}

func listResponse(ref models.Reference, results []service.HospitalResult) ListResponse {
	out := ListResponse{Count: len(results), Hospitals: make([]HospitalView, 0, len(results))}
	if origin, ok := ref.Coordinates(); ok {
		out.Reference = &origin
	}

	for _, r := range results {
		view := HospitalView{Hospital: r.Record}
		if r.HasDistance {
			distance := math.Round(r.DistanceKm*100) / 100
			view.DistanceKm = &distance
		}
		out.Hospitals = append(out.Hospitals, view)
	}

	return out
}

func reference(c echo.Context) (models.Reference, error) {
	ref, err := models.ParseReference(c.QueryParam("lat"), c.QueryParam("lng"))
	if err != nil {
		return ref, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return ref, nil
}

func radius(c echo.Context) (*float64, error) {
	raw := c.QueryParam("radius")
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || value < 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "radius must be a non-negative number of kilometers")
	}

	return &value, nil
}

// ListHospitals serves GET /hospitals?lat=&lng=&radius=&q=.
func (h *Handler) ListHospitals(c echo.Context) error {
	ref, err := reference(c)
	if err != nil {
		return err
	}
	radiusKm, err := radius(c)
	if err != nil {
		return err
	}

	results, err := h.directory.Nearby(c.Request().Context(), ref, service.Query{Text: c.QueryParam("q"), RadiusKm: radiusKm})
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, listResponse(ref, results))
}

// SearchHospitals serves GET /hospitals/search?q=&lat=&lng=.
func (h *Handler) SearchHospitals(c echo.Context) error {
	ref, err := reference(c)
	if err != nil {
		return err
	}

	results, err := h.directory.Search(c.Request().Context(), ref, c.QueryParam("q"))
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, listResponse(ref, results))
}

// ListAmbulances serves GET /hospitals/ambulance?lat=&lng=.
func (h *Handler) ListAmbulances(c echo.Context) error {
	ref, err := reference(c)
	if err != nil {
		return err
	}

	results, err := h.directory.Ambulance(c.Request().Context(), ref)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, listResponse(ref, results))
}

func (h *Handler) GetHospital(c echo.Context) error {
	hospital, err := h.directory.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, hospital)
}

// GetHospitalLinks serves the call, chat, ride and directions links of a hospital.
func (h *Handler) GetHospitalLinks(c echo.Context) error {
	ref, err := reference(c)
	if err != nil {
		return err
	}

	hospital, err := h.directory.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, links.ForHospital(*hospital, ref))
}

func (h *Handler) CreateHospital(c echo.Context) error {
	var body models.Hospital
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid hospital body")
	}

	created, err := h.directory.Create(c.Request().Context(), auth.SessionFrom(c.Request().Context()), body)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateHospital(c echo.Context) error {
	var body models.Hospital
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid hospital body")
	}
	body.ID = c.Param("id")

	updated, err := h.directory.Update(c.Request().Context(), auth.SessionFrom(c.Request().Context()), body)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) ClaimHospital(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.directory.Claim(ctx, auth.SessionFrom(ctx), c.Param("id")); err != nil {
		return fail(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SetOverride(c echo.Context) error {
	var body models.HospitalOverride
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid override body")
	}

	ctx := c.Request().Context()
	merged, err := h.directory.SetOverride(ctx, auth.SessionFrom(ctx), c.Param("id"), body)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, merged)
}

func (h *Handler) ClearOverride(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.directory.ClearOverride(ctx, auth.SessionFrom(ctx), c.Param("id")); err != nil {
		return fail(err)
	}

	return c.NoContent(http.StatusNoContent)
}
