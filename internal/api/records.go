package api

import (
	"net/http"

	"github.com/UnknownOlympus/swasthya/internal/auth"
	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (h *Handler) CreateRecord(c echo.Context) error {
	var body models.MedicalRecord
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record body")
	}

	ctx := c.Request().Context()
	rec, err := h.records.Add(ctx, auth.SessionFrom(ctx), body)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ListRecords(c echo.Context) error {
	ctx := c.Request().Context()
	records, err := h.records.List(ctx, auth.SessionFrom(ctx))
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, records)
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ctx := c.Request().Context()
	if err = h.records.Delete(ctx, auth.SessionFrom(ctx), id); err != nil {
		return fail(err)
	}

	return c.NoContent(http.StatusNoContent)
}
