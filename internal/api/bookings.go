package api

import (
	"net/http"

	"github.com/UnknownOlympus/swasthya/internal/auth"
	"github.com/UnknownOlympus/swasthya/internal/links"
	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/UnknownOlympus/swasthya/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// BookingView is a booking with its consultation room for video bookings.
type BookingView struct {
	models.Booking
	VideoCall string `json:"videoCall,omitempty"`
}

type statusBody struct {
	Status models.BookingStatus `json:"status"`
}

func bookingView(b models.Booking) BookingView {
	view := BookingView{Booking: b}
	if b.Kind == models.BookingVideo {
		view.VideoCall = links.VideoCall(b.ID)
	}

	return view
}

func bookingViews(bookings []models.Booking) []BookingView {
	out := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, bookingView(b))
	}

	return out
}

func (h *Handler) CreateBooking(c echo.Context) error {
	var body service.BookingRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking body")
	}

	ctx := c.Request().Context()
	booking, err := h.bookings.Book(ctx, auth.SessionFrom(ctx), body)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusCreated, bookingView(*booking))
}

func (h *Handler) ListBookings(c echo.Context) error {
	ctx := c.Request().Context()
	bookings, err := h.bookings.MyBookings(ctx, auth.SessionFrom(ctx))
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, bookingViews(bookings))
}

func (h *Handler) ListHospitalBookings(c echo.Context) error {
	ctx := c.Request().Context()
	bookings, err := h.bookings.HospitalBookings(ctx, auth.SessionFrom(ctx), c.Param("id"))
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, bookingViews(bookings))
}

func (h *Handler) UpdateBookingStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var body statusBody
	if err = c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status body")
	}

	ctx := c.Request().Context()
	booking, err := h.bookings.SetStatus(ctx, auth.SessionFrom(ctx), id, body.Status)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, bookingView(*booking))
}
