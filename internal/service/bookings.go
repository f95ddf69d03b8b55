package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/swasthya/internal/metrics"
	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/UnknownOlympus/swasthya/internal/repository"
	"github.com/google/uuid"
)

// HospitalLookup returns a hospital as the directory shows it, overrides included.
type HospitalLookup interface {
	Get(ctx context.Context, id string) (*models.Hospital, error)
}

// BookingRequest is what a user submits to book a service.
type BookingRequest struct {
	HospitalID  string             `json:"hospitalId"`
	PatientName string             `json:"patientName"`
	Phone       string             `json:"phone"`
	Kind        models.BookingKind `json:"kind"`
	ScheduledAt time.Time          `json:"scheduledAt"`
	Notes       string             `json:"notes"`
}

// BookingService manages appointment, bed, ambulance and video bookings.
type BookingService struct {
	log       *slog.Logger
	bookings  repository.BookingStore
	hospitals HospitalLookup
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewBookingService(
	log *slog.Logger,
	bookings repository.BookingStore,
	hospitals HospitalLookup,
	metrics *metrics.Metrics,
) *BookingService {
	return &BookingService{
		log:       log,
		bookings:  bookings,
		hospitals: hospitals,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Book creates a pending booking for the caller. Ambulance requests without a time are
// scheduled immediately.
func (bs *BookingService) Book(ctx context.Context, session models.Session, req BookingRequest) (*models.Booking, error) {
	if session.Role < models.RoleUser {
		return nil, ErrForbidden
	}
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown booking kind %q", ErrInvalidInput, req.Kind)
	}
	if strings.TrimSpace(req.PatientName) == "" {
		return nil, fmt.Errorf("%w: patient name is required", ErrInvalidInput)
	}
	if req.ScheduledAt.IsZero() {
		if req.Kind != models.BookingAmbulance {
			return nil, fmt.Errorf("%w: scheduled time is required", ErrInvalidInput)
		}
		req.ScheduledAt = bs.now()
	}

	h, err := bs.hospitals.Get(ctx, req.HospitalID)
	if err != nil {
		return nil, err
	}

	switch {
	case req.Kind == models.BookingAmbulance && !h.Ambulance:
		return nil, fmt.Errorf("%w: %s has no ambulance service", ErrInvalidInput, h.Name)
	case req.Kind == models.BookingBed && h.AvailableBeds < 1:
		return nil, fmt.Errorf("%w: %s has no available beds", ErrInvalidInput, h.Name)
	}

	booking := &models.Booking{
		HospitalID:  h.ID,
		UserUID:     session.UID,
		PatientName: strings.TrimSpace(req.PatientName),
		Phone:       strings.TrimSpace(req.Phone),
		Kind:        req.Kind,
		Status:      models.StatusPending,
		ScheduledAt: req.ScheduledAt.UTC(),
		Notes:       req.Notes,
	}
	if err = bs.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	bs.metrics.Bookings.WithLabelValues(string(booking.Kind)).Inc()
	bs.log.InfoContext(ctx, "Booking created", "booking", booking.ID, "hospital", h.ID, "kind", booking.Kind)

	return booking, nil
}

// MyBookings lists the caller's bookings.
func (bs *BookingService) MyBookings(ctx context.Context, session models.Session) ([]models.Booking, error) {
	if session.Role < models.RoleUser {
		return nil, ErrForbidden
	}

	return bs.bookings.ListBookingsByUser(ctx, session.UID)
}

// HospitalBookings lists the bookings of a hospital administered by the caller.
func (bs *BookingService) HospitalBookings(
	ctx context.Context,
	session models.Session,
	hospitalID string,
) ([]models.Booking, error) {
	if !session.Administers(hospitalID) {
		return nil, ErrForbidden
	}

	return bs.bookings.ListBookingsByHospital(ctx, hospitalID)
}

// SetStatus moves a booking along its lifecycle. The hospital administrator may make any legal
// transition; the user who booked may only cancel.
func (bs *BookingService) SetStatus(
	ctx context.Context,
	session models.Session,
	id uuid.UUID,
	status models.BookingStatus,
) (*models.Booking, error) {
	if session.Role < models.RoleUser {
		return nil, ErrForbidden
	}

	booking, err := bs.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	owner := booking.UserUID == session.UID && status == models.StatusCancelled
	if !session.Administers(booking.HospitalID) && !owner {
		return nil, ErrForbidden
	}
	if !models.CanTransition(booking.Status, status) {
		return nil, fmt.Errorf("%w: cannot move booking from %s to %s", ErrInvalidInput, booking.Status, status)
	}

	if err = bs.bookings.UpdateBookingStatus(ctx, id, status); err != nil {
		return nil, err
	}

	booking.Status = status

	return booking, nil
}
