package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, hospital_id, user_uid, patient_name, phone, kind, status, scheduled_at, notes, created_at`

func scanBooking(row pgx.Row) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.HospitalID, &b.UserUID, &b.PatientName, &b.Phone,
		&b.Kind, &b.Status, &b.ScheduledAt, &b.Notes, &b.CreatedAt,
	)

	return b, err
}

// CreateBooking inserts a booking, assigning its id.
func (r *Repository) CreateBooking(ctx context.Context, b *models.Booking) error {
	query := `
		INSERT INTO bookings (id, hospital_id, user_uid, patient_name, phone, kind, status, scheduled_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at;
	`

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx, query,
		b.ID, b.HospitalID, b.UserUID, b.PatientName, b.Phone, string(b.Kind), string(b.Status), b.ScheduledAt, b.Notes,
	).Scan(&b.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	return nil
}

// GetBooking returns a booking by id or ErrNotFound.
func (r *Repository) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1;`

	b, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &b, nil
}

// ListBookingsByUser returns the bookings made by uid, soonest first.
func (r *Repository) ListBookingsByUser(ctx context.Context, uid string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_uid = $1 ORDER BY scheduled_at ASC;`

	return r.listBookings(ctx, query, uid)
}

// ListBookingsByHospital returns the bookings made against a hospital, soonest first.
func (r *Repository) ListBookingsByHospital(ctx context.Context, hospitalID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE hospital_id = $1 ORDER BY scheduled_at ASC;`

	return r.listBookings(ctx, query, hospitalID)
}

func (r *Repository) listBookings(ctx context.Context, query string, arg string) ([]models.Booking, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		b, errScan := scanBooking(rows)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", errScan)
		}
		bookings = append(bookings, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return bookings, nil
}

// UpdateBookingStatus sets the status of a booking.
func (r *Repository) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus) error {
	query := `UPDATE bookings SET status = $1 WHERE id = $2;`

	tag, err := r.db.Exec(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}

	return nil
}
