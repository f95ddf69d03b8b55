package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"

	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database is the subset of pgxpool.Pool used by the repository.
// Both *pgxpool.Pool and pgxmock pools satisfy it.
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Common repository errors.
var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyClaimed = errors.New("hospital already has an administrator")
)

type Repository struct {
	db  Database
	log *slog.Logger
}

// HospitalStore is the hospital persistence used by the directory.
type HospitalStore interface {
	ListHospitals(ctx context.Context) ([]models.Hospital, error)
	GetHospital(ctx context.Context, id string) (*models.Hospital, error)
	CreateHospital(ctx context.Context, h *models.Hospital) error
	UpdateHospital(ctx context.Context, h *models.Hospital) error
	ClaimHospital(ctx context.Context, id, uid string) error
	AdminHospitalIDs(ctx context.Context, uid string) ([]string, error)
}

// GeocodeQueue is the persistence used by the coordinate backfill.
type GeocodeQueue interface {
	FetchHospitalsForGeocoding(ctx context.Context, limit int) ([]models.GeocodeTask, error)
	UpdateHospitalCoordinates(ctx context.Context, hospitalID string, coords models.Coordinates) error
	IncrementGeocodeFailure(ctx context.Context, hospitalID string, errMsg string) error
}

// BookingStore is the booking persistence.
type BookingStore interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListBookingsByUser(ctx context.Context, uid string) ([]models.Booking, error)
	ListBookingsByHospital(ctx context.Context, hospitalID string) ([]models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus) error
}

// RecordStore is the medical record metadata persistence.
type RecordStore interface {
	CreateRecord(ctx context.Context, r *models.MedicalRecord) error
	ListRecordsByUser(ctx context.Context, uid string) ([]models.MedicalRecord, error)
	DeleteRecord(ctx context.Context, id uuid.UUID, uid string) error
}

// Interface groups every store implemented by Repository.
type Interface interface {
	HospitalStore
	GeocodeQueue
	BookingStore
	RecordStore
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// NewDatabase opens a connection pool and verifies it with a ping.
func NewDatabase(ctx context.Context, host, port, user, password, name string) (*pgxpool.Pool, error) {
	dsn := (&url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     net.JoinHostPort(host, port),
		Path:     name,
		RawQuery: "sslmode=disable",
	}).String()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
