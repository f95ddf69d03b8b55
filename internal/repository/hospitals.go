package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const hospitalColumns = `id, name, address, city, phone, whatsapp, specialties, beds, available_beds,
	emergency, ambulance, rating, latitude, longitude, admin_uid, created_at, updated_at`

func scanHospital(row pgx.Row) (models.Hospital, error) {
	var (
		h        models.Hospital
		lat, lng *float64
	)

	err := row.Scan(
		&h.ID, &h.Name, &h.Address, &h.City, &h.Phone, &h.WhatsApp, &h.Specialties, &h.Beds, &h.AvailableBeds,
		&h.Emergency, &h.Ambulance, &h.Rating, &lat, &lng, &h.AdminUID, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return models.Hospital{}, err
	}

	if lat != nil && lng != nil {
		h.Location = &models.Coordinates{Latitude: *lat, Longitude: *lng}
	}
	if h.Specialties == nil {
		h.Specialties = []string{}
	}

	return h, nil
}

func location(h *models.Hospital) (*float64, *float64) {
	if h.Location == nil {
		return nil, nil
	}

	return &h.Location.Latitude, &h.Location.Longitude
}

// ListHospitals returns every hospital ordered by name.
func (r *Repository) ListHospitals(ctx context.Context) ([]models.Hospital, error) {
	query := `SELECT ` + hospitalColumns + ` FROM hospitals ORDER BY name ASC;`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query hospitals: %w", err)
	}
	defer rows.Close()

	hospitals := []models.Hospital{}
	for rows.Next() {
		h, errScan := scanHospital(rows)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan hospital: %w", errScan)
		}
		hospitals = append(hospitals, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	r.log.DebugContext(ctx, "Hospitals loaded", "count", len(hospitals))

	return hospitals, nil
}

// GetHospital returns a hospital by id or ErrNotFound.
func (r *Repository) GetHospital(ctx context.Context, id string) (*models.Hospital, error) {
	query := `SELECT ` + hospitalColumns + ` FROM hospitals WHERE id = $1;`

	h, err := scanHospital(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("hospital %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}

	return &h, nil
}

// CreateHospital inserts a hospital, assigning an id when it has none.
func (r *Repository) CreateHospital(ctx context.Context, h *models.Hospital) error {
	query := `
		INSERT INTO hospitals (
			id, name, address, city, phone, whatsapp, specialties, beds, available_beds,
			emergency, ambulance, rating, latitude, longitude, admin_uid
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at;
	`

	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.Specialties == nil {
		h.Specialties = []string{}
	}
	lat, lng := location(h)

	err := r.db.QueryRow(ctx, query,
		h.ID, h.Name, h.Address, h.City, h.Phone, h.WhatsApp, h.Specialties, h.Beds, h.AvailableBeds,
		h.Emergency, h.Ambulance, h.Rating, lat, lng, h.AdminUID,
	).Scan(&h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert hospital: %w", err)
	}

	return nil
}

// UpdateHospital overwrites the editable fields of a hospital.
// A changed address resets the geocoding attempts so the backfill retries it.
func (r *Repository) UpdateHospital(ctx context.Context, h *models.Hospital) error {
	query := `
		UPDATE hospitals
		SET
			name = $2,
			address = $3,
			city = $4,
			phone = $5,
			whatsapp = $6,
			specialties = $7,
			beds = $8,
			available_beds = $9,
			emergency = $10,
			ambulance = $11,
			latitude = $12,
			longitude = $13,
			geocoding_attempts = CASE WHEN address <> $3 THEN 0 ELSE geocoding_attempts END,
			updated_at = $14
		WHERE id = $1;
	`

	lat, lng := location(h)
	h.UpdatedAt = time.Now().UTC()

	tag, err := r.db.Exec(ctx, query,
		h.ID, h.Name, h.Address, h.City, h.Phone, h.WhatsApp, h.Specialties, h.Beds, h.AvailableBeds,
		h.Emergency, h.Ambulance, lat, lng, h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update hospital: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("hospital %s: %w", h.ID, ErrNotFound)
	}

	return nil
}

// ClaimHospital makes uid the administrator of a hospital that has none.
func (r *Repository) ClaimHospital(ctx context.Context, id, uid string) error {
	query := `
		UPDATE hospitals
		SET admin_uid = $1, updated_at = now()
		WHERE id = $2 AND admin_uid IS NULL;
	`

	tag, err := r.db.Exec(ctx, query, uid, id)
	if err != nil {
		return fmt.Errorf("failed to claim hospital: %w", err)
	}
	if tag.RowsAffected() > 0 {
		r.log.InfoContext(ctx, "Hospital claimed", "hospital", id, "uid", uid)
		return nil
	}

	// Nothing updated: either the hospital does not exist or it is already claimed.
	if _, err = r.GetHospital(ctx, id); err != nil {
		return err
	}

	return fmt.Errorf("hospital %s: %w", id, ErrAlreadyClaimed)
}

// AdminHospitalIDs lists the hospitals administered by uid.
func (r *Repository) AdminHospitalIDs(ctx context.Context, uid string) ([]string, error) {
	query := `SELECT id FROM hospitals WHERE admin_uid = $1 ORDER BY id;`

	rows, err := r.db.Query(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to query administered hospitals: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if errScan := rows.Scan(&id); errScan != nil {
			return nil, fmt.Errorf("failed to scan administered hospital: %w", errScan)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return ids, nil
}

// FetchHospitalsForGeocoding retrieves hospitals that still need coordinates.
// It returns hospitals without latitude, with fewer than 5 geocoding attempts and a non-empty address,
// oldest first and limited to the specified count.
func (r *Repository) FetchHospitalsForGeocoding(ctx context.Context, limit int) ([]models.GeocodeTask, error) {
	query := `
		SELECT id, address, city
		FROM hospitals
		WHERE
			latitude IS NULL
			AND geocoding_attempts < 5
			AND address <> ''
		ORDER BY created_at ASC
		LIMIT $1;
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query hospitals without coordinates: %w", err)
	}
	defer rows.Close()

	var tasks []models.GeocodeTask
	for rows.Next() {
		var task models.GeocodeTask
		var city string
		if errScan := rows.Scan(&task.HospitalID, &task.Address, &city); errScan != nil {
			return nil, fmt.Errorf("failed to scan hospital without coordinates: %w", errScan)
		}
		if city != "" {
			task.Address += ", " + city
		}
		r.log.DebugContext(ctx, "A hospital without coordinates has been received.",
			"ID", task.HospitalID, "Address", task.Address)
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return tasks, nil
}

// UpdateHospitalCoordinates stores the geocoded location and clears the last geocoding error.
func (r *Repository) UpdateHospitalCoordinates(ctx context.Context, hospitalID string, coords models.Coordinates) error {
	query := `
		UPDATE hospitals
		SET
			latitude = $1,
			longitude = $2,
			geocoding_error = NULL
		WHERE
			id = $3;
	`

	_, err := r.db.Exec(ctx, query, coords.Latitude, coords.Longitude, hospitalID)
	if err != nil {
		return fmt.Errorf("failed to update hospital coordinates: %w", err)
	}

	return nil
}

// IncrementGeocodeFailure increments the geocoding attempt count and records the error message.
func (r *Repository) IncrementGeocodeFailure(ctx context.Context, hospitalID string, errMsg string) error {
	query := `
		UPDATE hospitals
		SET
			geocoding_attempts = geocoding_attempts + 1,
			geocoding_error = $1
		WHERE id = $2;
	`

	_, err := r.db.Exec(ctx, query, errMsg, hospitalID)
	if err != nil {
		return fmt.Errorf("failed to update geocoding error and number of attempts: %w", err)
	}

	return nil
}
