package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/google/uuid"
)

// CreateRecord stores medical record metadata, assigning its id.
func (r *Repository) CreateRecord(ctx context.Context, rec *models.MedicalRecord) error {
	query := `
		INSERT INTO medical_records (id, user_uid, title, file_url, content_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING uploaded_at;
	`

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx, query,
		rec.ID, rec.UserUID, rec.Title, rec.FileURL, rec.ContentType, rec.SizeBytes,
	).Scan(&rec.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to insert medical record: %w", err)
	}

	return nil
}

// ListRecordsByUser returns the records of uid, newest first.
func (r *Repository) ListRecordsByUser(ctx context.Context, uid string) ([]models.MedicalRecord, error) {
	query := `
		SELECT id, user_uid, title, file_url, content_type, size_bytes, uploaded_at
		FROM medical_records
		WHERE user_uid = $1
		ORDER BY uploaded_at DESC;
	`

	rows, err := r.db.Query(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to query medical records: %w", err)
	}
	defer rows.Close()

	records := []models.MedicalRecord{}
	for rows.Next() {
		var rec models.MedicalRecord
		errScan := rows.Scan(&rec.ID, &rec.UserUID, &rec.Title, &rec.FileURL, &rec.ContentType, &rec.SizeBytes, &rec.UploadedAt)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan medical record: %w", errScan)
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return records, nil
}

// DeleteRecord removes a record owned by uid.
func (r *Repository) DeleteRecord(ctx context.Context, id uuid.UUID, uid string) error {
	query := `DELETE FROM medical_records WHERE id = $1 AND user_uid = $2;`

	tag, err := r.db.Exec(ctx, query, id, uid)
	if err != nil {
		return fmt.Errorf("failed to delete medical record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("medical record %s: %w", id, ErrNotFound)
	}

	return nil
}
