package repository

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS hospitals (
		id                 TEXT PRIMARY KEY,
		name               TEXT NOT NULL,
		address            TEXT NOT NULL DEFAULT '',
		city               TEXT NOT NULL DEFAULT '',
		phone              TEXT NOT NULL DEFAULT '',
		whatsapp           TEXT NOT NULL DEFAULT '',
		specialties        TEXT[] NOT NULL DEFAULT '{}',
		beds               INTEGER NOT NULL DEFAULT 0,
		available_beds     INTEGER NOT NULL DEFAULT 0,
		emergency          BOOLEAN NOT NULL DEFAULT false,
		ambulance          BOOLEAN NOT NULL DEFAULT false,
		rating             DOUBLE PRECISION NOT NULL DEFAULT 0,
		latitude           DOUBLE PRECISION,
		longitude          DOUBLE PRECISION,
		admin_uid          TEXT,
		geocoding_attempts INTEGER NOT NULL DEFAULT 0,
		geocoding_error    TEXT,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS hospitals_admin_uid_idx ON hospitals (admin_uid);`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id           UUID PRIMARY KEY,
		hospital_id  TEXT NOT NULL REFERENCES hospitals (id) ON DELETE CASCADE,
		user_uid     TEXT NOT NULL,
		patient_name TEXT NOT NULL,
		phone        TEXT NOT NULL DEFAULT '',
		kind         TEXT NOT NULL,
		status       TEXT NOT NULL,
		scheduled_at TIMESTAMPTZ NOT NULL,
		notes        TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS bookings_user_uid_idx ON bookings (user_uid);`,
	`CREATE INDEX IF NOT EXISTS bookings_hospital_id_idx ON bookings (hospital_id);`,
	`CREATE TABLE IF NOT EXISTS medical_records (
		id           UUID PRIMARY KEY,
		user_uid     TEXT NOT NULL,
		title        TEXT NOT NULL,
		file_url     TEXT NOT NULL,
		content_type TEXT NOT NULL DEFAULT '',
		size_bytes   BIGINT NOT NULL DEFAULT 0,
		uploaded_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS medical_records_user_uid_idx ON medical_records (user_uid);`,
}

// Migrate creates the tables and indexes if they do not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	for idx, stmt := range schema {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", idx, err)
		}
	}

	r.log.InfoContext(ctx, "Database schema is up to date", "statements", len(schema))

	return nil
}
