package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/UnknownOlympus/swasthya/internal/repository"
	"github.com/google/uuid"
)

// RecordService keeps the metadata of the caller's medical documents.
// The documents themselves live in external object storage.
type RecordService struct {
	log     *slog.Logger
	records repository.RecordStore
}

func NewRecordService(log *slog.Logger, records repository.RecordStore) *RecordService {
	return &RecordService{log: log, records: records}
}

// Add stores the metadata of a document owned by the caller.
func (rs *RecordService) Add(ctx context.Context, session models.Session, rec models.MedicalRecord) (*models.MedicalRecord, error) {
	if session.Role < models.RoleUser {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(rec.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if rec.SizeBytes < 0 {
		return nil, fmt.Errorf("%w: size must not be negative", ErrInvalidInput)
	}

	u, err := url.Parse(rec.FileURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, fmt.Errorf("%w: file url must be an absolute http(s) url", ErrInvalidInput)
	}

	rec.ID = uuid.Nil
	rec.UserUID = session.UID
	rec.Title = strings.TrimSpace(rec.Title)

	if err = rs.records.CreateRecord(ctx, &rec); err != nil {
		return nil, err
	}

	rs.log.DebugContext(ctx, "Medical record added", "record", rec.ID, "uid", rec.UserUID)

	return &rec, nil
}

// List returns the caller's documents, newest first.
func (rs *RecordService) List(ctx context.Context, session models.Session) ([]models.MedicalRecord, error) {
	if session.Role < models.RoleUser {
		return nil, ErrForbidden
	}

	return rs.records.ListRecordsByUser(ctx, session.UID)
}

// Delete removes one of the caller's documents.
func (rs *RecordService) Delete(ctx context.Context, session models.Session, id uuid.UUID) error {
	if session.Role < models.RoleUser {
		return ErrForbidden
	}

	return rs.records.DeleteRecord(ctx, id, session.UID)
}
