package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/swasthya/internal/cache"
	"github.com/UnknownOlympus/swasthya/internal/metrics"
	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/UnknownOlympus/swasthya/internal/proximity"
	"github.com/UnknownOlympus/swasthya/internal/repository"
)

// OverrideStore holds local edits applied over canonical hospital records.
type OverrideStore interface {
	Get(ctx context.Context, hospitalID string) (*models.HospitalOverride, error)
	GetMany(ctx context.Context, hospitalIDs []string) (map[string]models.HospitalOverride, error)
	Put(ctx context.Context, hospitalID string, override models.HospitalOverride) error
	Delete(ctx context.Context, hospitalID string) error
}

// Radii are the default search radii in kilometers.
type Radii struct {
	NearbyKm    float64
	AmbulanceKm float64
}

// Query narrows a nearby listing. A nil RadiusKm selects the default radius.
type Query struct {
	Text     string
	RadiusKm *float64
}

// HospitalResult is a hospital with its distance from the caller, when known.
type HospitalResult = proximity.Ranked[models.Hospital]

// DirectoryService serves the hospital directory views.
type DirectoryService struct {
	log       *slog.Logger
	hospitals repository.HospitalStore
	overrides OverrideStore
	metrics   *metrics.Metrics
	radii     Radii
}

func NewDirectoryService(
	log *slog.Logger,
	hospitals repository.HospitalStore,
	overrides OverrideStore,
	metrics *metrics.Metrics,
	radii Radii,
) *DirectoryService {
	return &DirectoryService{
		log:       log,
		hospitals: hospitals,
		overrides: overrides,
		metrics:   metrics,
		radii:     radii,
	}
}

// Nearby lists hospitals matching q around ref. With a known reference only hospitals within the
// radius are returned, nearest first; otherwise every match is returned by name.
func (d *DirectoryService) Nearby(ctx context.Context, ref models.Reference, q Query) ([]HospitalResult, error) {
	radius := d.radii.NearbyKm
	if q.RadiusKm != nil {
		if *q.RadiusKm < 0 {
			return nil, fmt.Errorf("%w: radius must not be negative", ErrInvalidInput)
		}
		radius = *q.RadiusKm
	}

	list, err := d.listing(ctx)
	if err != nil {
		return nil, err
	}

	d.count("nearby", ref)

	return proximity.Arrange(ref, matching(list, q.Text), radius), nil
}

// Ambulance lists the ambulance-capable hospitals around ref.
func (d *DirectoryService) Ambulance(ctx context.Context, ref models.Reference) ([]HospitalResult, error) {
	list, err := d.listing(ctx)
	if err != nil {
		return nil, err
	}

	capable := make([]models.Hospital, 0, len(list))
	for _, h := range list {
		if h.Ambulance {
			capable = append(capable, h)
		}
	}

	d.count("ambulance", ref)

	return proximity.Arrange(ref, capable, d.radii.AmbulanceKm), nil
}

// Search matches text against name, city, address and specialties without a radius limit.
// Results are nearest first when ref is known, hospitals without coordinates last.
func (d *DirectoryService) Search(ctx context.Context, ref models.Reference, text string) ([]HospitalResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: search text is required", ErrInvalidInput)
	}

	list, err := d.listing(ctx)
	if err != nil {
		return nil, err
	}

	d.count("search", ref)

	found := matching(list, text)
	origin, known := ref.Coordinates()
	if !known {
		return proximity.SortByName(found), nil
	}

	return proximity.SortByDistance(proximity.Annotate(origin, found)), nil
}

// Get returns a hospital with its override applied.
func (d *DirectoryService) Get(ctx context.Context, id string) (*models.Hospital, error) {
	h, err := d.hospitals.GetHospital(ctx, id)
	if err != nil {
		return nil, err
	}

	override, err := d.overrides.Get(ctx, id)
	if err != nil {
		d.log.WarnContext(ctx, "Serving hospital without override", "hospital", id, "error", err)
		return h, nil
	}
	if override != nil {
		merged := override.Apply(*h)
		return &merged, nil
	}

	return h, nil
}

// Create adds a listing. The creator becomes its administrator.
func (d *DirectoryService) Create(ctx context.Context, session models.Session, h models.Hospital) (*models.Hospital, error) {
	if session.Role < models.RoleUser {
		return nil, ErrForbidden
	}
	if err := validateHospital(h); err != nil {
		return nil, err
	}

	uid := session.UID
	h.ID = ""
	h.AdminUID = &uid

	if err := d.hospitals.CreateHospital(ctx, &h); err != nil {
		return nil, err
	}

	d.log.InfoContext(ctx, "Hospital listed", "hospital", h.ID, "uid", uid)

	return &h, nil
}

// Update replaces the editable fields of a listing administered by the caller.
func (d *DirectoryService) Update(ctx context.Context, session models.Session, h models.Hospital) (*models.Hospital, error) {
	if !session.Administers(h.ID) {
		return nil, ErrForbidden
	}
	if err := validateHospital(h); err != nil {
		return nil, err
	}

	current, err := d.hospitals.GetHospital(ctx, h.ID)
	if err != nil {
		return nil, err
	}

	h.AdminUID = current.AdminUID
	h.Rating = current.Rating
	h.CreatedAt = current.CreatedAt
	if h.Location == nil && h.Address == current.Address {
		h.Location = current.Location
	}

	if err = d.hospitals.UpdateHospital(ctx, &h); err != nil {
		return nil, err
	}

	return &h, nil
}

// Claim makes the caller the administrator of an unclaimed listing.
func (d *DirectoryService) Claim(ctx context.Context, session models.Session, id string) error {
	if session.Role < models.RoleUser {
		return ErrForbidden
	}

	return d.hospitals.ClaimHospital(ctx, id, session.UID)
}

// SetOverride stores local edits for a listing administered by the caller.
func (d *DirectoryService) SetOverride(
	ctx context.Context,
	session models.Session,
	id string,
	override models.HospitalOverride,
) (*models.Hospital, error) {
	if !session.Administers(id) {
		return nil, ErrForbidden
	}
	if override.AvailableBeds != nil && *override.AvailableBeds < 0 {
		return nil, fmt.Errorf("%w: available beds must not be negative", ErrInvalidInput)
	}
	if override.Name != nil && strings.TrimSpace(*override.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be blank", ErrInvalidInput)
	}

	h, err := d.hospitals.GetHospital(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := override.Apply(*h)
	if err = validateHospital(merged); err != nil {
		return nil, err
	}

	if err = d.overrides.Put(ctx, id, override); err != nil {
		return nil, err
	}

	return &merged, nil
}

// ClearOverride drops the local edits of a listing administered by the caller.
func (d *DirectoryService) ClearOverride(ctx context.Context, session models.Session, id string) error {
	if !session.Administers(id) {
		return ErrForbidden
	}

	return d.overrides.Delete(ctx, id)
}

// listing fetches the canonical hospitals and merges the overrides.
// An unavailable override store degrades to the canonical data.
func (d *DirectoryService) listing(ctx context.Context) ([]models.Hospital, error) {
	hospitals, err := d.hospitals.ListHospitals(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(hospitals))
	for _, h := range hospitals {
		ids = append(ids, h.ID)
	}

	overrides, err := d.overrides.GetMany(ctx, ids)
	if err != nil {
		d.log.WarnContext(ctx, "Serving directory without overrides", "error", err)
		return hospitals, nil
	}

	return cache.Apply(hospitals, overrides), nil
}

func (d *DirectoryService) count(view string, ref models.Reference) {
	reference := "unknown"
	if ref.IsKnown() {
		reference = "known"
	}
	d.metrics.DirectoryQueries.WithLabelValues(view, reference).Inc()
}

func matching(hospitals []models.Hospital, text string) []models.Hospital {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return hospitals
	}

	out := make([]models.Hospital, 0, len(hospitals))
	for _, h := range hospitals {
		if matches(h, needle) {
			out = append(out, h)
		}
	}

	return out
}

func matches(h models.Hospital, needle string) bool {
	for _, field := range append([]string{h.Name, h.City, h.Address}, h.Specialties...) {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}

	return false
}

func validateHospital(h models.Hospital) error {
	switch {
	case strings.TrimSpace(h.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case h.Beds < 0 || h.AvailableBeds < 0:
		return fmt.Errorf("%w: bed counts must not be negative", ErrInvalidInput)
	case h.AvailableBeds > h.Beds:
		return fmt.Errorf("%w: available beds exceed total beds", ErrInvalidInput)
	case h.Location != nil && !h.Location.Valid():
		return fmt.Errorf("%w: %w", ErrInvalidInput, models.ErrInvalidCoordinates)
	}

	return nil
}
