package mocks

import (
	"context"

	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Interface is a mock type for the repository.Interface type.
type Interface struct {
	mock.Mock
}

// ListHospitals provides a mock function with given fields: ctx.
func (m *Interface) ListHospitals(ctx context.Context) ([]models.Hospital, error) {
	ret := m.Called(ctx)

	var hospitals []models.Hospital
	if ret.Get(0) != nil {
		hospitals = ret.Get(0).([]models.Hospital)
	}

	return hospitals, ret.Error(1)
}

// GetHospital provides a mock function with given fields: ctx, id.
func (m *Interface) GetHospital(ctx context.Context, id string) (*models.Hospital, error) {
	ret := m.Called(ctx, id)

	var hospital *models.Hospital
	if ret.Get(0) != nil {
		hospital = ret.Get(0).(*models.Hospital)
	}

	return hospital, ret.Error(1)
}

// CreateHospital provides a mock function with given fields: ctx, h.
func (m *Interface) CreateHospital(ctx context.Context, h *models.Hospital) error {
	return m.Called(ctx, h).Error(0)
}

// UpdateHospital provides a mock function with given fields: ctx, h.
func (m *Interface) UpdateHospital(ctx context.Context, h *models.Hospital) error {
	return m.Called(ctx, h).Error(0)
}

// ClaimHospital provides a mock function with given fields: ctx, id, uid.
func (m *Interface) ClaimHospital(ctx context.Context, id, uid string) error {
	return m.Called(ctx, id, uid).Error(0)
}

// AdminHospitalIDs provides a mock function with given fields: ctx, uid.
func (m *Interface) AdminHospitalIDs(ctx context.Context, uid string) ([]string, error) {
	ret := m.Called(ctx, uid)

	var ids []string
	if ret.Get(0) != nil {
		ids = ret.Get(0).([]string)
	}

	return ids, ret.Error(1)
}

// FetchHospitalsForGeocoding provides a mock function with given fields: ctx, limit.
func (m *Interface) FetchHospitalsForGeocoding(ctx context.Context, limit int) ([]models.GeocodeTask, error) {
	ret := m.Called(ctx, limit)

	var tasks []models.GeocodeTask
	if ret.Get(0) != nil {
		tasks = ret.Get(0).([]models.GeocodeTask)
	}

	return tasks, ret.Error(1)
}

// UpdateHospitalCoordinates provides a mock function with given fields: ctx, hospitalID, coords.
func (m *Interface) UpdateHospitalCoordinates(ctx context.Context, hospitalID string, coords models.Coordinates) error {
	return m.Called(ctx, hospitalID, coords).Error(0)
}

// IncrementGeocodeFailure provides a mock function with given fields: ctx, hospitalID, errMsg.
func (m *Interface) IncrementGeocodeFailure(ctx context.Context, hospitalID string, errMsg string) error {
	return m.Called(ctx, hospitalID, errMsg).Error(0)
}

// CreateBooking provides a mock function with given fields: ctx, b.
func (m *Interface) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

// GetBooking provides a mock function with given fields: ctx, id.
func (m *Interface) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	ret := m.Called(ctx, id)

	var booking *models.Booking
	if ret.Get(0) != nil {
		booking = ret.Get(0).(*models.Booking)
	}

	return booking, ret.Error(1)
}

// ListBookingsByUser provides a mock function with given fields: ctx, uid.
func (m *Interface) ListBookingsByUser(ctx context.Context, uid string) ([]models.Booking, error) {
	ret := m.Called(ctx, uid)

	var bookings []models.Booking
	if ret.Get(0) != nil {
		bookings = ret.Get(0).([]models.Booking)
	}

	return bookings, ret.Error(1)
}

// ListBookingsByHospital provides a mock function with given fields: ctx, hospitalID.
func (m *Interface) ListBookingsByHospital(ctx context.Context, hospitalID string) ([]models.Booking, error) {
	ret := m.Called(ctx, hospitalID)

	var bookings []models.Booking
	if ret.Get(0) != nil {
		bookings = ret.Get(0).([]models.Booking)
	}

	return bookings, ret.Error(1)
}

// UpdateBookingStatus provides a mock function with given fields: ctx, id, status.
func (m *Interface) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

// CreateRecord provides a mock function with given fields: ctx, r.
func (m *Interface) CreateRecord(ctx context.Context, r *models.MedicalRecord) error {
	return m.Called(ctx, r).Error(0)
}

// ListRecordsByUser provides a mock function with given fields: ctx, uid.
func (m *Interface) ListRecordsByUser(ctx context.Context, uid string) ([]models.MedicalRecord, error) {
	ret := m.Called(ctx, uid)

	var records []models.MedicalRecord
	if ret.Get(0) != nil {
		records = ret.Get(0).([]models.MedicalRecord)
	}

	return records, ret.Error(1)
}

// DeleteRecord provides a mock function with given fields: ctx, id, uid.
func (m *Interface) DeleteRecord(ctx context.Context, id uuid.UUID, uid string) error {
	return m.Called(ctx, id, uid).Error(0)
}

// NewInterface creates a new instance of Interface and registers
// a cleanup function asserting the mock's expectations.
func NewInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *Interface {
	m := &Interface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
