package mocks

import (
	"context"

	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/stretchr/testify/mock"
)

// OverrideStore is a mock type for the service.OverrideStore type.
type OverrideStore struct {
	mock.Mock
}

// Get provides a mock function with given fields: ctx, hospitalID.
func (m *OverrideStore) Get(ctx context.Context, hospitalID string) (*models.HospitalOverride, error) {
	ret := m.Called(ctx, hospitalID)

	var override *models.HospitalOverride
	if ret.Get(0) != nil {
		override = ret.Get(0).(*models.HospitalOverride)
	}

	return override, ret.Error(1)
}

// GetMany provides a mock function with given fields: ctx, hospitalIDs.
func (m *OverrideStore) GetMany(ctx context.Context, hospitalIDs []string) (map[string]models.HospitalOverride, error) {
	ret := m.Called(ctx, hospitalIDs)

	var overrides map[string]models.HospitalOverride
	if ret.Get(0) != nil {
		overrides = ret.Get(0).(map[string]models.HospitalOverride)
	}

	return overrides, ret.Error(1)
}

// Put provides a mock function with given fields: ctx, hospitalID, override.
func (m *OverrideStore) Put(ctx context.Context, hospitalID string, override models.HospitalOverride) error {
	return m.Called(ctx, hospitalID, override).Error(0)
}

// Delete provides a mock function with given fields: ctx, hospitalID.
func (m *OverrideStore) Delete(ctx context.Context, hospitalID string) error {
	return m.Called(ctx, hospitalID).Error(0)
}

// NewOverrideStore creates a new instance of OverrideStore and registers
// a cleanup function asserting the mock's expectations.
func NewOverrideStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *OverrideStore {
	m := &OverrideStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
