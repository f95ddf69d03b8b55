package mocks

import (
	"context"

	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/stretchr/testify/mock"
)

// Provider is a mock type for the geocoding.Provider type.
type Provider struct {
	mock.Mock
}

// Geocode provides a mock function with given fields: ctx, address.
func (m *Provider) Geocode(ctx context.Context, address string) (*models.Place, error) {
	ret := m.Called(ctx, address)

	var place *models.Place
	if ret.Get(0) != nil {
		place = ret.Get(0).(*models.Place)
	}

	return place, ret.Error(1)
}

// NewProvider creates a new instance of Provider and registers
// a cleanup function asserting the mock's expectations.
func NewProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *Provider {
	m := &Provider{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
