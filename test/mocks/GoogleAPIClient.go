package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"googlemaps.github.io/maps"
)

// GoogleAPIClient is a mock type for the geocoding.GoogleAPIClient type.
type GoogleAPIClient struct {
	mock.Mock
}

// Geocode provides a mock function with given fields: ctx, r.
func (m *GoogleAPIClient) Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	ret := m.Called(ctx, r)

	var results []maps.GeocodingResult
	if fn, ok := ret.Get(0).(func(context.Context, *maps.GeocodingRequest) []maps.GeocodingResult); ok {
		results = fn(ctx, r)
	} else if ret.Get(0) != nil {
		results = ret.Get(0).([]maps.GeocodingResult)
	}

	return results, ret.Error(1)
}

// NewGoogleAPIClient creates a new instance of GoogleAPIClient and registers
// a cleanup function asserting the mock's expectations.
func NewGoogleAPIClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *GoogleAPIClient {
	m := &GoogleAPIClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
