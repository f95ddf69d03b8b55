package geocoding_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/swasthya/internal/geocoding"
	"github.com/UnknownOlympus/swasthya/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func TestGeocode(t *testing.T) {
	mockClient := mocks.NewGoogleAPIClient(t)
	provider := geocoding.NewGoogleProvider(mockClient, slog.Default())
	ctx := t.Context()

	t.Run("api returns error", func(t *testing.T) {
		address := "some invalid place"
		req := &maps.GeocodingRequest{Address: address, Region: "in"}

		mockClient.On("Geocode", ctx, req).Return(nil, assert.AnError).Once()

		_, err := provider.Geocode(ctx, address)

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		mockClient.AssertExpectations(t)
	})

	t.Run("api return empty response", func(t *testing.T) {
		address := "some invalid place"
		req := &maps.GeocodingRequest{Address: address, Region: "in"}

		mockClient.On("Geocode", ctx, req).Return(nil, nil).Once()

		place, err := provider.Geocode(ctx, address)

		require.Nil(t, place)
		require.ErrorIs(t, err, geocoding.ErrEmptyResponse)
		mockClient.AssertExpectations(t)
	})

	t.Run("successfull geocoding", func(t *testing.T) {
		address := "Safdarjung Hospital, New Delhi"
		req := &maps.GeocodingRequest{Address: address, Region: "in"}
		mockReponse := []maps.GeocodingResult{
			{
				FormattedAddress: "Ansari Nagar West, New Delhi, Delhi 110029, India",
				Geometry:         maps.AddressGeometry{Location: maps.LatLng{Lat: 28.5680, Lng: 77.2058}},
			},
		}

		mockClient.On("Geocode", ctx, req).Return(mockReponse, nil).Once()

		place, err := provider.Geocode(ctx, address)

		require.NoError(t, err)
		require.NotNil(t, place)
		require.InEpsilon(t, 28.5680, place.Latitude, 0.0001)
		require.InEpsilon(t, 77.2058, place.Longitude, 0.0001)
		assert.Equal(t, "Ansari Nagar West, New Delhi, Delhi 110029, India", place.DisplayName)
		mockClient.AssertExpectations(t)
	})

	t.Run("exact match preferred over partial", func(t *testing.T) {
		address := "Fortis Hospital, Noida"
		req := &maps.GeocodingRequest{Address: address, Region: "in"}
		mockReponse := []maps.GeocodingResult{
			{
				FormattedAddress: "Noida, Uttar Pradesh, India",
				PartialMatch:     true,
				Geometry:         maps.AddressGeometry{Location: maps.LatLng{Lat: 28.5355, Lng: 77.3910}},
			},
			{
				FormattedAddress: "Fortis Hospital, Sector 62, Noida, Uttar Pradesh 201301, India",
				Geometry:         maps.AddressGeometry{Location: maps.LatLng{Lat: 28.6186, Lng: 77.3726}},
			},
		}

		mockClient.On("Geocode", ctx, req).Return(mockReponse, nil).Once()

		place, err := provider.Geocode(ctx, address)

		require.NoError(t, err)
		assert.Equal(t, "Fortis Hospital, Sector 62, Noida, Uttar Pradesh 201301, India", place.DisplayName)
		assert.InEpsilon(t, 28.6186, place.Latitude, 0.0001)
		mockClient.AssertExpectations(t)
	})

	t.Run("only partial matches", func(t *testing.T) {
		address := "Sector 999, Noida"
		req := &maps.GeocodingRequest{Address: address, Region: "in"}
		mockReponse := []maps.GeocodingResult{
			{
				FormattedAddress: "Noida, Uttar Pradesh, India",
				PartialMatch:     true,
				Geometry:         maps.AddressGeometry{Location: maps.LatLng{Lat: 28.5355, Lng: 77.3910}},
			},
		}

		mockClient.On("Geocode", ctx, req).Return(mockReponse, nil).Once()

		place, err := provider.Geocode(ctx, address)

		require.NoError(t, err)
		assert.Equal(t, "Noida, Uttar Pradesh, India", place.DisplayName)
		mockClient.AssertExpectations(t)
	})

	t.Run("coordinates out of range", func(t *testing.T) {
		address := "Nowhere"
		req := &maps.GeocodingRequest{Address: address, Region: "in"}
		mockReponse := []maps.GeocodingResult{
			{Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: 128.5, Lng: 77.2}}},
		}

		mockClient.On("Geocode", ctx, req).Return(mockReponse, nil).Once()

		place, err := provider.Geocode(ctx, address)

		require.Nil(t, place)
		require.ErrorIs(t, err, geocoding.ErrGoogleInvalidCoords)
		mockClient.AssertExpectations(t)
	})
}

func TestGoogleProvider_WithRegion(t *testing.T) {
	mockClient := mocks.NewGoogleAPIClient(t)
	provider := geocoding.NewGoogleProvider(mockClient, slog.Default()).WithRegion("")
	ctx := t.Context()
	address := "Christian Medical College, Vellore"
	req := &maps.GeocodingRequest{Address: address}

	mockClient.On("Geocode", ctx, req).Return([]maps.GeocodingResult{
		{
			FormattedAddress: "Ida Scudder Rd, Vellore, Tamil Nadu 632004, India",
			Geometry:         maps.AddressGeometry{Location: maps.LatLng{Lat: 12.9246, Lng: 79.1353}},
		},
	}, nil).Once()

	place, err := provider.Geocode(ctx, address)

	require.NoError(t, err)
	assert.InEpsilon(t, 79.1353, place.Longitude, 0.0001)
}
