package service_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/UnknownOlympus/swasthya/internal/metrics"
	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/UnknownOlympus/swasthya/internal/service"
	"github.com/UnknownOlympus/swasthya/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestProcessBatch(t *testing.T) {
	mockRepo := mocks.NewInterface(t)
	mockProvider := mocks.NewProvider(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	ctx := t.Context()
	svc := service.NewGeocodingService(logger, mockRepo, mockProvider, "nominatim", m, 2, time.Second, "India, ")

	t.Run("successful processing", func(t *testing.T) {
		tasks := []models.GeocodeTask{{HospitalID: "h1", Address: "Ansari Nagar, New Delhi"}}
		place := &models.Place{
			Coordinates: models.Coordinates{Latitude: 28.5672, Longitude: 77.2100},
			DisplayName: "AIIMS, Ansari Nagar, New Delhi",
		}

		mockRepo.On("FetchHospitalsForGeocoding", ctx, 100).Return(tasks, nil).Once()
		mockProvider.On("Geocode", ctx, "India, Ansari Nagar, New Delhi").Return(place, nil).Once()
		mockRepo.On("UpdateHospitalCoordinates", ctx, "h1", place.Coordinates).Return(nil).Once()

		assert.Equal(t, 1, svc.ProcessBatch(ctx))
		assert.InDelta(t, 1, testutil.ToFloat64(m.TaskProcessed.WithLabelValues("success")), 0)
	})

	t.Run("fetch returns error", func(t *testing.T) {
		mockRepo.On("FetchHospitalsForGeocoding", ctx, 100).Return(nil, assert.AnError).Once()

		assert.Zero(t, svc.ProcessBatch(ctx))
	})

	t.Run("nothing to geocode", func(t *testing.T) {
		mockRepo.On("FetchHospitalsForGeocoding", ctx, 100).Return([]models.GeocodeTask{}, nil).Once()

		assert.Zero(t, svc.ProcessBatch(ctx))
	})

	t.Run("provider returns error", func(t *testing.T) {
		tasks := []models.GeocodeTask{{HospitalID: "h2", Address: "Nowhere"}}
		geocodeErr := errors.New("geocoding failed")

		mockRepo.On("FetchHospitalsForGeocoding", ctx, 100).Return(tasks, nil).Once()
		mockProvider.On("Geocode", ctx, "India, Nowhere").Return(nil, geocodeErr).Once()
		mockRepo.On("IncrementGeocodeFailure", ctx, "h2", geocodeErr.Error()).Return(nil).Once()

		assert.Zero(t, svc.ProcessBatch(ctx))
		assert.InDelta(t, 1, testutil.ToFloat64(m.APIErrors), 0)
	})

	t.Run("failure count cannot be recorded", func(t *testing.T) {
		tasks := []models.GeocodeTask{{HospitalID: "h2", Address: "Nowhere"}}
		geocodeErr := errors.New("geocoding failed")

		mockRepo.On("FetchHospitalsForGeocoding", ctx, 100).Return(tasks, nil).Once()
		mockProvider.On("Geocode", ctx, "India, Nowhere").Return(nil, geocodeErr).Once()
		mockRepo.On("IncrementGeocodeFailure", ctx, "h2", geocodeErr.Error()).Return(assert.AnError).Once()

		assert.Zero(t, svc.ProcessBatch(ctx))
	})

	t.Run("coordinates cannot be stored", func(t *testing.T) {
		tasks := []models.GeocodeTask{{HospitalID: "h1", Address: "Ansari Nagar"}}
		place := &models.Place{Coordinates: models.Coordinates{Latitude: 28.5672, Longitude: 77.21}}

		mockRepo.On("FetchHospitalsForGeocoding", ctx, 100).Return(tasks, nil).Once()
		mockProvider.On("Geocode", ctx, "India, Ansari Nagar").Return(place, nil).Once()
		mockRepo.On("UpdateHospitalCoordinates", ctx, "h1", place.Coordinates).Return(assert.AnError).Once()

		assert.Zero(t, svc.ProcessBatch(ctx))
	})

	t.Run("several hospitals across workers", func(t *testing.T) {
		tasks := []models.GeocodeTask{
			{HospitalID: "a", Address: "A"},
			{HospitalID: "b", Address: "B"},
			{HospitalID: "c", Address: "C"},
		}
		place := &models.Place{Coordinates: models.Coordinates{Latitude: 28.6, Longitude: 77.2}}

		mockRepo.On("FetchHospitalsForGeocoding", ctx, 100).Return(tasks, nil).Once()
		for _, task := range tasks {
			mockProvider.On("Geocode", ctx, "India, "+task.Address).Return(place, nil).Once()
			mockRepo.On("UpdateHospitalCoordinates", ctx, task.HospitalID, place.Coordinates).Return(nil).Once()
		}

		assert.Equal(t, 3, svc.ProcessBatch(ctx))
		assert.InDelta(t, 0, testutil.ToFloat64(m.ActiveWorkers), 0)
	})

	t.Run("run stops when context is cancelled", func(t *testing.T) {
		tctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
		defer cancel()

		svc.Run(tctx)
	})
}
