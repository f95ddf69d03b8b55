package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/swasthya/internal/geocoding"
	"github.com/UnknownOlympus/swasthya/internal/metrics"
	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/UnknownOlympus/swasthya/internal/repository"
)

const batchSize = 100

// GeocodingService backfills hospital coordinates from their addresses,
// fanning each batch out to a fixed pool of workers.
type GeocodingService struct {
	log           *slog.Logger            // Logger for logging service activities
	repo          repository.GeocodeQueue // Hospitals waiting for coordinates
	provider      geocoding.Provider      // Geocoding provider for external geocoding services
	providerName  string                  // Name of the provider for metrics labeling
	metrics       *metrics.Metrics        // Metrics for tracking service performance
	numWorkers    int                     // Number of concurrent workers for processing
	pollInterval  time.Duration           // Interval between backfill runs
	addressPrefix string                  // Prefix narrowing the search, e.g. country or state
}

// NewGeocodingService creates a new instance of GeocodingService.
func NewGeocodingService(
	log *slog.Logger,
	repo repository.GeocodeQueue,
	provider geocoding.Provider,
	providerName string,
	metrics *metrics.Metrics,
	numWorkers int,
	pollInterval time.Duration,
	addressPrefix string,
) *GeocodingService {
	return &GeocodingService{
		log:           log,
		repo:          repo,
		provider:      provider,
		providerName:  providerName,
		metrics:       metrics,
		numWorkers:    numWorkers,
		pollInterval:  pollInterval,
		addressPrefix: addressPrefix,
	}
}

// Run processes a batch on every tick until ctx is cancelled.
func (gs *GeocodingService) Run(ctx context.Context) {
	ticker := time.NewTicker(gs.pollInterval)
	defer ticker.Stop()

	gs.log.InfoContext(ctx, "Coordinate backfill started", "interval", gs.pollInterval)

	for {
		select {
		case <-ctx.Done():
			gs.log.InfoContext(ctx, "Coordinate backfill stopped.")
			return
		case <-ticker.C:
			gs.log.DebugContext(ctx, "Polling for hospitals without coordinates...")
			gs.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch geocodes one batch of hospitals and returns how many received coordinates.
func (gs *GeocodingService) ProcessBatch(ctx context.Context) int {
	tasks, err := gs.repo.FetchHospitalsForGeocoding(ctx, batchSize)
	if err != nil {
		gs.log.ErrorContext(ctx, "Failed to fetch hospitals without coordinates", "error", err)
		return 0
	}
	if len(tasks) == 0 {
		gs.log.DebugContext(ctx, "No hospitals to geocode.")
		return 0
	}

	gs.log.InfoContext(
		ctx,
		"Found hospitals to geocode. Starting worker pool.",
		"jobs", len(tasks),
		"num_workers", gs.numWorkers,
	)

	jobs := make(chan models.GeocodeTask, len(tasks))
	var (
		wgr     sync.WaitGroup
		mu      sync.Mutex
		located int
	)

	for i := 1; i <= gs.numWorkers; i++ {
		wgr.Add(1)
		go func(idx int) {
			defer wgr.Done()
			n := gs.worker(ctx, idx, jobs)
			mu.Lock()
			located += n
			mu.Unlock()
		}(i)
	}

	for _, task := range tasks {
		jobs <- task
	}
	close(jobs)

	wgr.Wait()
	gs.log.InfoContext(ctx, "Backfill batch finished", "located", located, "jobs", len(tasks))

	return located
}

// worker geocodes tasks until jobs is drained. A failure bumps the attempt counter of the hospital;
// a success stores its coordinates. It returns the number of hospitals it located.
func (gs *GeocodingService) worker(ctx context.Context, idx int, jobs <-chan models.GeocodeTask) int {
	located := 0
	for task := range jobs {
		gs.metrics.ActiveWorkers.Inc()
		gs.log.DebugContext(ctx, "Processing hospital", "worker", idx, "hospital", task.HospitalID)

		address := gs.addressPrefix + task.Address
		startTime := time.Now()
		place, err := gs.provider.Geocode(ctx, address)
		gs.metrics.RequestSeconds.WithLabelValues(gs.providerName).Observe(time.Since(startTime).Seconds())

		if err != nil {
			gs.log.ErrorContext(ctx, "Failed to geocode", "worker", idx, "hospital", task.HospitalID, "error", err)
			gs.metrics.TaskProcessed.WithLabelValues("failure").Inc()
			gs.metrics.APIErrors.Inc()

			if err = gs.repo.IncrementGeocodeFailure(ctx, task.HospitalID, err.Error()); err != nil {
				gs.log.ErrorContext(ctx, "Could not record geocoding failure",
					"worker", idx,
					"hospital", task.HospitalID,
					"error", err,
				)
			}
			gs.metrics.ActiveWorkers.Dec()
			continue
		}

		gs.metrics.TaskProcessed.WithLabelValues("success").Inc()

		if err = gs.repo.UpdateHospitalCoordinates(ctx, task.HospitalID, place.Coordinates); err != nil {
			gs.log.ErrorContext(ctx, "Failed to store coordinates",
				"worker", idx,
				"hospital", task.HospitalID,
				"error", err,
			)
		} else {
			located++
			gs.log.DebugContext(ctx, "Hospital located", "worker", idx, "hospital", task.HospitalID,
				"place", place.DisplayName)
		}

		gs.metrics.ActiveWorkers.Dec()
	}

	return located
}
