package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/swasthya/internal/models"
	"googlemaps.github.io/maps"
)

// DefaultGoogleRegion biases Google results towards India.
const DefaultGoogleRegion = "in"

// GoogleProvider geocodes hospital addresses with the Google Maps Geocoding API.
//
// Lookups are biased towards a region (India unless WithRegion says otherwise). When Google
// returns several candidates the first exact match wins; partial matches are only used when
// nothing better came back.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	region string          // region is the ccTLD used to bias results
	log    *slog.Logger    // log is the logger for logging operations
}

// GoogleAPIClient is the part of *maps.Client used by GoogleProvider.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

var (
	// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
	ErrEmptyResponse = errors.New("get empty response from Google Maps API")
	// ErrGoogleInvalidCoords is returned when the chosen result has coordinates out of range.
	ErrGoogleInvalidCoords = errors.New("invalid coordinates in Google Maps response")
)

// NewGoogleProvider wraps a Google Maps client. Rate limiting is configured on the client
// itself, see newGoogleProvider in the factory.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, region: DefaultGoogleRegion, log: log}
}

// WithRegion changes the region bias. An empty region disables biasing.
func (gp *GoogleProvider) WithRegion(region string) *GoogleProvider {
	gp.region = region
	return gp
}

// Geocode resolves the address to a Place. The formatted address becomes the display name.
//
// It returns ErrEmptyResponse when Google found nothing and ErrGoogleInvalidCoords when the
// chosen candidate is outside the geographic ranges. Transport and API errors are wrapped.
func (gp *GoogleProvider) Geocode(ctx context.Context, address string) (*models.Place, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address, "region", gp.region)

	req := maps.GeocodingRequest{Address: address, Region: gp.region}
	results, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrEmptyResponse
	}

	best := bestGoogleResult(results)
	if best.PartialMatch {
		gp.log.DebugContext(ctx, "Only a partial match was found", "address", address, "match", best.FormattedAddress)
	}

	coords := models.Coordinates{
		Latitude:  best.Geometry.Location.Lat,
		Longitude: best.Geometry.Location.Lng,
	}
	if !coords.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrGoogleInvalidCoords, coords)
	}

	return &models.Place{Coordinates: coords, DisplayName: best.FormattedAddress}, nil
}

// bestGoogleResult returns the first exact match, or the first result when all are partial.
func bestGoogleResult(results []maps.GeocodingResult) maps.GeocodingResult {
	for _, r := range results {
		if !r.PartialMatch {
			return r
		}
	}

	return results[0]
}
