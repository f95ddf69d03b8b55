package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/swasthya/internal/models"
	"golang.org/x/time/rate"
)

const (
	// NominatimBaseURL is the public OpenStreetMap search endpoint.
	NominatimBaseURL = "https://nominatim.openstreetmap.org/search"
	// NominatimUserAgent identifies the service as the Nominatim usage policy requires.
	NominatimUserAgent = "SwasthyaConnect-Directory/1.0 (https://github.com/UnknownOlympus/swasthya)"
)

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
// This is a free geocoding service with usage limits (1 request/second for fair use).
type NominatimProvider struct {
	client    HTTPClient    // HTTP client for making requests
	baseURL   string        // Base URL for the Nominatim API
	log       *slog.Logger  // Logger for logging operations
	limiter   *rate.Limiter // Keeps request rate inside the fair use policy
	userAgent string
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// nominatimResponse represents the JSON response from Nominatim API.
type nominatimResponse struct {
	Lat         string `json:"lat"`          // Latitude as string
	Lon         string `json:"lon"`          // Longitude as string
	DisplayName string `json:"display_name"` // Full formatted address
}

// Common errors for Nominatim provider.
var (
	ErrNominatimEmptyResponse = errors.New("nominatim API returned empty response")
	ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")
	ErrNominatimEmptyAddress  = errors.New("nominatim provider got empty address")
)

// NewNominatimProvider creates a new Nominatim geocoding provider against the public endpoint.
// A non-positive rps falls back to one request per second.
func NewNominatimProvider(rps int, log *slog.Logger) *NominatimProvider {
	const timeout = 10
	if rps <= 0 {
		rps = 1
	}

	return NewNominatimProviderWithClient(
		&http.Client{Timeout: timeout * time.Second},
		rate.NewLimiter(rate.Limit(rps), 1),
		log,
	)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client and limiter.
func NewNominatimProviderWithClient(client HTTPClient, limiter *rate.Limiter, log *slog.Logger) *NominatimProvider {
	return &NominatimProvider{
		client:    client,
		baseURL:   NominatimBaseURL,
		log:       log,
		limiter:   limiter,
		userAgent: NominatimUserAgent,
	}
}

// WithBaseURL points the provider at a self-hosted Nominatim instance.
func (np *NominatimProvider) WithBaseURL(baseURL string) *NominatimProvider {
	np.baseURL = baseURL
	return np
}

// Geocode converts an address to a place using the Nominatim API.
//
// Uses a progressive fallback strategy for addresses that the full text does not match:
// 1. Try the full address
// 2. Drop the last comma separated component
// 3. Drop the last two components
// 4. Try the first component only (usually the facility or locality name)
func (np *NominatimProvider) Geocode(ctx context.Context, address string) (*models.Place, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNominatimEmptyAddress
	}

	np.log.DebugContext(ctx, "Geocoding using Nominatim", "address", address)

	addressVariations := generateAddressFallbacks(address)

	for idx, addrVariation := range addressVariations {
		place, err := np.geocodeSingleAddress(ctx, addrVariation)
		if err == nil {
			if idx > 0 {
				np.log.InfoContext(ctx, "Geocoded using fallback address",
					"original", address,
					"fallback", addrVariation,
					"fallback_level", idx)
			}
			return place, nil
		}

		// Only an empty result set moves on to the next variation.
		if !errors.Is(err, ErrNominatimEmptyResponse) {
			return nil, err
		}

		np.log.DebugContext(ctx, "Address variation returned no results, trying fallback",
			"variation", addrVariation,
			"fallback_level", idx)
	}

	np.log.WarnContext(ctx, "All address fallbacks exhausted",
		"address", address,
		"variations_tried", len(addressVariations))

	return nil, ErrNominatimEmptyResponse
}

// generateAddressFallbacks creates a list of progressively simpler address variations.
func generateAddressFallbacks(address string) []string {
	seen := make(map[string]bool)
	variations := []string{}

	addVariation := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variations = append(variations, v)
		}
	}

	addVariation(address)

	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) > 1 {
		addVariation(strings.Join(parts[:len(parts)-1], ", "))

		const lenComponents = 2
		if len(parts) > lenComponents {
			addVariation(strings.Join(parts[:len(parts)-2], ", "))
		}

		addVariation(parts[0])
	}

	return variations
}

// geocodeSingleAddress performs a single geocoding request without fallback logic.
func (np *NominatimProvider) geocodeSingleAddress(ctx context.Context, address string) (*models.Place, error) {
	if err := np.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")
	query.Set("addressdetails", "1")
	query.Set("accept-language", "en,hi")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", np.userAgent)
	req.Header.Set("Accept-Language", "en,hi")

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var results []nominatimResponse
	if err = json.Unmarshal(body, &results); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrNominatimEmptyResponse
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, results[0].Lon)
	}

	coords := models.Coordinates{Latitude: lat, Longitude: lon}
	if !coords.Valid() {
		return nil, fmt.Errorf("%w: out of range: %s,%s", ErrNominatimInvalidCoords, results[0].Lat, results[0].Lon)
	}

	np.log.DebugContext(ctx, "Nominatim found result", "lat", lat, "lon", lon, "display_name", results[0].DisplayName)

	return &models.Place{Coordinates: coords, DisplayName: results[0].DisplayName}, nil
}
