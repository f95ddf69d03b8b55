package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const geocodeKeyPrefix = "geocode:"

// CachedProvider remembers successful lookups in Redis in front of another Provider.
// Failures are never cached, and an unavailable cache degrades to direct lookups.
type CachedProvider struct {
	next    Provider
	rdb     redis.Cmdable
	ttl     time.Duration
	log     *slog.Logger
	lookups *prometheus.CounterVec // labelled by result: hit, miss, error; may be nil
}

// NewCachedProvider wraps next with a Redis cache. A zero ttl keeps entries forever.
func NewCachedProvider(
	next Provider,
	rdb redis.Cmdable,
	ttl time.Duration,
	lookups *prometheus.CounterVec,
	log *slog.Logger,
) *CachedProvider {
	return &CachedProvider{next: next, rdb: rdb, ttl: ttl, lookups: lookups, log: log}
}

// CacheKey normalizes an address into its cache key.
func CacheKey(address string) string {
	return geocodeKeyPrefix + strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

// Geocode returns the cached place for the address or asks the wrapped provider and stores the answer.
func (cp *CachedProvider) Geocode(ctx context.Context, address string) (*models.Place, error) {
	key := CacheKey(address)

	raw, err := cp.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var place models.Place
		if errDecode := json.Unmarshal(raw, &place); errDecode == nil {
			cp.count("hit")
			return &place, nil
		}
		cp.log.WarnContext(ctx, "Dropping undecodable geocode cache entry", "key", key)
		cp.count("error")
	case errors.Is(err, redis.Nil):
		cp.count("miss")
	default:
		cp.log.WarnContext(ctx, "Geocode cache unavailable", "error", err)
		cp.count("error")
	}

	place, err := cp.next.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	if err = cp.store(ctx, key, place); err != nil {
		cp.log.WarnContext(ctx, "Failed to store geocode result", "key", key, "error", err)
	}

	return place, nil
}

func (cp *CachedProvider) store(ctx context.Context, key string, place *models.Place) error {
	raw, err := json.Marshal(place)
	if err != nil {
		return fmt.Errorf("failed to encode place: %w", err)
	}

	if err = cp.rdb.Set(ctx, key, raw, cp.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write geocode cache: %w", err)
	}

	return nil
}

func (cp *CachedProvider) count(result string) {
	if cp.lookups != nil {
		cp.lookups.WithLabelValues(result).Inc()
	}
}
