// Package cache keeps locally edited hospital fields in Redis.
// Overrides are consulted after the canonical record is fetched and win field by field.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/redis/go-redis/v9"
)

const overrideKeyPrefix = "hospital:override:"

// OverrideStore reads and writes hospital overrides.
type OverrideStore struct {
	rdb redis.Cmdable
	ttl time.Duration
	log *slog.Logger
}

// NewOverrideStore creates a store. A zero ttl keeps overrides until they are deleted.
func NewOverrideStore(rdb redis.Cmdable, ttl time.Duration, log *slog.Logger) *OverrideStore {
	return &OverrideStore{rdb: rdb, ttl: ttl, log: log}
}

func overrideKey(hospitalID string) string {
	return overrideKeyPrefix + hospitalID
}

// Get returns the override for a hospital, or nil when none is stored.
func (s *OverrideStore) Get(ctx context.Context, hospitalID string) (*models.HospitalOverride, error) {
	raw, err := s.rdb.Get(ctx, overrideKey(hospitalID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read override: %w", err)
	}

	var override models.HospitalOverride
	if err = json.Unmarshal(raw, &override); err != nil {
		return nil, fmt.Errorf("failed to decode override for %s: %w", hospitalID, err)
	}

	return &override, nil
}

// GetMany returns the overrides stored for the given hospitals keyed by hospital id.
// Undecodable entries are skipped and logged.
func (s *OverrideStore) GetMany(ctx context.Context, hospitalIDs []string) (map[string]models.HospitalOverride, error) {
	out := make(map[string]models.HospitalOverride)
	if len(hospitalIDs) == 0 {
		return out, nil
	}

	keys := make([]string, 0, len(hospitalIDs))
	for _, id := range hospitalIDs {
		keys = append(keys, overrideKey(id))
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides: %w", err)
	}

	for idx, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var override models.HospitalOverride
		if errDecode := json.Unmarshal([]byte(raw), &override); errDecode != nil {
			s.log.WarnContext(ctx, "Skipping undecodable override", "hospital", hospitalIDs[idx], "error", errDecode)
			continue
		}
		out[hospitalIDs[idx]] = override
	}

	return out, nil
}

// Put stores the override, replacing any previous one. An empty override deletes the entry.
func (s *OverrideStore) Put(ctx context.Context, hospitalID string, override models.HospitalOverride) error {
	if override.Empty() {
		return s.Delete(ctx, hospitalID)
	}

	raw, err := json.Marshal(override)
	if err != nil {
		return fmt.Errorf("failed to encode override: %w", err)
	}

	if err = s.rdb.Set(ctx, overrideKey(hospitalID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write override: %w", err)
	}

	return nil
}

// Delete removes the override of a hospital.
func (s *OverrideStore) Delete(ctx context.Context, hospitalID string) error {
	if err := s.rdb.Del(ctx, overrideKey(hospitalID)).Err(); err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}

	return nil
}

// Apply returns the hospitals with their overrides merged in, preserving order.
func Apply(hospitals []models.Hospital, overrides map[string]models.HospitalOverride) []models.Hospital {
	out := make([]models.Hospital, 0, len(hospitals))
	for _, h := range hospitals {
		if override, ok := overrides[h.ID]; ok {
			h = override.Apply(h)
		}
		out = append(out, h)
	}

	return out
}
