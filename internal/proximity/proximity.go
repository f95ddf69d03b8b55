// Package proximity ranks location-bearing records by great-circle distance from a reference point.
// All functions are pure: they never mutate their inputs and are safe for concurrent use.
package proximity

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/UnknownOlympus/swasthya/internal/models"
)

// EarthRadiusKm is the mean Earth radius used by DistanceKm.
const EarthRadiusKm = 6371.0

// Located is any record that may carry a coordinate.
type Located interface {
	Position() (models.Coordinates, bool)
}

// Named is a located record with a name used for alphabetical ordering.
type Named interface {
	Located
	DisplayName() string
}

// Ranked pairs a record with its distance from the reference.
// HasDistance is false when the record has no position or no reference was known.
type Ranked[T any] struct {
	Record      T       `json:"record"`
	DistanceKm  float64 `json:"distanceKm"`
	HasDistance bool    `json:"hasDistance"`
}

// DistanceKm returns the haversine great-circle distance between a and b in kilometers.
// Non-finite inputs propagate to the result.
func DistanceKm(a, b models.Coordinates) float64 {
	const toRad = math.Pi / 180

	dLat := (b.Latitude - a.Latitude) * toRad
	dLng := (b.Longitude - a.Longitude) * toRad
	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(a.Latitude*toRad)*math.Cos(b.Latitude*toRad)*sinLng*sinLng

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Annotate computes each record's distance from ref, preserving input order.
func Annotate[T Located](ref models.Coordinates, records []T) []Ranked[T] {
	out := make([]Ranked[T], 0, len(records))
	for _, rec := range records {
		ranked := Ranked[T]{Record: rec}
		if pos, ok := rec.Position(); ok {
			ranked.DistanceKm = DistanceKm(ref, pos)
			ranked.HasDistance = true
		}
		out = append(out, ranked)
	}

	return out
}

// WithinRadius keeps the records whose distance is at most radiusKm.
// Records without a distance are dropped; a negative radius matches nothing.
func WithinRadius[T any](ranked []Ranked[T], radiusKm float64) []Ranked[T] {
	out := make([]Ranked[T], 0, len(ranked))
	for _, r := range ranked {
		if r.HasDistance && r.DistanceKm <= radiusKm {
			out = append(out, r)
		}
	}

	return out
}

// SortByDistance returns a copy ordered by ascending distance.
// Ties keep their input order and records without a distance go last, also in input order.
func SortByDistance[T any](ranked []Ranked[T]) []Ranked[T] {
	out := slices.Clone(ranked)
	if out == nil {
		out = []Ranked[T]{}
	}

	slices.SortStableFunc(out, func(a, b Ranked[T]) int {
		switch {
		case a.HasDistance && b.HasDistance:
			return cmp.Compare(a.DistanceKm, b.DistanceKm)
		case a.HasDistance:
			return -1
		case b.HasDistance:
			return 1
		default:
			return 0
		}
	})

	return out
}

// SortByName returns the records in case-insensitive alphabetical order, stable on equal names.
func SortByName[T Named](records []T) []Ranked[T] {
	out := make([]Ranked[T], 0, len(records))
	for _, rec := range records {
		out = append(out, Ranked[T]{Record: rec})
	}

	slices.SortStableFunc(out, func(a, b Ranked[T]) int {
		return strings.Compare(
			strings.ToLower(a.Record.DisplayName()),
			strings.ToLower(b.Record.DisplayName()),
		)
	})

	return out
}

// Arrange applies the listing policy: with a known reference the records are annotated,
// limited to radiusKm and sorted nearest first; without one they are sorted by name and
// no radius applies.
func Arrange[T Named](ref models.Reference, records []T, radiusKm float64) []Ranked[T] {
	origin, known := ref.Coordinates()
	if !known {
		return SortByName(records)
	}

	return SortByDistance(WithinRadius(Annotate(origin, records), radiusKm))
}
