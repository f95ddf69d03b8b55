package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinates represents a geographical point defined by its latitude and longitude in degrees.
type Coordinates struct {
	Latitude  float64 `json:"lat"` // Latitude of the geographical point.
	Longitude float64 `json:"lng"` // Longitude of the geographical point.
}

// ErrInvalidCoordinates is returned when a reference location cannot be parsed.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Valid reports whether both components are finite and inside the geographic ranges.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0) {
		return false
	}

	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Reference is the location against which distances are measured.
// It is either Known (carrying coordinates) or Unknown; the zero value is Unknown.
type Reference struct {
	coords Coordinates
	known  bool
}

// Known returns a reference at the given coordinates.
func Known(c Coordinates) Reference {
	return Reference{coords: c, known: true}
}

// Unknown returns a reference that carries no location.
func Unknown() Reference {
	return Reference{}
}

// Coordinates returns the reference point and whether it is known.
func (r Reference) Coordinates() (Coordinates, bool) {
	return r.coords, r.known
}

// IsKnown reports whether the reference carries coordinates.
func (r Reference) IsKnown() bool {
	return r.known
}

func (r Reference) String() string {
	if !r.known {
		return "unknown"
	}

	return fmt.Sprintf("%.6f,%.6f", r.coords.Latitude, r.coords.Longitude)
}

// ParseReference builds a Reference from optional textual latitude and longitude.
// Both empty means Unknown. One of them missing, unparsable or out of range is an error.
func ParseReference(lat, lng string) (Reference, error) {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if lat == "" && lng == "" {
		return Unknown(), nil
	}
	if lat == "" || lng == "" {
		return Unknown(), fmt.Errorf("%w: both lat and lng are required", ErrInvalidCoordinates)
	}

	latitude, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return Unknown(), fmt.Errorf("%w: latitude %q", ErrInvalidCoordinates, lat)
	}
	longitude, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return Unknown(), fmt.Errorf("%w: longitude %q", ErrInvalidCoordinates, lng)
	}

	coords := Coordinates{Latitude: latitude, Longitude: longitude}
	if !coords.Valid() {
		return Unknown(), fmt.Errorf("%w: %s out of range", ErrInvalidCoordinates, Known(coords))
	}

	return Known(coords), nil
}

// Place is a geocoding result: coordinates plus the provider's display name.
type Place struct {
	Coordinates
	DisplayName string `json:"displayName"`
}
