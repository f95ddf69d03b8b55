// Package links builds the external deep links shown next to a hospital:
// phone, WhatsApp chat, ride hailing, map directions and video consultation rooms.
package links

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/google/uuid"
)

const (
	rideBaseURL       = "https://m.uber.com/ul/"
	whatsAppBaseURL   = "https://wa.me/"
	videoBaseURL      = "https://meet.jit.si/"
	directionsBaseURL = "https://www.openstreetmap.org/directions"

	// Ten digit numbers are national Indian numbers and get the country code.
	countryCode     = "91"
	nationalDigits  = 10
	videoRoomPrefix = "swasthya-"
)

// HospitalLinks is the set of links for one hospital. Links that cannot be built are empty.
type HospitalLinks struct {
	Call       string `json:"call,omitempty"`
	WhatsApp   string `json:"whatsapp,omitempty"`
	Ride       string `json:"ride,omitempty"`
	Directions string `json:"directions,omitempty"`
}

// Digits normalises a phone number to its digits, adding the country code to national numbers.
func Digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := strings.TrimLeft(b.String(), "0")
	if len(digits) == nationalDigits {
		digits = countryCode + digits
	}

	return digits
}

// Call returns a tel: link, or "" when the number has no digits.
func Call(phone string) string {
	digits := Digits(phone)
	if digits == "" {
		return ""
	}

	return "tel:+" + digits
}

// WhatsApp returns a wa.me chat link with an optional prefilled message.
func WhatsApp(phone, text string) string {
	digits := Digits(phone)
	if digits == "" {
		return ""
	}

	link := whatsAppBaseURL + digits
	if text != "" {
		link += "?" + url.Values{"text": {text}}.Encode()
	}

	return link
}

// Ride returns a ride hailing link to dest. The pickup is the caller's position when known,
// otherwise the app's current location.
func Ride(dest models.Coordinates, nickname string, pickup models.Reference) string {
	q := url.Values{}
	q.Set("action", "setPickup")
	if origin, ok := pickup.Coordinates(); ok {
		q.Set("pickup[latitude]", formatCoord(origin.Latitude))
		q.Set("pickup[longitude]", formatCoord(origin.Longitude))
	} else {
		q.Set("pickup", "my_location")
	}
	q.Set("dropoff[latitude]", formatCoord(dest.Latitude))
	q.Set("dropoff[longitude]", formatCoord(dest.Longitude))
	if nickname != "" {
		q.Set("dropoff[nickname]", nickname)
	}

	return rideBaseURL + "?" + q.Encode()
}

// Directions returns a driving route to dest, from the caller's position when known.
func Directions(dest models.Coordinates, from models.Reference) string {
	q := url.Values{}
	q.Set("engine", "fossgis_osrm_car")
	route := ";" + coordPair(dest)
	if origin, ok := from.Coordinates(); ok {
		route = coordPair(origin) + route
	}
	q.Set("route", route)

	return directionsBaseURL + "?" + q.Encode()
}

// VideoCall returns the consultation room of a booking. The room is stable for a booking id.
func VideoCall(bookingID uuid.UUID) string {
	return videoBaseURL + videoRoomPrefix + strings.ReplaceAll(bookingID.String(), "-", "")
}

// ForHospital bundles the links for h as seen from ref.
func ForHospital(h models.Hospital, ref models.Reference) HospitalLinks {
	out := HospitalLinks{
		Call: Call(h.Phone),
	}

	chat := h.WhatsApp
	if chat == "" {
		chat = h.Phone
	}
	out.WhatsApp = WhatsApp(chat, "Hello "+h.Name+", I found you on SwasthyaConnect.")

	if dest, ok := h.Position(); ok {
		out.Ride = Ride(dest, h.Name, ref)
		out.Directions = Directions(dest, ref)
	}

	return out
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func coordPair(c models.Coordinates) string {
	return formatCoord(c.Latitude) + "," + formatCoord(c.Longitude)
}
