package models

import "time"

// Hospital is a directory entry. Location is nil until the address has been geocoded.
type Hospital struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Address       string       `json:"address"`
	City          string       `json:"city"`
	Phone         string       `json:"phone"`
	WhatsApp      string       `json:"whatsapp,omitempty"`
	Specialties   []string     `json:"specialties"`
	Beds          int          `json:"beds"`
	AvailableBeds int          `json:"availableBeds"`
	Emergency     bool         `json:"emergency"`
	Ambulance     bool         `json:"ambulance"`
	Rating        float64      `json:"rating"`
	Location      *Coordinates `json:"location,omitempty"`
	AdminUID      *string      `json:"-"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Position returns the hospital location, if any.
func (h Hospital) Position() (Coordinates, bool) {
	if h.Location == nil {
		return Coordinates{}, false
	}

	return *h.Location, true
}

// DisplayName is the name used for alphabetical ordering.
func (h Hospital) DisplayName() string {
	return h.Name
}

// Claimed reports whether an administrator owns the listing.
func (h Hospital) Claimed() bool {
	return h.AdminUID != nil && *h.AdminUID != ""
}

// AdministeredBy reports whether uid is the listing administrator.
func (h Hospital) AdministeredBy(uid string) bool {
	return uid != "" && h.AdminUID != nil && *h.AdminUID == uid
}

// HospitalOverride holds locally edited fields that take precedence over the canonical record.
// A nil field leaves the canonical value untouched.
type HospitalOverride struct {
	Name          *string `json:"name,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	WhatsApp      *string `json:"whatsapp,omitempty"`
	AvailableBeds *int    `json:"availableBeds,omitempty"`
	Emergency     *bool   `json:"emergency,omitempty"`
	Ambulance     *bool   `json:"ambulance,omitempty"`
}

// Empty reports whether the override sets no field.
func (o HospitalOverride) Empty() bool {
	return o.Name == nil && o.Phone == nil && o.WhatsApp == nil &&
		o.AvailableBeds == nil && o.Emergency == nil && o.Ambulance == nil
}

// Apply returns a copy of h with every set override field taking precedence.
func (o HospitalOverride) Apply(h Hospital) Hospital {
	if o.Name != nil {
		h.Name = *o.Name
	}
	if o.Phone != nil {
		h.Phone = *o.Phone
	}
	if o.WhatsApp != nil {
		h.WhatsApp = *o.WhatsApp
	}
	if o.AvailableBeds != nil {
		h.AvailableBeds = *o.AvailableBeds
	}
	if o.Emergency != nil {
		h.Emergency = *o.Emergency
	}
	if o.Ambulance != nil {
		h.Ambulance = *o.Ambulance
	}

	return h
}

// GeocodeTask is a hospital whose address still needs coordinates.
type GeocodeTask struct {
	HospitalID string // HospitalID is the listing to update.
	Address    string // Address is the location to be geocoded.
}
