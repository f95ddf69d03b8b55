package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingKind is the service requested from a hospital.
type BookingKind string

const (
	BookingAppointment BookingKind = "appointment"
	BookingBed         BookingKind = "bed"
	BookingAmbulance   BookingKind = "ambulance"
	BookingVideo       BookingKind = "video"
)

// Valid reports whether k is a known booking kind.
func (k BookingKind) Valid() bool {
	switch k {
	case BookingAppointment, BookingBed, BookingAmbulance, BookingVideo:
		return true
	default:
		return false
	}
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
// Cancelled and completed are terminal.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// Booking is a request made by a user against a hospital.
type Booking struct {
	ID          uuid.UUID     `json:"id"`
	HospitalID  string        `json:"hospitalId"`
	UserUID     string        `json:"userUid"`
	PatientName string        `json:"patientName"`
	Phone       string        `json:"phone"`
	Kind        BookingKind   `json:"kind"`
	Status      BookingStatus `json:"status"`
	ScheduledAt time.Time     `json:"scheduledAt"`
	Notes       string        `json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// MedicalRecord is the metadata of a document the user keeps in external object storage.
type MedicalRecord struct {
	ID          uuid.UUID `json:"id"`
	UserUID     string    `json:"userUid"`
	Title       string    `json:"title"`
	FileURL     string    `json:"fileUrl"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedAt  time.Time `json:"uploadedAt"`
}
