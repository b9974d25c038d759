// Package directory provides read-only lookups into the clinic's patient,
// owner and appointment records. Those records are owned elsewhere; the board
// only joins against them.
package directory

import (
	"context"
	"time"
)

// PatientInfo is the denormalized owner + pet view the whiteboard displays.
type PatientInfo struct {
	OwnerName   string `json:"owner_name"`
	PatientName string `json:"patient_name"`
	Species     string `json:"species"`
	Breed       string `json:"breed,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
}

// AppointmentInfo is the slice of an appointment record the board needs.
type AppointmentInfo struct {
	ScheduledAt  time.Time `json:"scheduled_at"`
	ProviderID   string    `json:"provider_id"`
	ProviderName string    `json:"provider_name"`
	Type         string    `json:"type"`
	Confirmed    bool      `json:"confirmed"`
}

// PatientLookup resolves owner/pet display data by id.
type PatientLookup interface {
	Patient(ctx context.Context, clinicID, patientID, petID string) (*PatientInfo, error)
}

// AppointmentLookup resolves appointment display data by id.
type AppointmentLookup interface {
	Appointment(ctx context.Context, clinicID, appointmentID string) (*AppointmentInfo, error)
}
