package waitinglist

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a waiting-list entry.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusWaiting   Status = "waiting"
	StatusAttending Status = "attending"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is legal from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusNoShow, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus resolves a wire status string to the canonical six-state set.
// The legacy synonym "in_progress" maps to attending.
func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusScheduled:
		return StatusScheduled, nil
	case StatusWaiting:
		return StatusWaiting, nil
	case StatusAttending, Status("in_progress"):
		return StatusAttending, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusNoShow:
		return StatusNoShow, nil
	case StatusCancelled:
		return StatusCancelled, nil
	}
	return "", ErrUnknownStatus
}

// Priority orders entries within the day's queue.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var priorityWeights = map[Priority]int{
	PriorityLow:    0,
	PriorityNormal: 1,
	PriorityHigh:   2,
	PriorityUrgent: 3,
}

// Weight returns the sort weight for p; higher weights sort first.
func (p Priority) Weight() int {
	return priorityWeights[p]
}

// ParsePriority resolves a wire priority string.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := priorityWeights[p]; !ok {
		return "", ErrUnknownPriority
	}
	return p, nil
}

// Entry is one patient's position in a clinic's waiting queue.
type Entry struct {
	ID                string     `json:"id"`
	ClinicID          string     `json:"clinic_id"`
	PatientID         string     `json:"patient_id"`
	PetID             string     `json:"pet_id"`
	AppointmentID     string     `json:"appointment_id,omitempty"`
	Priority          Priority   `json:"priority"`
	Reason            string     `json:"reason"`
	Notes             string     `json:"notes,omitempty"`
	EstimatedDuration int        `json:"estimated_duration,omitempty"`
	Status            Status     `json:"status"`
	CheckedInAt       *time.Time `json:"checked_in_at,omitempty"`
	AttendingAt       *time.Time `json:"attending_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (e *Entry) Clone() *Entry {
	out := *e
	out.CheckedInAt = cloneTime(e.CheckedInAt)
	out.AttendingAt = cloneTime(e.AttendingAt)
	out.CompletedAt = cloneTime(e.CompletedAt)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// CheckInRequest is the payload for adding an entry to the queue.
type CheckInRequest struct {
	ClinicID          string `json:"-"`
	PatientID         string `json:"patient_id"`
	PetID             string `json:"pet_id"`
	AppointmentID     string `json:"appointment_id,omitempty"`
	Priority          string `json:"priority"`
	Reason            string `json:"reason"`
	Notes             string `json:"notes,omitempty"`
	EstimatedDuration int    `json:"estimated_duration,omitempty"`

	// Scheduled places the entry on the board ahead of arrival, typically
	// from an appointment. The entry starts in scheduled status with no
	// check-in timestamp until the patient actually arrives.
	Scheduled bool `json:"scheduled,omitempty"`
}

// Validate checks required fields and normalizes the priority.
func (r *CheckInRequest) Validate() (Priority, error) {
	if strings.TrimSpace(r.ClinicID) == "" {
		return "", ErrMissingClinicID
	}
	if strings.TrimSpace(r.PatientID) == "" {
		return "", ErrMissingPatientID
	}
	if strings.TrimSpace(r.PetID) == "" {
		return "", ErrMissingPetID
	}
	if strings.TrimSpace(r.Reason) == "" {
		return "", ErrMissingReason
	}
	if strings.TrimSpace(r.Priority) == "" {
		return PriorityNormal, nil
	}
	return ParsePriority(r.Priority)
}
