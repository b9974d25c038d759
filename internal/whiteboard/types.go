package whiteboard

import (
	"strings"
	"time"

	"github.com/clearpaw/vetclinic-platform/internal/waitinglist"
)

// Show selects which slice of the board a client is viewing.
type Show string

const (
	ShowAll       Show = "all"
	ShowWaiting   Show = "waiting"
	ShowAttending Show = "attending"
	ShowCompleted Show = "completed"
	ShowScheduled Show = "scheduled"
)

// ParseShow normalizes a wire show value; anything unrecognized means all.
func ParseShow(raw string) Show {
	switch Show(strings.ToLower(strings.TrimSpace(raw))) {
	case ShowWaiting:
		return ShowWaiting
	case ShowAttending:
		return ShowAttending
	case ShowCompleted:
		return ShowCompleted
	case ShowScheduled:
		return ShowScheduled
	}
	return ShowAll
}

// Filter narrows the day's board.
type Filter struct {
	Show       Show   `json:"show"`
	ProviderID string `json:"provider_id,omitempty"`
	ApptType   string `json:"appt_type,omitempty"`
	Query      string `json:"q,omitempty"`
}

// Row is the display-ready projection of one waiting-list entry. It is
// rebuilt on every fetch and never written back.
type Row struct {
	waitinglist.Entry

	Sno          int    `json:"sno"`
	OwnerName    string `json:"owner_name,omitempty"`
	PatientName  string `json:"patient_name,omitempty"`
	Species      string `json:"species,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	ProviderID   string `json:"provider_id,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`
	ApptType     string `json:"appt_type,omitempty"`
	Confirmed    bool   `json:"confirmed"`

	WaitingTimeMinutes    *int `json:"waiting_time_minutes,omitempty"`
	TurnaroundTimeMinutes *int `json:"turnaround_time_minutes,omitempty"`
	WaitingLive           bool `json:"waiting_live"`
	TurnaroundLive        bool `json:"turnaround_live"`

	// scheduledAt carries the appointment time for ordering not-yet-checked-in
	// rows; it is not part of the wire shape.
	scheduledAt time.Time
}
