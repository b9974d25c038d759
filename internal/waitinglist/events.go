package waitinglist

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types recorded on the board audit trail.
const (
	EventScheduled       = "scheduled"
	EventCheckedIn       = "checked_in"
	EventStatusChanged   = "status_changed"
	EventPriorityChanged = "priority_changed"
	EventRemoved         = "removed"
)

// Event is one append-only audit record for a board entry.
type Event struct {
	ID         string    `json:"id"`
	ClinicID   string    `json:"clinic_id"`
	EntryID    string    `json:"entry_id"`
	Type       string    `json:"type"`
	FromStatus Status    `json:"from_status,omitempty"`
	ToStatus   Status    `json:"to_status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventStore persists board events for the audit trail.
type EventStore struct {
	db DB
}

// NewEventStore initializes an event store backed by pgx.
func NewEventStore(db DB) *EventStore {
	if db == nil {
		panic("waitinglist: pgx pool required")
	}
	return &EventStore{db: db}
}

// Append inserts one event row.
func (s *EventStore) Append(ctx context.Context, ev *Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	query := `
		INSERT INTO board_events (id, clinic_id, entry_id, type, from_status, to_status, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := s.db.Exec(ctx, query,
		ev.ID,
		ev.ClinicID,
		ev.EntryID,
		ev.Type,
		nullIfEmpty(string(ev.FromStatus)),
		nullIfEmpty(string(ev.ToStatus)),
		ev.OccurredAt,
	); err != nil {
		return fmt.Errorf("waitinglist: insert event: %w", err)
	}
	return nil
}

// ListForEntry returns the entry's events in occurrence order.
func (s *EventStore) ListForEntry(ctx context.Context, clinicID, entryID string) ([]Event, error) {
	query := `
		SELECT id, clinic_id, entry_id, type, from_status, to_status, occurred_at
		FROM board_events
		WHERE clinic_id = $1 AND entry_id = $2
		ORDER BY occurred_at
	`
	rows, err := s.db.Query(ctx, query, clinicID, entryID)
	if err != nil {
		return nil, fmt.Errorf("waitinglist: list events: %w", err)
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		var (
			ev   Event
			from sql.NullString
			to   sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.ClinicID, &ev.EntryID, &ev.Type, &from, &to, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("waitinglist: scan event: %w", err)
		}
		ev.FromStatus = Status(from.String)
		ev.ToStatus = Status(to.String)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("waitinglist: list events: %w", err)
	}
	return out, nil
}
