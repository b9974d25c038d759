package waitinglist

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows a clinic's entries. A nil Day means all days.
type ListFilter struct {
	Statuses []Status
	Day      *time.Time
}

func (f ListFilter) matchesStatus(s Status) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, want := range f.Statuses {
		if want == s {
			return true
		}
	}
	return false
}

// matchesDay restricts by check-in date; entries that never checked in are
// kept on their creation date so scheduled rows still show on the board.
func (f ListFilter) matchesDay(e *Entry) bool {
	if f.Day == nil {
		return true
	}
	ref := e.CreatedAt
	if e.CheckedInAt != nil {
		ref = *e.CheckedInAt
	}
	y1, m1, d1 := ref.UTC().Date()
	y2, m2, d2 := f.Day.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Repository defines clinic-scoped storage for waiting-list entries.
type Repository interface {
	Add(ctx context.Context, req *CheckInRequest) (*Entry, error)
	Get(ctx context.Context, clinicID, id string) (*Entry, error)
	List(ctx context.Context, clinicID string, filter ListFilter) ([]*Entry, error)
	UpdateStatus(ctx context.Context, clinicID, id string, to Status) (*Entry, error)
	UpdatePriority(ctx context.Context, clinicID, id string, priority Priority) (*Entry, error)
	Remove(ctx context.Context, clinicID, id string) error
}

// MemoryRepository keeps entries in memory; used in tests and demo mode.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		entries: make(map[string]*Entry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the wall clock, for tests.
func (r *MemoryRepository) WithClock(now func() time.Time) *MemoryRepository {
	if now != nil {
		r.now = now
	}
	return r
}

// Add validates the request and stores a new entry, checked in as waiting or
// placed ahead of arrival as scheduled.
func (r *MemoryRepository) Add(ctx context.Context, req *CheckInRequest) (*Entry, error) {
	priority, err := req.Validate()
	if err != nil {
		return nil, err
	}

	now := r.now()
	entry := &Entry{
		ID:                uuid.NewString(),
		ClinicID:          req.ClinicID,
		PatientID:         req.PatientID,
		PetID:             req.PetID,
		AppointmentID:     req.AppointmentID,
		Priority:          priority,
		Reason:            req.Reason,
		Notes:             req.Notes,
		EstimatedDuration: req.EstimatedDuration,
		Status:            StatusWaiting,
		CheckedInAt:       &now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.Scheduled {
		entry.Status = StatusScheduled
		entry.CheckedInAt = nil
	}

	r.mu.Lock()
	r.entries[entry.ID] = entry
	r.mu.Unlock()

	return entry.Clone(), nil
}

// Get returns the entry scoped to the clinic.
func (r *MemoryRepository) Get(ctx context.Context, clinicID, id string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok || entry.ClinicID != clinicID {
		return nil, ErrEntryNotFound
	}
	return entry.Clone(), nil
}

// List returns the clinic's entries matching the filter, oldest first.
func (r *MemoryRepository) List(ctx context.Context, clinicID string, filter ListFilter) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Entry, 0)
	for _, entry := range r.entries {
		if entry.ClinicID != clinicID {
			continue
		}
		if !filter.matchesStatus(entry.Status) || !filter.matchesDay(entry) {
			continue
		}
		out = append(out, entry.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateStatus applies a state-machine transition against the stored entry.
func (r *MemoryRepository) UpdateStatus(ctx context.Context, clinicID, id string, to Status) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || entry.ClinicID != clinicID {
		return nil, ErrEntryNotFound
	}
	if err := ApplyTransition(entry, to, r.now()); err != nil {
		return nil, err
	}
	return entry.Clone(), nil
}

// UpdatePriority changes priority on a non-terminal entry.
func (r *MemoryRepository) UpdatePriority(ctx context.Context, clinicID, id string, priority Priority) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || entry.ClinicID != clinicID {
		return nil, ErrEntryNotFound
	}
	if entry.Status.Terminal() {
		return nil, ErrTerminalEntry
	}
	entry.Priority = priority
	entry.UpdatedAt = r.now()
	return entry.Clone(), nil
}

// Remove deletes the entry. Removing an absent id is a no-op.
func (r *MemoryRepository) Remove(ctx context.Context, clinicID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || entry.ClinicID != clinicID {
		return nil
	}
	delete(r.entries, id)
	return nil
}
