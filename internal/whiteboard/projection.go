package whiteboard

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/clearpaw/vetclinic-platform/internal/directory"
	"github.com/clearpaw/vetclinic-platform/internal/observability/metrics"
	"github.com/clearpaw/vetclinic-platform/internal/waitinglist"
	"github.com/clearpaw/vetclinic-platform/pkg/logging"
)

// EntrySource lists waiting-list entries; satisfied by waitinglist.Repository.
type EntrySource interface {
	List(ctx context.Context, clinicID string, filter waitinglist.ListFilter) ([]*waitinglist.Entry, error)
}

// Projector builds the per-day board view. It is a pure read side: it holds
// no state of its own beyond its collaborators and never mutates an entry.
type Projector struct {
	entries  EntrySource
	patients directory.PatientLookup
	appts    directory.AppointmentLookup
	cache    *Cache
	metrics  *metrics.BoardMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewProjector constructs a projector. patients, appts, cache and m may be
// nil; missing lookups simply leave display fields blank.
func NewProjector(entries EntrySource, patients directory.PatientLookup, appts directory.AppointmentLookup, cache *Cache, m *metrics.BoardMetrics, logger *logging.Logger) *Projector {
	if entries == nil {
		panic("whiteboard: entry source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Projector{
		entries:  entries,
		patients: patients,
		appts:    appts,
		cache:    cache,
		metrics:  m,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the wall clock, for tests.
func (p *Projector) WithClock(now func() time.Time) *Projector {
	if now != nil {
		p.now = now
	}
	return p
}

// Build produces the ordered board for one clinic day. Safe for concurrent
// use.
func (p *Projector) Build(ctx context.Context, clinicID string, day time.Time, filter Filter) ([]Row, error) {
	start := p.now()

	if p.cache != nil {
		if rows, ok := p.cache.Get(ctx, clinicID, day, filter); ok {
			p.metrics.ObserveProjection("cache", p.now().Sub(start).Seconds())
			return rows, nil
		}
	}

	entries, err := p.entries.List(ctx, clinicID, waitinglist.ListFilter{
		Statuses: statusesForShow(filter.Show),
		Day:      &day,
	})
	if err != nil {
		return nil, err
	}

	now := p.now()
	rows := make([]Row, 0, len(entries))
	for _, entry := range entries {
		row := p.buildRow(ctx, entry, now)
		if !matchesFilter(row, filter) {
			continue
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		wi, wj := rows[i].Priority.Weight(), rows[j].Priority.Weight()
		if wi != wj {
			return wi > wj
		}
		return sortKey(rows[i]).Before(sortKey(rows[j]))
	})
	for i := range rows {
		rows[i].Sno = i + 1
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, clinicID, day, filter, rows); err != nil {
			p.logger.Warn("board cache store failed", "error", err, "clinic_id", clinicID)
		}
	}
	p.metrics.ObserveProjection("db", p.now().Sub(start).Seconds())
	return rows, nil
}

// buildRow joins one entry with its reference data. A failed join degrades
// the row's display fields; it never drops the row or aborts the build.
func (p *Projector) buildRow(ctx context.Context, entry *waitinglist.Entry, now time.Time) Row {
	row := Row{Entry: *entry}

	if p.patients != nil {
		info, err := p.patients.Patient(ctx, entry.ClinicID, entry.PatientID, entry.PetID)
		switch {
		case err == nil:
			row.OwnerName = info.OwnerName
			row.PatientName = info.PatientName
			row.Species = info.Species
			row.PhotoURL = info.PhotoURL
		case !errors.Is(err, directory.ErrNotFound):
			p.logger.Warn("patient join failed", "error", err, "entry_id", entry.ID)
		}
	}
	if p.appts != nil && entry.AppointmentID != "" {
		info, err := p.appts.Appointment(ctx, entry.ClinicID, entry.AppointmentID)
		switch {
		case err == nil:
			row.ProviderID = info.ProviderID
			row.ProviderName = info.ProviderName
			row.ApptType = info.Type
			row.Confirmed = info.Confirmed
			row.scheduledAt = info.ScheduledAt
		case !errors.Is(err, directory.ErrNotFound):
			p.logger.Warn("appointment join failed", "error", err, "entry_id", entry.ID)
		}
	}

	if minutes, ok := waitinglist.WaitingTime(entry.CheckedInAt, entry.AttendingAt, now); ok {
		row.WaitingTimeMinutes = &minutes
	}
	if minutes, ok := waitinglist.TurnaroundTime(entry.AttendingAt, entry.CompletedAt, now); ok {
		row.TurnaroundTimeMinutes = &minutes
	}
	row.WaitingLive = waitinglist.WaitingLive(entry.Status)
	row.TurnaroundLive = waitinglist.TurnaroundLive(entry.Status)
	return row
}

func statusesForShow(show Show) []waitinglist.Status {
	switch show {
	case ShowWaiting:
		return []waitinglist.Status{waitinglist.StatusWaiting}
	case ShowAttending:
		return []waitinglist.Status{waitinglist.StatusAttending}
	case ShowCompleted:
		return []waitinglist.Status{waitinglist.StatusCompleted}
	case ShowScheduled:
		return []waitinglist.Status{waitinglist.StatusScheduled}
	}
	return nil
}

func matchesFilter(row Row, filter Filter) bool {
	if filter.ProviderID != "" && row.ProviderID != filter.ProviderID {
		return false
	}
	if filter.ApptType != "" && !strings.EqualFold(row.ApptType, filter.ApptType) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		if !strings.Contains(strings.ToLower(row.OwnerName), q) &&
			!strings.Contains(strings.ToLower(row.PatientName), q) &&
			!strings.Contains(strings.ToLower(row.Reason), q) {
			return false
		}
	}
	return true
}

// sortKey orders same-priority rows first-come-first-served; scheduled rows
// that never checked in fall back to their appointment time.
func sortKey(row Row) time.Time {
	if row.CheckedInAt != nil {
		return *row.CheckedInAt
	}
	if !row.scheduledAt.IsZero() {
		return row.scheduledAt
	}
	return row.CreatedAt
}
