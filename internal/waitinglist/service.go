package waitinglist

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clearpaw/vetclinic-platform/internal/observability/metrics"
	"github.com/clearpaw/vetclinic-platform/pkg/logging"
)

var boardTracer = otel.Tracer("vetclinic.internal.waitinglist")

// EventRecorder appends audit events. Append failures never fail a mutation.
type EventRecorder interface {
	Append(ctx context.Context, ev *Event) error
	ListForEntry(ctx context.Context, clinicID, entryID string) ([]Event, error)
}

// Invalidator drops cached whiteboard projections for a clinic.
type Invalidator interface {
	Invalidate(ctx context.Context, clinicID string) error
}

// Service owns all writes to the waiting list.
type Service struct {
	repo    Repository
	events  EventRecorder
	cache   Invalidator
	metrics *metrics.BoardMetrics
	logger  *logging.Logger
}

// NewService constructs a waiting-list service. events, cache and m may be nil.
func NewService(repo Repository, events EventRecorder, cache Invalidator, m *metrics.BoardMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("waitinglist: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, events: events, cache: cache, metrics: m, logger: logger}
}

// Repository exposes the underlying repo for read-side consumers.
func (s *Service) Repository() Repository {
	return s.repo
}

// CheckIn adds a patient to the queue in waiting status.
func (s *Service) CheckIn(ctx context.Context, req *CheckInRequest) (*Entry, error) {
	ctx, span := boardTracer.Start(ctx, "board.checkin")
	defer span.End()
	span.SetAttributes(attribute.String("vetclinic.clinic_id", req.ClinicID))

	entry, err := s.repo.Add(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.metrics.ObserveCheckIn(string(entry.Priority))
	eventType := EventCheckedIn
	if entry.Status == StatusScheduled {
		eventType = EventScheduled
	}
	s.record(ctx, &Event{
		ClinicID: entry.ClinicID,
		EntryID:  entry.ID,
		Type:     eventType,
		ToStatus: entry.Status,
	})
	s.invalidate(ctx, entry.ClinicID)
	s.logger.Info("entry added to board",
		"clinic_id", entry.ClinicID, "entry_id", entry.ID,
		"status", entry.Status, "priority", entry.Priority)
	return entry, nil
}

// Transition moves the entry through the status state machine.
func (s *Service) Transition(ctx context.Context, clinicID, id string, to Status) (*Entry, error) {
	ctx, span := boardTracer.Start(ctx, "board.transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("vetclinic.clinic_id", clinicID),
		attribute.String("vetclinic.entry_id", id),
		attribute.String("vetclinic.to_status", string(to)),
	)

	before, err := s.repo.Get(ctx, clinicID, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	entry, err := s.repo.UpdateStatus(ctx, clinicID, id, to)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveTransition(string(before.Status), string(to), "rejected")
		return nil, err
	}
	s.metrics.ObserveTransition(string(before.Status), string(to), "applied")
	if before.Status != entry.Status {
		s.record(ctx, &Event{
			ClinicID:   clinicID,
			EntryID:    id,
			Type:       EventStatusChanged,
			FromStatus: before.Status,
			ToStatus:   entry.Status,
		})
		s.invalidate(ctx, clinicID)
	}
	s.logger.Info("entry status changed",
		"clinic_id", clinicID, "entry_id", id, "from", before.Status, "to", entry.Status)
	return entry, nil
}

// Reprioritize changes the entry's queue priority.
func (s *Service) Reprioritize(ctx context.Context, clinicID, id string, priority Priority) (*Entry, error) {
	ctx, span := boardTracer.Start(ctx, "board.reprioritize")
	defer span.End()
	span.SetAttributes(
		attribute.String("vetclinic.clinic_id", clinicID),
		attribute.String("vetclinic.entry_id", id),
	)

	entry, err := s.repo.UpdatePriority(ctx, clinicID, id, priority)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.record(ctx, &Event{
		ClinicID: clinicID,
		EntryID:  id,
		Type:     EventPriorityChanged,
	})
	s.invalidate(ctx, clinicID)
	s.logger.Info("entry priority changed",
		"clinic_id", clinicID, "entry_id", id, "priority", priority)
	return entry, nil
}

// Remove takes the entry off the board. Idempotent.
func (s *Service) Remove(ctx context.Context, clinicID, id string) error {
	ctx, span := boardTracer.Start(ctx, "board.remove")
	defer span.End()
	span.SetAttributes(
		attribute.String("vetclinic.clinic_id", clinicID),
		attribute.String("vetclinic.entry_id", id),
	)

	if err := s.repo.Remove(ctx, clinicID, id); err != nil {
		span.RecordError(err)
		return err
	}
	s.record(ctx, &Event{ClinicID: clinicID, EntryID: id, Type: EventRemoved})
	s.invalidate(ctx, clinicID)
	s.logger.Info("entry removed", "clinic_id", clinicID, "entry_id", id)
	return nil
}

// EntryEvents returns the entry's audit trail.
func (s *Service) EntryEvents(ctx context.Context, clinicID, id string) ([]Event, error) {
	if s.events == nil {
		return []Event{}, nil
	}
	if _, err := s.repo.Get(ctx, clinicID, id); err != nil {
		return nil, err
	}
	return s.events.ListForEntry(ctx, clinicID, id)
}

func (s *Service) record(ctx context.Context, ev *Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, ev); err != nil {
		s.logger.Warn("board event append failed",
			"error", err, "entry_id", ev.EntryID, "type", ev.Type)
	}
}

func (s *Service) invalidate(ctx context.Context, clinicID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, clinicID); err != nil {
		s.logger.Warn("board cache invalidation failed", "error", err, "clinic_id", clinicID)
	}
}
