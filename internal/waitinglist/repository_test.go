package waitinglist

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestRepo(start time.Time) (*MemoryRepository, *time.Time) {
	clock := start
	repo := NewMemoryRepository().WithClock(func() time.Time { return clock })
	return repo, &clock
}

func mustCheckIn(t *testing.T, repo *MemoryRepository, clinicID, reason, priority string) *Entry {
	t.Helper()
	entry, err := repo.Add(context.Background(), &CheckInRequest{
		ClinicID:  clinicID,
		PatientID: "owner-1",
		PetID:     "pet-1",
		Reason:    reason,
		Priority:  priority,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	return entry
}

func TestAddValidates(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	cases := []struct {
		name string
		req  CheckInRequest
		want error
	}{
		{"missing clinic", CheckInRequest{PatientID: "o", PetID: "p", Reason: "limp"}, ErrMissingClinicID},
		{"missing patient", CheckInRequest{ClinicID: "c", PetID: "p", Reason: "limp"}, ErrMissingPatientID},
		{"missing pet", CheckInRequest{ClinicID: "c", PatientID: "o", Reason: "limp"}, ErrMissingPetID},
		{"missing reason", CheckInRequest{ClinicID: "c", PatientID: "o", PetID: "p"}, ErrMissingReason},
		{"bad priority", CheckInRequest{ClinicID: "c", PatientID: "o", PetID: "p", Reason: "limp", Priority: "asap"}, ErrUnknownPriority},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Add(ctx, &tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("%v should unwrap to ErrValidation", err)
			}
		})
	}
}

func TestScheduledArrivalFlow(t *testing.T) {
	start := time.Date(2026, 3, 2, 7, 45, 0, 0, time.UTC)
	repo, clock := newTestRepo(start)
	ctx := context.Background()

	entry, err := repo.Add(ctx, &CheckInRequest{
		ClinicID:      "clinic-1",
		PatientID:     "owner-1",
		PetID:         "pet-1",
		AppointmentID: "appt-9",
		Reason:        "annual exam",
		Scheduled:     true,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if entry.Status != StatusScheduled {
		t.Fatalf("scheduled add should start scheduled, got %s", entry.Status)
	}
	if entry.CheckedInAt != nil {
		t.Fatal("scheduled entry must not be stamped until arrival")
	}

	scheduled, err := repo.List(ctx, "clinic-1", ListFilter{Statuses: []Status{StatusScheduled}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(scheduled) != 1 || scheduled[0].ID != entry.ID {
		t.Fatalf("expected the scheduled entry in the scheduled view, got %d rows", len(scheduled))
	}

	arrival := start.Add(30 * time.Minute)
	*clock = arrival
	entry, err = repo.UpdateStatus(ctx, "clinic-1", entry.ID, StatusWaiting)
	if err != nil {
		t.Fatalf("scheduled → waiting: %v", err)
	}
	if entry.CheckedInAt == nil || !entry.CheckedInAt.Equal(arrival) {
		t.Fatal("checked_in_at should be stamped at arrival time")
	}
}

func TestCheckInToCompletionScenario(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo, clock := newTestRepo(start)
	ctx := context.Background()

	entry := mustCheckIn(t, repo, "clinic-1", "limp", "normal")
	if entry.Status != StatusWaiting {
		t.Fatalf("new entry should be waiting, got %s", entry.Status)
	}
	if entry.CheckedInAt == nil || !entry.CheckedInAt.Equal(start) {
		t.Fatal("checked_in_at should be stamped at creation")
	}
	if entry.Priority != PriorityNormal {
		t.Fatalf("expected normal priority, got %s", entry.Priority)
	}

	*clock = start.Add(15 * time.Minute)
	entry, err := repo.UpdateStatus(ctx, "clinic-1", entry.ID, StatusAttending)
	if err != nil {
		t.Fatalf("waiting → attending: %v", err)
	}
	if entry.Status != StatusAttending || entry.AttendingAt == nil {
		t.Fatal("attending_at should be stamped")
	}

	*clock = start.Add(40 * time.Minute)
	entry, err = repo.UpdateStatus(ctx, "clinic-1", entry.ID, StatusCompleted)
	if err != nil {
		t.Fatalf("attending → completed: %v", err)
	}
	if entry.Status != StatusCompleted || entry.CompletedAt == nil {
		t.Fatal("completed_at should be stamped")
	}
	if entry.CheckedInAt.After(*entry.AttendingAt) || entry.AttendingAt.After(*entry.CompletedAt) {
		t.Fatal("timestamps are not monotonic")
	}

	if _, err := repo.UpdateStatus(ctx, "clinic-1", entry.ID, StatusWaiting); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("terminal entry must reject reopening, got %v", err)
	}
}

func TestIllegalSkipLeavesEntryUnchanged(t *testing.T) {
	repo, _ := newTestRepo(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	entry := mustCheckIn(t, repo, "clinic-1", "vomiting", "high")
	if _, err := repo.UpdateStatus(ctx, "clinic-1", entry.ID, StatusCompleted); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("waiting → completed must be rejected, got %v", err)
	}

	stored, err := repo.Get(ctx, "clinic-1", entry.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != StatusWaiting || stored.CompletedAt != nil {
		t.Fatal("rejected transition must leave the entry unchanged")
	}
}

func TestPriorityChangeBlockedAfterCompletion(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo, clock := newTestRepo(start)
	ctx := context.Background()

	entry := mustCheckIn(t, repo, "clinic-1", "checkup", "low")
	*clock = start.Add(time.Minute)
	if _, err := repo.UpdateStatus(ctx, "clinic-1", entry.ID, StatusAttending); err != nil {
		t.Fatal(err)
	}
	*clock = start.Add(2 * time.Minute)
	if _, err := repo.UpdateStatus(ctx, "clinic-1", entry.ID, StatusCompleted); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.UpdatePriority(ctx, "clinic-1", entry.ID, PriorityUrgent); !errors.Is(err, ErrTerminalEntry) {
		t.Fatalf("expected ErrTerminalEntry, got %v", err)
	}
}

func TestPriorityChangeWhileActive(t *testing.T) {
	repo, _ := newTestRepo(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	entry := mustCheckIn(t, repo, "clinic-1", "itchy skin", "normal")
	updated, err := repo.UpdatePriority(ctx, "clinic-1", entry.ID, PriorityUrgent)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Priority != PriorityUrgent {
		t.Fatalf("expected urgent, got %s", updated.Priority)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	repo, _ := newTestRepo(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	entry := mustCheckIn(t, repo, "clinic-1", "nail trim", "low")
	if err := repo.Remove(ctx, "clinic-1", entry.ID); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if err := repo.Remove(ctx, "clinic-1", entry.ID); err != nil {
		t.Fatalf("second remove must be a no-op: %v", err)
	}
	if _, err := repo.Get(ctx, "clinic-1", entry.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound after removal, got %v", err)
	}
}

func TestTenantIsolation(t *testing.T) {
	repo, _ := newTestRepo(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	entryA := mustCheckIn(t, repo, "clinic-a", "limp", "normal")
	mustCheckIn(t, repo, "clinic-b", "cough", "urgent")

	listed, err := repo.List(ctx, "clinic-a", ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range listed {
		if e.ClinicID != "clinic-a" {
			t.Fatalf("clinic-a listing leaked entry from %s", e.ClinicID)
		}
	}

	// A known id from another clinic must look absent, not forbidden.
	if _, err := repo.Get(ctx, "clinic-b", entryA.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("cross-clinic lookup must be ErrEntryNotFound, got %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, "clinic-b", entryA.ID, StatusAttending); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("cross-clinic mutation must be ErrEntryNotFound, got %v", err)
	}
}

func TestListFiltersByStatusAndDay(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo, clock := newTestRepo(start)
	ctx := context.Background()

	first := mustCheckIn(t, repo, "clinic-1", "limp", "normal")
	*clock = start.Add(5 * time.Minute)
	second := mustCheckIn(t, repo, "clinic-1", "cough", "normal")
	*clock = start.Add(6 * time.Minute)
	if _, err := repo.UpdateStatus(ctx, "clinic-1", second.ID, StatusAttending); err != nil {
		t.Fatal(err)
	}
	*clock = start.Add(24 * time.Hour)
	nextDay := mustCheckIn(t, repo, "clinic-1", "recheck", "normal")

	waiting, err := repo.List(ctx, "clinic-1", ListFilter{Statuses: []Status{StatusWaiting}, Day: &start})
	if err != nil {
		t.Fatal(err)
	}
	if len(waiting) != 1 || waiting[0].ID != first.ID {
		t.Fatalf("expected only the first entry waiting on day one, got %d rows", len(waiting))
	}

	day2 := start.Add(24 * time.Hour)
	rows, err := repo.List(ctx, "clinic-1", ListFilter{Day: &day2})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != nextDay.ID {
		t.Fatalf("expected only the next-day entry, got %d rows", len(rows))
	}
}

func TestCloneShieldsStoredState(t *testing.T) {
	repo, _ := newTestRepo(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	entry := mustCheckIn(t, repo, "clinic-1", "limp", "normal")
	entry.Reason = "tampered"
	*entry.CheckedInAt = entry.CheckedInAt.Add(time.Hour)

	stored, err := repo.Get(ctx, "clinic-1", entry.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Reason != "limp" {
		t.Fatal("caller mutation reached stored entry")
	}
}
