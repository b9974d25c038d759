package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestPatientStoreLookup(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := NewPatientStore(mock)

	mock.ExpectQuery("SELECT (.+) FROM owners o").
		WithArgs("clinic-1", "owner-1", "pet-1").
		WillReturnRows(pgxmock.NewRows([]string{"o_name", "phone", "email", "p_name", "species", "breed", "photo_url"}).
			AddRow("Dana Whitfield", "+15550100", nil, "Biscuit", "dog", "beagle", ""))

	info, err := store.Patient(context.Background(), "clinic-1", "owner-1", "pet-1")
	if err != nil {
		t.Fatalf("Patient: %v", err)
	}
	if info.OwnerName != "Dana Whitfield" || info.PatientName != "Biscuit" || info.Species != "dog" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.Email != "" {
		t.Fatal("null email should scan to empty string")
	}
}

func TestPatientStoreNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := NewPatientStore(mock)

	mock.ExpectQuery("SELECT (.+) FROM owners o").
		WithArgs("clinic-1", "owner-x", "pet-x").
		WillReturnError(pgx.ErrNoRows)

	if _, err := store.Patient(context.Background(), "clinic-1", "owner-x", "pet-x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppointmentStoreLookup(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := NewAppointmentStore(mock)

	scheduled := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM appointments a").
		WithArgs("clinic-1", "appt-1").
		WillReturnRows(pgxmock.NewRows([]string{"scheduled_at", "provider_id", "provider_name", "appt_type", "confirmed"}).
			AddRow(scheduled, "dr-1", "Dr. Okafor", "surgery", true))

	info, err := store.Appointment(context.Background(), "clinic-1", "appt-1")
	if err != nil {
		t.Fatalf("Appointment: %v", err)
	}
	if !info.ScheduledAt.Equal(scheduled) || info.ProviderName != "Dr. Okafor" || !info.Confirmed {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestPatientSearch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := NewPatientStore(mock)

	mock.ExpectQuery("SELECT (.+) FROM owners o").
		WithArgs("clinic-1", "%bis%", 25).
		WillReturnRows(pgxmock.NewRows([]string{"oid", "pid", "oname", "pname", "species"}).
			AddRow("owner-1", "pet-1", "Dana Whitfield", "Biscuit", "dog"))

	results, err := store.Search(context.Background(), "clinic-1", "bis", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Info.PatientName != "Biscuit" {
		t.Fatalf("unexpected results: %+v", results)
	}
}
