package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a referenced record does not exist in the
// caller's clinic.
var ErrNotFound = errors.New("record not found")

// DB is the subset of pgxpool.Pool the lookup stores need.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PatientStore reads owner/pet display data from the relational database.
type PatientStore struct {
	db DB
}

func NewPatientStore(db DB) *PatientStore {
	if db == nil {
		panic("directory: pgx pool required")
	}
	return &PatientStore{db: db}
}

// Patient returns the joined owner + pet view scoped to the clinic.
func (s *PatientStore) Patient(ctx context.Context, clinicID, patientID, petID string) (*PatientInfo, error) {
	query := `
		SELECT o.name, o.phone, o.email, p.name, p.species, p.breed, COALESCE(p.photo_url, '')
		FROM owners o
		JOIN pets p ON p.owner_id = o.id
		WHERE o.clinic_id = $1 AND o.id = $2 AND p.id = $3
	`
	var (
		info  PatientInfo
		phone sql.NullString
		email sql.NullString
		breed sql.NullString
	)
	row := s.db.QueryRow(ctx, query, clinicID, patientID, petID)
	if err := row.Scan(&info.OwnerName, &phone, &email, &info.PatientName, &info.Species, &breed, &info.PhotoURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("directory: select patient: %w", err)
	}
	info.Phone = phone.String
	info.Email = email.String
	info.Breed = breed.String
	return &info, nil
}

// SearchResult is one hit from a free-text patient search.
type SearchResult struct {
	PatientID string      `json:"patient_id"`
	PetID     string      `json:"pet_id"`
	Info      PatientInfo `json:"info"`
}

// Search matches owner or pet names case-insensitively.
func (s *PatientStore) Search(ctx context.Context, clinicID, q string, limit int) ([]SearchResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	query := `
		SELECT o.id, p.id, o.name, p.name, p.species
		FROM owners o
		JOIN pets p ON p.owner_id = o.id
		WHERE o.clinic_id = $1 AND (o.name ILIKE $2 OR p.name ILIKE $2)
		ORDER BY o.name, p.name
		LIMIT $3
	`
	rows, err := s.db.Query(ctx, query, clinicID, "%"+q+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("directory: search patients: %w", err)
	}
	defer rows.Close()

	out := make([]SearchResult, 0)
	for rows.Next() {
		var res SearchResult
		if err := rows.Scan(&res.PatientID, &res.PetID, &res.Info.OwnerName, &res.Info.PatientName, &res.Info.Species); err != nil {
			return nil, fmt.Errorf("directory: scan search row: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: search patients: %w", err)
	}
	return out, nil
}

// AppointmentStore reads appointment display data from the relational database.
type AppointmentStore struct {
	db DB
}

func NewAppointmentStore(db DB) *AppointmentStore {
	if db == nil {
		panic("directory: pgx pool required")
	}
	return &AppointmentStore{db: db}
}

// Appointment returns the appointment record scoped to the clinic.
func (s *AppointmentStore) Appointment(ctx context.Context, clinicID, appointmentID string) (*AppointmentInfo, error) {
	query := `
		SELECT a.scheduled_at, a.provider_id, COALESCE(pr.name, ''), a.appt_type, a.confirmed
		FROM appointments a
		LEFT JOIN providers pr ON pr.id = a.provider_id
		WHERE a.clinic_id = $1 AND a.id = $2
	`
	var info AppointmentInfo
	row := s.db.QueryRow(ctx, query, clinicID, appointmentID)
	if err := row.Scan(&info.ScheduledAt, &info.ProviderID, &info.ProviderName, &info.Type, &info.Confirmed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("directory: select appointment: %w", err)
	}
	return &info, nil
}
