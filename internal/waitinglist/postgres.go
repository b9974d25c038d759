package waitinglist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies
// it in tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores waiting-list entries in the relational database.
type PostgresRepository struct {
	db  DB
	now func() time.Time
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("waitinglist: pgx pool required")
	}
	return &PostgresRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the wall clock, for tests.
func (r *PostgresRepository) WithClock(now func() time.Time) *PostgresRepository {
	if now != nil {
		r.now = now
	}
	return r
}

const entryColumns = `id, clinic_id, patient_id, pet_id, appointment_id, priority, reason, notes,
	estimated_duration, status, checked_in_at, attending_at, completed_at, created_at, updated_at`

// Add validates the request and inserts a new row, checked in as waiting or
// placed ahead of arrival as scheduled.
func (r *PostgresRepository) Add(ctx context.Context, req *CheckInRequest) (*Entry, error) {
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

	query := `
		INSERT INTO waiting_list (id, clinic_id, patient_id, pet_id, appointment_id, priority,
			reason, notes, estimated_duration, status, checked_in_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	if _, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.ClinicID,
		entry.PatientID,
		entry.PetID,
		nullIfEmpty(entry.AppointmentID),
		string(entry.Priority),
		entry.Reason,
		entry.Notes,
		entry.EstimatedDuration,
		string(entry.Status),
		entry.CheckedInAt,
		now,
		now,
	); err != nil {
		return nil, fmt.Errorf("waitinglist: insert entry: %w", err)
	}
	return entry, nil
}

// Get returns the entry scoped to the clinic.
func (r *PostgresRepository) Get(ctx context.Context, clinicID, id string) (*Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM waiting_list WHERE id = $1 AND clinic_id = $2`, entryColumns)
	entry, err := scanEntry(r.db.QueryRow(ctx, query, id, clinicID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("waitinglist: select entry: %w", err)
	}
	return entry, nil
}

// List returns the clinic's entries matching the filter, oldest first.
func (r *PostgresRepository) List(ctx context.Context, clinicID string, filter ListFilter) ([]*Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM waiting_list WHERE clinic_id = $1`, entryColumns)
	args := []any{clinicID}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}
	if filter.Day != nil {
		args = append(args, filter.Day.UTC())
		query += fmt.Sprintf(" AND date(COALESCE(checked_in_at, created_at)) = date($%d)", len(args))
	}
	query += " ORDER BY created_at"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("waitinglist: list entries: %w", err)
	}
	defer rows.Close()

	out := make([]*Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("waitinglist: scan entry: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("waitinglist: list entries: %w", err)
	}
	return out, nil
}

// UpdateStatus applies a state-machine transition against the row's current
// persisted status. The row is locked for the duration of the check so a
// stale client gets ErrInvalidTransition instead of clobbering the entry.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, clinicID, id string, to Status) (*Entry, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("waitinglist: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf(`SELECT %s FROM waiting_list WHERE id = $1 AND clinic_id = $2 FOR UPDATE`, entryColumns)
	entry, err := scanEntry(tx.QueryRow(ctx, query, id, clinicID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("waitinglist: select for update: %w", err)
	}

	if entry.Status == to {
		// Idempotent no-op; nothing to write.
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("waitinglist: commit: %w", err)
		}
		return entry, nil
	}
	if err := ApplyTransition(entry, to, r.now()); err != nil {
		return nil, err
	}

	update := `
		UPDATE waiting_list
		SET status = $1, checked_in_at = $2, attending_at = $3, completed_at = $4, updated_at = $5
		WHERE id = $6 AND clinic_id = $7
	`
	if _, err := tx.Exec(ctx, update,
		string(entry.Status),
		entry.CheckedInAt,
		entry.AttendingAt,
		entry.CompletedAt,
		entry.UpdatedAt,
		entry.ID,
		entry.ClinicID,
	); err != nil {
		return nil, fmt.Errorf("waitinglist: update status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("waitinglist: commit: %w", err)
	}
	return entry, nil
}

// UpdatePriority changes priority on a non-terminal entry.
func (r *PostgresRepository) UpdatePriority(ctx context.Context, clinicID, id string, priority Priority) (*Entry, error) {
	query := fmt.Sprintf(`
		UPDATE waiting_list
		SET priority = $1, updated_at = $2
		WHERE id = $3 AND clinic_id = $4 AND status NOT IN ('completed', 'no_show', 'cancelled')
		RETURNING %s`, entryColumns)
	entry, err := scanEntry(r.db.QueryRow(ctx, query, string(priority), r.now(), id, clinicID))
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("waitinglist: update priority: %w", err)
	}

	// Nothing updated: distinguish a missing row from a terminal one.
	var status string
	lookup := `SELECT status FROM waiting_list WHERE id = $1 AND clinic_id = $2`
	if err := r.db.QueryRow(ctx, lookup, id, clinicID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("waitinglist: priority lookup: %w", err)
	}
	return nil, ErrTerminalEntry
}

// Remove deletes the entry. Removing an absent id is a no-op.
func (r *PostgresRepository) Remove(ctx context.Context, clinicID, id string) error {
	query := `DELETE FROM waiting_list WHERE id = $1 AND clinic_id = $2`
	if _, err := r.db.Exec(ctx, query, id, clinicID); err != nil {
		return fmt.Errorf("waitinglist: delete entry: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry         Entry
		appointmentID sql.NullString
		priority      string
		status        string
		checkedInAt   sql.NullTime
		attendingAt   sql.NullTime
		completedAt   sql.NullTime
	)
	if err := row.Scan(
		&entry.ID,
		&entry.ClinicID,
		&entry.PatientID,
		&entry.PetID,
		&appointmentID,
		&priority,
		&entry.Reason,
		&entry.Notes,
		&entry.EstimatedDuration,
		&status,
		&checkedInAt,
		&attendingAt,
		&completedAt,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	); err != nil {
		return nil, err
	}
	entry.AppointmentID = appointmentID.String
	entry.Priority = Priority(priority)
	entry.Status = Status(status)
	entry.CheckedInAt = nullTimePtr(checkedInAt)
	entry.AttendingAt = nullTimePtr(attendingAt)
	entry.CompletedAt = nullTimePtr(completedAt)
	return &entry, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
