package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores slots in the relational database.
//
// Reserve is a compare-and-swap on is_available, so the exclusive-claim
// guarantee holds across concurrent processes.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("slots: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new available slot.
func (r *PostgresRepository) Create(ctx context.Context, doctorID uuid.UUID, date, timeOfDay string) (*Slot, error) {
	if err := ValidateDateTime(date, timeOfDay); err != nil {
		return nil, err
	}

	slot := &Slot{
		ID:          uuid.New(),
		DoctorID:    doctorID,
		Date:        date,
		Time:        timeOfDay,
		IsAvailable: true,
	}
	query := `
		INSERT INTO slots (id, doctor_id, date, time, is_available)
		VALUES ($1, $2, $3, $4, true)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query, slot.ID, doctorID, date, timeOfDay).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("slots: insert failed: %w", err)
	}
	slot.CreatedAt = createdAt
	return slot, nil
}

// Get fetches a slot by id.
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*Slot, error) {
	query := `
		SELECT id, doctor_id, date, time, is_available, created_at
		FROM slots
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// ListAvailable returns a doctor's open slots ordered by (date, time) ascending.
func (r *PostgresRepository) ListAvailable(ctx context.Context, doctorID uuid.UUID) ([]*Slot, error) {
	query := `
		SELECT id, doctor_id, date, time, is_available, created_at
		FROM slots
		WHERE doctor_id = $1 AND is_available = true
		ORDER BY date ASC, time ASC
	`
	rows, err := r.db.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("slots: list available: %w", err)
	}
	defer rows.Close()

	var result []*Slot
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.DoctorID, &s.Date, &s.Time, &s.IsAvailable, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("slots: scan: %w", err)
		}
		result = append(result, &s)
	}
	return result, rows.Err()
}

// Reserve claims a slot. The WHERE clause doubles as the availability check,
// so two concurrent claims can never both succeed.
func (r *PostgresRepository) Reserve(ctx context.Context, id uuid.UUID) (*Slot, error) {
	query := `
		UPDATE slots SET is_available = false
		WHERE id = $1 AND is_available = true
		RETURNING id, doctor_id, date, time, is_available, created_at
	`
	slot, err := r.scanOne(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, ErrSlotNotFound) {
		// Distinguish a missing slot from an already-claimed one.
		if _, getErr := r.Get(ctx, id); getErr == nil {
			return nil, ErrSlotTaken
		}
		return nil, ErrSlotNotFound
	}
	return slot, err
}

// Release reopens a slot. Idempotent: releasing an available slot succeeds.
func (r *PostgresRepository) Release(ctx context.Context, id uuid.UUID) (*Slot, error) {
	query := `
		UPDATE slots SET is_available = true
		WHERE id = $1
		RETURNING id, doctor_id, date, time, is_available, created_at
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Slot, error) {
	var s Slot
	if err := row.Scan(&s.ID, &s.DoctorID, &s.Date, &s.Time, &s.IsAvailable, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("slots: select failed: %w", err)
	}
	return &s, nil
}
