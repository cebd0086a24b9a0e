package feedback

import (
	"context"
	"errors"
	"fmt"

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

// uniqueViolation is the Postgres error code raised by the booking_id
// unique constraint.
const uniqueViolation = "23505"

// PostgresRepository stores feedback in the relational database. The
// one-per-booking guarantee rides on the booking_id unique constraint.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("feedback: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts feedback, translating a duplicate booking into ErrFeedbackExists.
func (r *PostgresRepository) Create(ctx context.Context, f *Feedback) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	query := `
		INSERT INTO feedback (id, booking_id, doctor_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, f.ID, f.BookingID, f.DoctorID, f.Rating, f.Comment).Scan(&f.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrFeedbackExists
	}
	if err != nil {
		return fmt.Errorf("feedback: insert failed: %w", err)
	}
	return nil
}

// GetByBooking returns the feedback for a booking, if any.
func (r *PostgresRepository) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*Feedback, error) {
	query := `
		SELECT id, booking_id, doctor_id, rating, comment, created_at
		FROM feedback
		WHERE booking_id = $1
	`
	var f Feedback
	err := r.db.QueryRow(ctx, query, bookingID).
		Scan(&f.ID, &f.BookingID, &f.DoctorID, &f.Rating, &f.Comment, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFeedbackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("feedback: scan failed: %w", err)
	}
	return &f, nil
}

// ListByDoctor returns a doctor's feedback, newest first.
func (r *PostgresRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Feedback, error) {
	query := `
		SELECT id, booking_id, doctor_id, rating, comment, created_at
		FROM feedback
		WHERE doctor_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("feedback: list failed: %w", err)
	}
	defer rows.Close()

	var result []*Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.BookingID, &f.DoctorID, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("feedback: scan failed: %w", err)
		}
		result = append(result, &f)
	}
	return result, rows.Err()
}
