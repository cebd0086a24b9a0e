package bookings

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

const bookingColumns = `id, patient_id, doctor_id, slot_id, appointment_date, appointment_time,
	appointment_start, reason, patient_email, patient_phone, symptom_summary, status,
	payment_intent_id, reminders_sent, rescheduled_at, created_at, updated_at`

// PostgresRepository stores bookings in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("bookings: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new booking row.
func (r *PostgresRepository) Create(ctx context.Context, b *Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	query := `
		INSERT INTO bookings (id, patient_id, doctor_id, slot_id, appointment_date,
			appointment_time, appointment_start, reason, patient_email, patient_phone,
			symptom_summary, status, payment_intent_id, reminders_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		b.ID, b.PatientID, b.DoctorID, b.SlotID, b.AppointmentDate,
		b.AppointmentTime, b.Start, b.Reason, b.PatientEmail, b.PatientPhone,
		b.SymptomSummary, string(b.Status), nullable(b.PaymentIntentID), b.RemindersSent,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("bookings: insert failed: %w", err)
	}
	return nil
}

// Get fetches a booking by id.
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.db.QueryRow(ctx, query, id))
}

// Update persists status/slot/payment changes.
func (r *PostgresRepository) Update(ctx context.Context, b *Booking) error {
	query := `
		UPDATE bookings SET
			slot_id = $2, appointment_date = $3, appointment_time = $4,
			appointment_start = $5, status = $6, payment_intent_id = $7,
			reminders_sent = $8, rescheduled_at = $9, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		b.ID, b.SlotID, b.AppointmentDate, b.AppointmentTime,
		b.Start, string(b.Status), nullable(b.PaymentIntentID),
		b.RemindersSent, b.RescheduledAt,
	).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("bookings: update failed: %w", err)
	}
	return nil
}

// ListByPatient returns a patient's bookings, most recent appointment first.
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE patient_id = $1 ORDER BY appointment_start DESC`
	return r.queryMany(ctx, query, patientID)
}

// ListByDoctor returns a doctor's bookings, most recent appointment first.
func (r *PostgresRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE doctor_id = $1 ORDER BY appointment_start DESC`
	return r.queryMany(ctx, query, doctorID)
}

// ListDueReminders selects confirmed, unreminded bookings starting in [from, to].
func (r *PostgresRepository) ListDueReminders(ctx context.Context, from, to time.Time) ([]*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE status = 'confirmed' AND reminders_sent = false
			AND appointment_start >= $1 AND appointment_start <= $2
		ORDER BY appointment_start ASC`
	return r.queryMany(ctx, query, from, to)
}

// MarkRemindersSent flips the flag; already-sent rows are left untouched.
func (r *PostgresRepository) MarkRemindersSent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bookings SET reminders_sent = true, updated_at = now()
		WHERE id = $1 AND reminders_sent = false`, id)
	if err != nil {
		return fmt.Errorf("bookings: mark reminders sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either missing or already sent; verify existence.
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]*Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("bookings: query: %w", err)
	}
	defer rows.Close()

	var result []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var status string
	var paymentIntentID *string
	err := row.Scan(
		&b.ID, &b.PatientID, &b.DoctorID, &b.SlotID, &b.AppointmentDate, &b.AppointmentTime,
		&b.Start, &b.Reason, &b.PatientEmail, &b.PatientPhone, &b.SymptomSummary, &status,
		&paymentIntentID, &b.RemindersSent, &b.RescheduledAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("bookings: scan: %w", err)
	}
	b.Status = Status(status)
	if paymentIntentID != nil {
		b.PaymentIntentID = *paymentIntentID
	}
	return &b, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
