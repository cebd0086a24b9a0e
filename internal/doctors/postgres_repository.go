package doctors

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

const doctorColumns = `id, email, first_name, last_name, qualifications, experience, bio,
	consultation_fee, stripe_account_id, created_at, updated_at`

// PostgresRepository stores doctors in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("doctors: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new doctor.
func (r *PostgresRepository) Create(ctx context.Context, d *Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	query := `
		INSERT INTO doctors (id, email, first_name, last_name, qualifications, experience, bio,
			consultation_fee, stripe_account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		d.ID, d.Email, d.FirstName, d.LastName, d.Qualifications, d.Experience, d.Bio,
		d.ConsultationFee, nullable(d.StripeAccountID),
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("doctors: insert failed: %w", err)
	}
	return nil
}

// Get fetches a doctor by id.
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1`
	return scanDoctor(r.db.QueryRow(ctx, query, id))
}

// Update overwrites a stored doctor's mutable fields.
func (r *PostgresRepository) Update(ctx context.Context, d *Doctor) error {
	query := `
		UPDATE doctors
		SET email = $2, first_name = $3, last_name = $4, qualifications = $5,
			experience = $6, bio = $7, consultation_fee = $8, stripe_account_id = $9,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		d.ID, d.Email, d.FirstName, d.LastName, d.Qualifications, d.Experience, d.Bio,
		d.ConsultationFee, nullable(d.StripeAccountID),
	).Scan(&d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDoctorNotFound
	}
	if err != nil {
		return fmt.Errorf("doctors: update failed: %w", err)
	}
	return nil
}

// List returns all doctors ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]*Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors ORDER BY last_name ASC, first_name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("doctors: list failed: %w", err)
	}
	defer rows.Close()

	var result []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var stripeAccountID *string
	err := row.Scan(&d.ID, &d.Email, &d.FirstName, &d.LastName, &d.Qualifications,
		&d.Experience, &d.Bio, &d.ConsultationFee, &stripeAccountID, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("doctors: scan failed: %w", err)
	}
	if stripeAccountID != nil {
		d.StripeAccountID = *stripeAccountID
	}
	return &d, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
