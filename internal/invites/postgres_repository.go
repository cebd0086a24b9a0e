package invites

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

// PostgresRepository stores invites in the relational database. Redemption is
// a compare-and-swap on is_used so the redeem-at-most-once guarantee holds
// across concurrent processes.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("invites: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new invite.
func (r *PostgresRepository) Create(ctx context.Context, inv *Invite) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	query := `
		INSERT INTO doctor_invites (id, email, token, is_used, expires_at)
		VALUES ($1, $2, $3, false, $4)
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query, inv.ID, inv.Email, inv.Token, inv.ExpiresAt).Scan(&inv.CreatedAt); err != nil {
		return fmt.Errorf("invites: insert failed: %w", err)
	}
	return nil
}

// GetByToken retrieves an invite without consuming it.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*Invite, error) {
	query := `
		SELECT id, email, token, is_used, expires_at, created_at
		FROM doctor_invites
		WHERE token = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, token))
}

// Redeem consumes the token with a CAS on is_used. When the update matches no
// row, a follow-up read distinguishes used, expired and missing tokens.
func (r *PostgresRepository) Redeem(ctx context.Context, token string, now time.Time) (*Invite, error) {
	query := `
		UPDATE doctor_invites
		SET is_used = true
		WHERE token = $1 AND is_used = false AND expires_at > $2
		RETURNING id, email, token, is_used, expires_at, created_at
	`
	inv, err := r.scanOne(r.db.QueryRow(ctx, query, token, now))
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, ErrInviteNotFound) {
		return nil, err
	}

	existing, getErr := r.GetByToken(ctx, token)
	if getErr != nil {
		return nil, getErr
	}
	if existing.IsUsed {
		return nil, ErrInviteUsed
	}
	return nil, ErrInviteExpired
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Invite, error) {
	var inv Invite
	err := row.Scan(&inv.ID, &inv.Email, &inv.Token, &inv.IsUsed, &inv.ExpiresAt, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invites: scan failed: %w", err)
	}
	return &inv, nil
}
