package invites

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inviteColumns = []string{"id", "email", "token", "is_used", "expires_at", "created_at"}

func TestPostgresRedeemCAS(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	now := time.Now().UTC()
	token := "abc123"

	mock.ExpectQuery(`UPDATE doctor_invites`).
		WithArgs(token, now).
		WillReturnRows(pgxmock.NewRows(inviteColumns).
			AddRow(uuid.New(), "dr@example.com", token, true, now.Add(time.Hour), now))

	inv, err := repo.Redeem(context.Background(), token, now)
	require.NoError(t, err)
	assert.True(t, inv.IsUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRedeemAlreadyUsed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	now := time.Now().UTC()
	token := "abc123"

	// CAS matches no row, follow-up read finds the consumed invite.
	mock.ExpectQuery(`UPDATE doctor_invites`).
		WithArgs(token, now).
		WillReturnRows(pgxmock.NewRows(inviteColumns))
	mock.ExpectQuery(`SELECT id, email, token, is_used, expires_at, created_at`).
		WithArgs(token).
		WillReturnRows(pgxmock.NewRows(inviteColumns).
			AddRow(uuid.New(), "dr@example.com", token, true, now.Add(time.Hour), now))

	_, err = repo.Redeem(context.Background(), token, now)
	assert.ErrorIs(t, err, ErrInviteUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRedeemExpired(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	now := time.Now().UTC()
	token := "abc123"

	mock.ExpectQuery(`UPDATE doctor_invites`).
		WithArgs(token, now).
		WillReturnRows(pgxmock.NewRows(inviteColumns))
	mock.ExpectQuery(`SELECT id, email, token, is_used, expires_at, created_at`).
		WithArgs(token).
		WillReturnRows(pgxmock.NewRows(inviteColumns).
			AddRow(uuid.New(), "dr@example.com", token, false, now.Add(-time.Hour), now.Add(-48*time.Hour)))

	_, err = repo.Redeem(context.Background(), token, now)
	assert.ErrorIs(t, err, ErrInviteExpired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRedeemMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`UPDATE doctor_invites`).
		WithArgs("nope", now).
		WillReturnRows(pgxmock.NewRows(inviteColumns))
	mock.ExpectQuery(`SELECT id, email, token, is_used, expires_at, created_at`).
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows(inviteColumns))

	_, err = repo.Redeem(context.Background(), "nope", now)
	assert.ErrorIs(t, err, ErrInviteNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
