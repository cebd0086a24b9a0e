package doctors

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var doctorTestColumns = []string{
	"id", "email", "first_name", "last_name", "qualifications", "experience", "bio",
	"consultation_fee", "stripe_account_id", "created_at", "updated_at",
}

func TestPostgresCreateDoctor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	now := time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC)
	d := &Doctor{
		ID:              uuid.New(),
		Email:           "dr@example.com",
		FirstName:       "Sarah",
		LastName:        "Jones",
		Qualifications:  "MBBS MRCOG",
		Experience:      "10 years in gynaecology",
		ConsultationFee: 6000,
	}

	mock.ExpectQuery(`INSERT INTO doctors`).
		WithArgs(d.ID, d.Email, d.FirstName, d.LastName, d.Qualifications,
			d.Experience, d.Bio, d.ConsultationFee, nullable("")).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, repo.Create(context.Background(), d))
	assert.Equal(t, now, d.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetDoctor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	id := uuid.New()
	now := time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM doctors WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(doctorTestColumns).
			AddRow(id, "dr@example.com", "Sarah", "Jones", "MBBS MRCOG",
				"10 years in gynaecology", "", int64(6000), nullable("acct_123"), now, now))

	d, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Jones", d.LastName)
	assert.Equal(t, "acct_123", d.StripeAccountID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetDoctorMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	id := uuid.New()

	mock.ExpectQuery(`FROM doctors WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(doctorTestColumns))

	_, err = repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateDoctorMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	d := &Doctor{
		ID:              uuid.New(),
		Email:           "dr@example.com",
		FirstName:       "Sarah",
		LastName:        "Jones",
		ConsultationFee: 6000,
		StripeAccountID: "acct_123",
	}

	mock.ExpectQuery(`UPDATE doctors`).
		WithArgs(d.ID, d.Email, d.FirstName, d.LastName, d.Qualifications,
			d.Experience, d.Bio, d.ConsultationFee, nullable("acct_123")).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}))

	err = repo.Update(context.Background(), d)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
