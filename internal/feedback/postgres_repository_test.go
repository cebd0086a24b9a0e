package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var feedbackTestColumns = []string{"id", "booking_id", "doctor_id", "rating", "comment", "created_at"}

func TestPostgresCreateFeedback(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	now := time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC)
	f := &Feedback{
		ID:        uuid.New(),
		BookingID: uuid.New(),
		DoctorID:  uuid.New(),
		Rating:    5,
		Comment:   "Very thorough",
	}

	mock.ExpectQuery(`INSERT INTO feedback`).
		WithArgs(f.ID, f.BookingID, f.DoctorID, f.Rating, f.Comment).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	require.NoError(t, repo.Create(context.Background(), f))
	assert.Equal(t, now, f.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateFeedbackDuplicateBooking(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	f := &Feedback{
		ID:        uuid.New(),
		BookingID: uuid.New(),
		DoctorID:  uuid.New(),
		Rating:    4,
	}

	// The booking_id unique constraint turns a second submission into
	// ErrFeedbackExists.
	mock.ExpectQuery(`INSERT INTO feedback`).
		WithArgs(f.ID, f.BookingID, f.DoctorID, f.Rating, f.Comment).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	err = repo.Create(context.Background(), f)
	assert.ErrorIs(t, err, ErrFeedbackExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByBookingMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	bookingID := uuid.New()

	mock.ExpectQuery(`FROM feedback`).
		WithArgs(bookingID).
		WillReturnRows(pgxmock.NewRows(feedbackTestColumns))

	_, err = repo.GetByBooking(context.Background(), bookingID)
	assert.ErrorIs(t, err, ErrFeedbackNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListByDoctorNewestFirst(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	doctorID := uuid.New()
	now := time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC)
	newer, older := uuid.New(), uuid.New()

	mock.ExpectQuery(`ORDER BY created_at DESC`).
		WithArgs(doctorID).
		WillReturnRows(pgxmock.NewRows(feedbackTestColumns).
			AddRow(newer, uuid.New(), doctorID, 5, "Great", now).
			AddRow(older, uuid.New(), doctorID, 3, "Fine", now.Add(-time.Hour)))

	got, err := repo.ListByDoctor(context.Background(), doctorID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer, got[0].ID)
	assert.Equal(t, older, got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
