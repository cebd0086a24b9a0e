package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBooking(t *testing.T, repo *InMemoryRepository, status Status, start time.Time, remindersSent bool) *Booking {
	t.Helper()
	b := &Booking{
		ID:              uuid.New(),
		PatientID:       uuid.New(),
		DoctorID:        uuid.New(),
		SlotID:          uuid.New(),
		AppointmentDate: start.Format("2006-01-02"),
		AppointmentTime: start.Format("15:04"),
		Start:           start,
		PatientEmail:    "patient@example.com",
		Status:          status,
		RemindersSent:   remindersSent,
	}
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

func TestInMemoryGetReturnsCopy(t *testing.T) {
	repo := NewInMemoryRepository()
	b := seedBooking(t, repo, StatusPending, time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC), false)

	got, err := repo.Get(context.Background(), b.ID)
	require.NoError(t, err)
	got.Status = StatusCancelled

	again, err := repo.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, again.Status)
}

func TestInMemoryGetMissing(t *testing.T) {
	repo := NewInMemoryRepository()
	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListByPatientMostRecentFirst(t *testing.T) {
	repo := NewInMemoryRepository()
	patientID := uuid.New()
	later := seedBooking(t, repo, StatusPending, time.Date(2025, 7, 12, 9, 0, 0, 0, time.UTC), false)
	later.PatientID = patientID
	require.NoError(t, repo.Update(context.Background(), later))
	earlier := seedBooking(t, repo, StatusPending, time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC), false)
	earlier.PatientID = patientID
	require.NoError(t, repo.Update(context.Background(), earlier))

	got, err := repo.ListByPatient(context.Background(), patientID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, later.ID, got[0].ID)
	assert.Equal(t, earlier.ID, got[1].ID)
}

func TestListDueReminders(t *testing.T) {
	repo := NewInMemoryRepository()
	now := time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC)
	from, to := now.Add(23*time.Hour), now.Add(25*time.Hour)

	due := seedBooking(t, repo, StatusConfirmed, now.Add(24*time.Hour), false)
	atLower := seedBooking(t, repo, StatusConfirmed, from, false)
	atUpper := seedBooking(t, repo, StatusConfirmed, to, false)
	tooSoon := seedBooking(t, repo, StatusConfirmed, now.Add(22*time.Hour), false)
	tooFar := seedBooking(t, repo, StatusConfirmed, now.Add(26*time.Hour), false)
	pending := seedBooking(t, repo, StatusPending, now.Add(24*time.Hour), false)
	cancelled := seedBooking(t, repo, StatusCancelled, now.Add(24*time.Hour), false)
	alreadySent := seedBooking(t, repo, StatusConfirmed, now.Add(24*time.Hour), true)

	got, err := repo.ListDueReminders(context.Background(), from, to)
	require.NoError(t, err)

	ids := make(map[uuid.UUID]bool, len(got))
	for _, b := range got {
		ids[b.ID] = true
	}
	assert.True(t, ids[due.ID])
	assert.True(t, ids[atLower.ID])
	assert.True(t, ids[atUpper.ID])
	assert.False(t, ids[tooSoon.ID])
	assert.False(t, ids[tooFar.ID])
	assert.False(t, ids[pending.ID])
	assert.False(t, ids[cancelled.ID])
	assert.False(t, ids[alreadySent.ID])
}

func TestMarkRemindersSent(t *testing.T) {
	repo := NewInMemoryRepository()
	b := seedBooking(t, repo, StatusConfirmed, time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC), false)

	require.NoError(t, repo.MarkRemindersSent(context.Background(), b.ID))
	got, err := repo.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.True(t, got.RemindersSent)

	// Second mark is a no-op, not an error.
	assert.NoError(t, repo.MarkRemindersSent(context.Background(), b.ID))

	assert.ErrorIs(t, repo.MarkRemindersSent(context.Background(), uuid.New()), ErrBookingNotFound)
}
