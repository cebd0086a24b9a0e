package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bezzin/HerHealth-Hub-sub000/internal/bookings"
	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

func newFeedbackService(t *testing.T) (*Service, *bookings.Booking) {
	t.Helper()
	bookingRepo := bookings.NewInMemoryRepository()
	b := &bookings.Booking{
		ID:           uuid.New(),
		PatientID:    uuid.New(),
		DoctorID:     uuid.New(),
		SlotID:       uuid.New(),
		Start:        time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC),
		PatientEmail: "patient@example.com",
		Status:       bookings.StatusCompleted,
	}
	require.NoError(t, bookingRepo.Create(context.Background(), b))
	return NewService(NewInMemoryRepository(), bookingRepo, logging.Default()), b
}

func TestSubmitOnce(t *testing.T) {
	service, booking := newFeedbackService(t)

	f, err := service.Submit(context.Background(), booking.ID, 5, "very helpful")
	require.NoError(t, err)
	assert.Equal(t, booking.DoctorID, f.DoctorID)
	assert.Equal(t, 5, f.Rating)

	_, err = service.Submit(context.Background(), booking.ID, 4, "second try")
	assert.ErrorIs(t, err, ErrFeedbackExists)
}

func TestSubmitRequiresCompletedBooking(t *testing.T) {
	service, booking := newFeedbackService(t)
	bookingRepo := service.bookings.(*bookings.InMemoryRepository)

	booking.Status = bookings.StatusConfirmed
	require.NoError(t, bookingRepo.Update(context.Background(), booking))

	_, err := service.Submit(context.Background(), booking.ID, 5, "")
	assert.ErrorIs(t, err, ErrNotCompleted)
}

func TestSubmitValidatesRating(t *testing.T) {
	service, booking := newFeedbackService(t)

	for _, rating := range []int{0, 6, -1} {
		_, err := service.Submit(context.Background(), booking.ID, rating, "")
		assert.ErrorIs(t, err, ErrInvalidRating)
	}
}

func TestSubmitUnknownBooking(t *testing.T) {
	service, _ := newFeedbackService(t)
	_, err := service.Submit(context.Background(), uuid.New(), 5, "")
	assert.ErrorIs(t, err, bookings.ErrBookingNotFound)
}

func TestListByDoctor(t *testing.T) {
	service, booking := newFeedbackService(t)
	_, err := service.Submit(context.Background(), booking.ID, 4, "good")
	require.NoError(t, err)

	list, err := service.ListByDoctor(context.Background(), booking.DoctorID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, booking.ID, list[0].BookingID)

	empty, err := service.ListByDoctor(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
