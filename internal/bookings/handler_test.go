package bookings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

type handlerFixture struct {
	*fixture
	handler *Handler
	router  *chi.Mux
	now     time.Time
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	f := newFixture(t)
	hf := &handlerFixture{
		fixture: f,
		now:     time.Date(2025, 7, 8, 10, 0, 0, 0, time.UTC),
	}
	hf.handler = NewHandler(f.service, logging.Default()).
		WithClock(func() time.Time { return hf.now })

	r := chi.NewRouter()
	r.Post("/api/bookings", hf.handler.Create)
	r.Get("/api/bookings/{bookingID}", hf.handler.Get)
	r.Post("/api/bookings/{bookingID}/cancel", hf.handler.Cancel)
	r.Post("/api/bookings/{bookingID}/reschedule", hf.handler.Reschedule)
	r.Post("/api/bookings/{bookingID}/complete", hf.handler.Complete)
	r.Get("/api/bookings/{bookingID}/join", hf.handler.Join)
	r.Get("/api/patients/{patientID}/bookings", hf.handler.ListByPatient)
	hf.router = r
	return hf
}

func (f *handlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCreate(t *testing.T) {
	f := newHandlerFixture(t)
	slot := f.slot(t, "2025-07-10", "09:00")

	rec := f.do(t, http.MethodPost, "/api/bookings", CreateRequest{
		PatientID:    uuid.New(),
		SlotID:       slot.ID,
		PatientEmail: "patient@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var booking Booking
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&booking))
	assert.Equal(t, StatusPending, booking.Status)
	assert.Equal(t, slot.ID, booking.SlotID)
}

func TestHandlerCreateConflict(t *testing.T) {
	f := newHandlerFixture(t)
	slot := f.slot(t, "2025-07-10", "09:00")
	f.book(t, slot.ID)

	rec := f.do(t, http.MethodPost, "/api/bookings", CreateRequest{
		PatientID:    uuid.New(),
		SlotID:       slot.ID,
		PatientEmail: "other@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerCreateValidation(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.do(t, http.MethodPost, "/api/bookings", CreateRequest{
		SlotID:       uuid.New(),
		PatientEmail: "p@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerGetNotFound(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.do(t, http.MethodGet, "/api/bookings/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/bookings/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCancelWindow(t *testing.T) {
	f := newHandlerFixture(t)
	slot := f.slot(t, "2025-07-10", "09:00")
	booking := f.book(t, slot.ID)

	// Clock sits inside the 24h cutoff.
	f.now = booking.Start.Add(-2 * time.Hour)
	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/bookings/%s/cancel", booking.ID), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	f.now = booking.Start.Add(-48 * time.Hour)
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/bookings/%s/cancel", booking.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cancelled Booking
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cancelled))
	assert.Equal(t, StatusCancelled, cancelled.Status)
}

func TestHandlerReschedule(t *testing.T) {
	f := newHandlerFixture(t)
	oldSlot := f.slot(t, "2025-07-10", "09:00")
	newSlot := f.slot(t, "2025-07-12", "14:00")
	booking := f.book(t, oldSlot.ID)

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/bookings/%s/reschedule", booking.ID),
		RescheduleRequest{NewSlotID: newSlot.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	var moved Booking
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&moved))
	assert.Equal(t, newSlot.ID, moved.SlotID)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/bookings/%s/reschedule", booking.ID),
		RescheduleRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerJoin(t *testing.T) {
	f := newHandlerFixture(t)
	slot := f.slot(t, "2025-07-10", "09:00")
	booking := f.book(t, slot.ID)
	_, err := f.service.Confirm(context.Background(), booking.ID, "pi_1")
	require.NoError(t, err)

	f.now = booking.Start.Add(-5 * time.Minute)
	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/bookings/%s/join", booking.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp JoinResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.CanJoin)

	f.now = booking.Start.Add(-time.Hour)
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/bookings/%s/join", booking.ID), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlerComplete(t *testing.T) {
	f := newHandlerFixture(t)
	slot := f.slot(t, "2025-07-10", "09:00")
	booking := f.book(t, slot.ID)

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/bookings/%s/complete", booking.ID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	_, err := f.service.Confirm(context.Background(), booking.ID, "pi_1")
	require.NoError(t, err)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/bookings/%s/complete", booking.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlerListByPatient(t *testing.T) {
	f := newHandlerFixture(t)
	slot := f.slot(t, "2025-07-10", "09:00")
	booking := f.book(t, slot.ID)

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/patients/%s/bookings", booking.PatientID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Bookings []*Booking `json:"bookings"`
		Count    int        `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, booking.ID, resp.Bookings[0].ID)
}
