package slots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

func newSlotsServer(t *testing.T) (*httptest.Server, *InMemoryRepository) {
	t.Helper()
	repo := NewInMemoryRepository()
	router := chi.NewRouter()
	h := NewHandler(repo, logging.Default())
	router.Get("/api/doctors/{doctorID}/slots", h.ListAvailable)
	router.Post("/api/doctors/{doctorID}/slots", h.Create)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, repo
}

func TestCreateSlot(t *testing.T) {
	server, _ := newSlotsServer(t)
	doctorID := uuid.New()

	resp, err := http.Post(
		server.URL+"/api/doctors/"+doctorID.String()+"/slots",
		"application/json",
		strings.NewReader(`{"date": "2026-09-10", "time": "14:30"}`),
	)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var slot Slot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&slot))
	assert.Equal(t, doctorID, slot.DoctorID)
	assert.True(t, slot.IsAvailable)
}

func TestCreateSlotRejectsBadDate(t *testing.T) {
	server, _ := newSlotsServer(t)

	resp, err := http.Post(
		server.URL+"/api/doctors/"+uuid.NewString()+"/slots",
		"application/json",
		strings.NewReader(`{"date": "next tuesday", "time": "14:30"}`),
	)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandlerListAvailableExcludesReserved(t *testing.T) {
	server, repo := newSlotsServer(t)
	doctorID := uuid.New()
	ctx := context.Background()

	open, err := repo.Create(ctx, doctorID, "2026-09-10", "09:00")
	require.NoError(t, err)
	taken, err := repo.Create(ctx, doctorID, "2026-09-10", "10:00")
	require.NoError(t, err)
	_, err = repo.Reserve(ctx, taken.ID)
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/doctors/" + doctorID.String() + "/slots")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list ListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, open.ID, list.Slots[0].ID)
}

func TestListAvailableDaysWindow(t *testing.T) {
	server, repo := newSlotsServer(t)
	doctorID := uuid.New()
	ctx := context.Background()

	soon := time.Now().UTC().AddDate(0, 0, 2)
	far := time.Now().UTC().AddDate(0, 0, 30)
	_, err := repo.Create(ctx, doctorID, soon.Format("2006-01-02"), "09:00")
	require.NoError(t, err)
	_, err = repo.Create(ctx, doctorID, far.Format("2006-01-02"), "09:00")
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/doctors/" + doctorID.String() + "/slots?days=7")
	require.NoError(t, err)
	defer resp.Body.Close()

	var list ListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Equal(t, 1, list.Count)
}

func TestListAvailableInvalidDoctorID(t *testing.T) {
	server, _ := newSlotsServer(t)

	resp, err := http.Get(server.URL + "/api/doctors/not-a-uuid/slots")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
