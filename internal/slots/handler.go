package slots

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// Handler handles HTTP requests for doctor availability slots
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new slots handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// ListResponse is the response for listing a doctor's available slots
type ListResponse struct {
	Slots []*Slot `json:"slots"`
	Count int     `json:"count"`
}

// ListAvailable handles GET /api/doctors/{doctorID}/slots requests.
// An optional ?days=N query narrows the result to a rolling window.
func (h *Handler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
	if err != nil {
		http.Error(w, "invalid doctor id", http.StatusBadRequest)
		return
	}

	available, err := h.repo.ListAvailable(r.Context(), doctorID)
	if err != nil {
		h.logger.Error("failed to list slots", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to list slots", http.StatusInternalServerError)
		return
	}

	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		if days, err := strconv.Atoi(daysStr); err == nil && days > 0 {
			available = filterWindow(available, time.Now().UTC(), days)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{Slots: available, Count: len(available)})
}

// CreateRequest is the payload for publishing availability
type CreateRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Create handles POST /api/doctors/{doctorID}/slots requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
	if err != nil {
		http.Error(w, "invalid doctor id", http.StatusBadRequest)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	slot, err := h.repo.Create(r.Context(), doctorID, req.Date, req.Time)
	if err != nil {
		if errors.Is(err, ErrInvalidDate) || errors.Is(err, ErrInvalidTime) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create slot", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to create slot", http.StatusInternalServerError)
		return
	}

	h.logger.Info("slot created", "id", slot.ID, "doctor_id", doctorID, "date", slot.Date, "time", slot.Time)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(slot)
}

func filterWindow(in []*Slot, now time.Time, days int) []*Slot {
	cutoff := now.AddDate(0, 0, days)
	out := make([]*Slot, 0, len(in))
	for _, s := range in {
		start, err := s.StartTime()
		if err != nil {
			continue
		}
		if !start.Before(now) && start.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}
