package feedback

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Bezzin/HerHealth-Hub-sub000/internal/bookings"
	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// Handler handles HTTP requests for consultation feedback
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new feedback handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// SubmitRequest is the patient's review payload
type SubmitRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// Submit handles POST /api/bookings/{bookingID}/feedback requests
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	f, err := h.service.Submit(r.Context(), bookingID, req.Rating, req.Comment)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(f)
}

// ListByDoctor handles GET /api/doctors/{doctorID}/feedback requests
func (h *Handler) ListByDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
	if err != nil {
		http.Error(w, "invalid doctor id", http.StatusBadRequest)
		return
	}
	result, err := h.service.ListByDoctor(r.Context(), doctorID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"feedback": result, "count": len(result)})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrFeedbackNotFound), errors.Is(err, bookings.ErrBookingNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrFeedbackExists), errors.Is(err, ErrNotCompleted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidRating):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("feedback operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
