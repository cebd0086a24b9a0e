package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Bezzin/HerHealth-Hub-sub000/internal/slots"
	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// Handler handles HTTP requests for the booking lifecycle
type Handler struct {
	service *Service
	logger  *logging.Logger
	now     func() time.Time
}

// NewHandler creates a new bookings handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the handler clock (for tests).
func (h *Handler) WithClock(now func() time.Time) *Handler {
	if now != nil {
		h.now = now
	}
	return h
}

// Create handles POST /api/bookings requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	booking, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(booking)
}

// Get handles GET /api/bookings/{bookingID} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookingID(w, r)
	if !ok {
		return
	}
	booking, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(booking)
}

// ListByPatient handles GET /api/patients/{patientID}/bookings requests
func (h *Handler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	h.listBy(w, r, "patientID", h.service.ListByPatient)
}

// ListByDoctor handles GET /api/doctors/{doctorID}/bookings requests
func (h *Handler) ListByDoctor(w http.ResponseWriter, r *http.Request) {
	h.listBy(w, r, "doctorID", h.service.ListByDoctor)
}

// Cancel handles POST /api/bookings/{bookingID}/cancel requests
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookingID(w, r)
	if !ok {
		return
	}
	booking, err := h.service.Cancel(r.Context(), id, h.now())
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(booking)
}

// RescheduleRequest is the payload for moving a booking to a new slot
type RescheduleRequest struct {
	NewSlotID uuid.UUID `json:"new_slot_id"`
}

// Reschedule handles POST /api/bookings/{bookingID}/reschedule requests
func (h *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookingID(w, r)
	if !ok {
		return
	}
	var req RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.NewSlotID == uuid.Nil {
		http.Error(w, "new_slot_id is required", http.StatusBadRequest)
		return
	}

	booking, err := h.service.Reschedule(r.Context(), id, req.NewSlotID, h.now())
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(booking)
}

// Complete handles POST /api/bookings/{bookingID}/complete requests
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookingID(w, r)
	if !ok {
		return
	}
	booking, err := h.service.MarkCompleted(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(booking)
}

// JoinResponse reports join eligibility for the video consultation
type JoinResponse struct {
	CanJoin bool      `json:"can_join"`
	Booking *Booking  `json:"booking"`
	Now     time.Time `json:"now"`
}

// Join handles GET /api/bookings/{bookingID}/join requests
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookingID(w, r)
	if !ok {
		return
	}
	now := h.now()
	booking, err := h.service.CanJoin(r.Context(), id, now)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(JoinResponse{CanJoin: true, Booking: booking, Now: now})
}

func (h *Handler) listBy(w http.ResponseWriter, r *http.Request, param string, list func(ctx context.Context, id uuid.UUID) ([]*Booking, error)) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	result, err := list(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"bookings": result, "count": len(result)})
}

func (h *Handler) bookingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps domain errors onto HTTP statuses: validation → 400,
// not-found → 404, conflicts → 409, policy rejections → 422.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, slots.ErrSlotNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, slots.ErrSlotTaken), errors.Is(err, ErrNotModifiable),
		errors.Is(err, ErrAlreadyFinal), errors.Is(err, ErrNotConfirmed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrModificationWindow), errors.Is(err, ErrJoinWindow):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrMissingPatient), errors.Is(err, ErrMissingContact):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("booking operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
