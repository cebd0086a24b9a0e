package doctors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Bezzin/HerHealth-Hub-sub000/internal/invites"
	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// Handler handles HTTP requests for doctor onboarding and profiles
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new doctors handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// CompleteOnboarding handles POST /api/onboarding/{token} requests
func (h *Handler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	var req OnboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	doctor, err := h.service.CompleteOnboarding(r.Context(), chi.URLParam(r, "token"), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(doctor)
}

// Get handles GET /api/doctors/{doctorID} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "doctorID"))
	if err != nil {
		http.Error(w, "invalid doctor id", http.StatusBadRequest)
		return
	}
	doctor, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doctor)
}

// List handles GET /api/doctors requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"doctors": result, "count": len(result)})
}

// StripeAccountRequest links a connected payout account
type StripeAccountRequest struct {
	StripeAccountID string `json:"stripe_account_id"`
}

// SetStripeAccount handles POST /api/doctors/{doctorID}/stripe-account requests
func (h *Handler) SetStripeAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "doctorID"))
	if err != nil {
		http.Error(w, "invalid doctor id", http.StatusBadRequest)
		return
	}
	var req StripeAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.StripeAccountID == "" {
		http.Error(w, "stripe_account_id is required", http.StatusBadRequest)
		return
	}

	doctor, err := h.service.SetStripeAccount(r.Context(), id, req.StripeAccountID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doctor)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDoctorNotFound), errors.Is(err, invites.ErrInviteNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, invites.ErrInviteUsed), errors.Is(err, invites.ErrInviteExpired):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrMissingName), errors.Is(err, ErrInvalidFee):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("doctor operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
