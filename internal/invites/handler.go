package invites

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// Handler handles HTTP requests for invite issuance and preview
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new invites handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// CreateRequest is the admin payload for issuing an invite
type CreateRequest struct {
	Email string `json:"email"`
}

// Create handles POST /admin/invites requests (admin JWT required upstream)
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	inv, err := h.service.Create(r.Context(), req.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(inv)
}

// PreviewResponse exposes only what the onboarding form needs; the token is
// already in the caller's hands and the rest stays server-side.
type PreviewResponse struct {
	Email     string `json:"email"`
	ExpiresAt string `json:"expires_at"`
}

// Preview handles GET /api/invites/{token} requests
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Preview(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(PreviewResponse{
		Email:     inv.Email,
		ExpiresAt: inv.ExpiresAt.Format(time.RFC3339),
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInviteNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInviteUsed), errors.Is(err, ErrInviteExpired):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrMissingEmail):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("invite operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
