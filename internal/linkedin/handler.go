package linkedin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// Handler exposes the OAuth code exchange over HTTP
type Handler struct {
	client *Client
	logger *logging.Logger
}

// NewHandler creates a new linkedin handler
func NewHandler(client *Client, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{client: client, logger: logger}
}

// ExchangeRequest carries the OAuth authorization code from the frontend
type ExchangeRequest struct {
	Code string `json:"code"`
}

// ExchangeResponse wraps the imported profile with a mock-mode marker so the
// frontend can tell the user the data is canned.
type ExchangeResponse struct {
	Profile *Profile `json:"profile"`
	Mock    bool     `json:"mock,omitempty"`
}

// Exchange handles POST /api/linkedin/exchange requests
func (h *Handler) Exchange(w http.ResponseWriter, r *http.Request) {
	var req ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.client.ExchangeCodeForProfile(r.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingCode):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("linkedin exchange failed", "error", err)
			http.Error(w, "profile import failed", http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ExchangeResponse{Profile: profile, Mock: h.client.MockMode()})
}
