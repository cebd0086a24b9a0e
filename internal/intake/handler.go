package intake

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// Handler exposes questionnaire summarization over HTTP
type Handler struct {
	summarizer *Summarizer
	logger     *logging.Logger
}

// NewHandler creates a new intake handler
func NewHandler(summarizer *Summarizer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{summarizer: summarizer, logger: logger}
}

// Summarize handles POST /api/intake/summarize requests
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrNoAnswers) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("intake summarize failed", "error", err)
		http.Error(w, "summarization failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
