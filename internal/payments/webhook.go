package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Bezzin/HerHealth-Hub-sub000/internal/bookings"
	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// BookingConfirmer advances a booking on successful payment.
type BookingConfirmer interface {
	Confirm(ctx context.Context, id uuid.UUID, paymentIntentID string) (*bookings.Booking, error)
}

// WebhookMetrics counts webhook outcomes. Nil-safe at the call sites.
type WebhookMetrics interface {
	ObservePaymentWebhook(status string)
}

// WebhookHandler handles Stripe webhook events for payment completion.
type WebhookHandler struct {
	webhookSecret string
	confirmer     BookingConfirmer
	processed     ProcessedTracker
	metrics       WebhookMetrics
	logger        *logging.Logger
	now           func() time.Time
}

// NewWebhookHandler creates a new handler for Stripe webhooks.
func NewWebhookHandler(webhookSecret string, confirmer BookingConfirmer, processed ProcessedTracker, metrics WebhookMetrics, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if processed == nil {
		processed = NewInMemoryProcessedTracker()
	}
	return &WebhookHandler{
		webhookSecret: webhookSecret,
		confirmer:     confirmer,
		processed:     processed,
		metrics:       metrics,
		logger:        logger,
		now:           time.Now,
	}
}

// WithClock overrides the signature-tolerance clock (for tests).
func (h *WebhookHandler) WithClock(now func() time.Time) *WebhookHandler {
	if now != nil {
		h.now = now
	}
	return h
}

// stripeWebhookEvent is the subset of Stripe's event envelope we need.
type stripeWebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// Handle processes incoming Stripe webhook events.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	if !h.verifySignature(payload, sigHeader) {
		h.observe("forbidden")
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var evt stripeWebhookEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		h.logger.Error("failed to decode stripe event", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if evt.ID == "" {
		http.Error(w, "missing event id", http.StatusBadRequest)
		return
	}

	// Only payment_intent.succeeded drives the booking lifecycle.
	if evt.Type != "payment_intent.succeeded" {
		h.observe("ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	if processed, err := h.processed.AlreadyProcessed(r.Context(), "stripe", evt.ID); err != nil {
		h.logger.Error("processed lookup failed", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	} else if processed {
		h.observe("duplicate")
		w.WriteHeader(http.StatusOK)
		return
	}

	intent := evt.Data.Object
	bookingIDStr := intent.Metadata["booking_id"]
	if bookingIDStr == "" {
		h.logger.Warn("stripe webhook missing booking_id metadata", "event_id", evt.ID)
		// Acknowledge to stop retries; nothing can be progressed.
		w.WriteHeader(http.StatusOK)
		return
	}
	bookingID, err := uuid.Parse(bookingIDStr)
	if err != nil {
		h.logger.Warn("stripe webhook invalid booking_id", "event_id", evt.ID, "booking_id", bookingIDStr)
		w.WriteHeader(http.StatusOK)
		return
	}

	if _, err := h.confirmer.Confirm(r.Context(), bookingID, intent.ID); err != nil {
		// A booking that is already cancelled or completed can never be
		// confirmed, so retrying the event would only fail again.
		// Acknowledge it and record the event as processed.
		if errors.Is(err, bookings.ErrAlreadyFinal) {
			h.logger.Warn("payment succeeded for finalised booking",
				"event_id", evt.ID, "booking_id", bookingID)
			if err := h.processed.MarkProcessed(r.Context(), "stripe", evt.ID); err != nil {
				h.logger.Error("mark processed failed", "event_id", evt.ID, "error", err)
			}
			h.observe("stale")
			w.WriteHeader(http.StatusOK)
			return
		}
		h.logger.Error("booking confirmation failed",
			"event_id", evt.ID, "booking_id", bookingID, "error", err)
		h.observe("error")
		// Non-200 makes Stripe retry; Confirm is idempotent so that's safe.
		http.Error(w, "confirmation failed", http.StatusInternalServerError)
		return
	}

	if err := h.processed.MarkProcessed(r.Context(), "stripe", evt.ID); err != nil {
		h.logger.Error("mark processed failed", "event_id", evt.ID, "error", err)
	}

	h.observe("confirmed")
	h.logger.Info("payment confirmed via webhook",
		"event_id", evt.ID, "booking_id", bookingID, "payment_intent", intent.ID)
	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) observe(status string) {
	if h.metrics != nil {
		h.metrics.ObservePaymentWebhook(status)
	}
}

// verifySignature checks a Stripe webhook signature. Stripe signs with
// HMAC-SHA256 and sends the header as t=<timestamp>,v1=<signature>[,...].
func (h *WebhookHandler) verifySignature(payload []byte, header string) bool {
	if h.webhookSecret == "" {
		return true // bypass for development
	}
	if header == "" {
		return false
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return false
	}

	// Timestamp tolerance (5 minutes)
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	if abs64(h.now().Unix()-ts) > 300 {
		return false
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return true
		}
	}
	return false
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
