package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bezzin/HerHealth-Hub-sub000/internal/bookings"
	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

const testWebhookSecret = "whsec_test"

var webhookNow = time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC)

type stubConfirmer struct {
	confirmed []uuid.UUID
	intents   []string
	err       error
}

func (c *stubConfirmer) Confirm(_ context.Context, id uuid.UUID, paymentIntentID string) (*bookings.Booking, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.confirmed = append(c.confirmed, id)
	c.intents = append(c.intents, paymentIntentID)
	return &bookings.Booking{ID: id, Status: bookings.StatusConfirmed}, nil
}

func signPayload(secret string, ts time.Time, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func succeededEvent(eventID string, bookingID uuid.UUID) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_123", "metadata": {"booking_id": %q}}}
	}`, eventID, bookingID))
}

func newWebhookHandler(confirmer *stubConfirmer) *WebhookHandler {
	return NewWebhookHandler(testWebhookSecret, confirmer, NewInMemoryProcessedTracker(), nil, logging.Default()).
		WithClock(func() time.Time { return webhookNow })
}

func deliver(h *WebhookHandler, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestWebhookConfirmsBooking(t *testing.T) {
	confirmer := &stubConfirmer{}
	h := newWebhookHandler(confirmer)
	bookingID := uuid.New()
	payload := succeededEvent("evt_1", bookingID)

	rec := deliver(h, payload, signPayload(testWebhookSecret, webhookNow, payload))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, confirmer.confirmed, 1)
	assert.Equal(t, bookingID, confirmer.confirmed[0])
	assert.Equal(t, "pi_123", confirmer.intents[0])
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	confirmer := &stubConfirmer{}
	h := newWebhookHandler(confirmer)
	payload := succeededEvent("evt_1", uuid.New())

	rec := deliver(h, payload, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = deliver(h, payload, signPayload("whsec_wrong", webhookNow, payload))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Stale timestamp outside the 5 minute tolerance.
	rec = deliver(h, payload, signPayload(testWebhookSecret, webhookNow.Add(-10*time.Minute), payload))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Empty(t, confirmer.confirmed)
}

func TestWebhookDedupesReplays(t *testing.T) {
	confirmer := &stubConfirmer{}
	h := newWebhookHandler(confirmer)
	payload := succeededEvent("evt_1", uuid.New())
	sig := signPayload(testWebhookSecret, webhookNow, payload)

	require.Equal(t, http.StatusOK, deliver(h, payload, sig).Code)
	require.Equal(t, http.StatusOK, deliver(h, payload, sig).Code)
	assert.Len(t, confirmer.confirmed, 1)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	confirmer := &stubConfirmer{}
	h := newWebhookHandler(confirmer)
	payload := []byte(`{"id": "evt_2", "type": "payment_intent.created", "data": {"object": {"id": "pi_1", "metadata": {}}}}`)

	rec := deliver(h, payload, signPayload(testWebhookSecret, webhookNow, payload))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, confirmer.confirmed)
}

func TestWebhookMissingMetadataAcknowledged(t *testing.T) {
	confirmer := &stubConfirmer{}
	h := newWebhookHandler(confirmer)
	payload := []byte(`{"id": "evt_3", "type": "payment_intent.succeeded", "data": {"object": {"id": "pi_1", "metadata": {}}}}`)

	rec := deliver(h, payload, signPayload(testWebhookSecret, webhookNow, payload))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, confirmer.confirmed)
}

func TestWebhookConfirmFailureTriggersRetry(t *testing.T) {
	confirmer := &stubConfirmer{err: fmt.Errorf("db down")}
	h := newWebhookHandler(confirmer)
	bookingID := uuid.New()
	payload := succeededEvent("evt_4", bookingID)
	sig := signPayload(testWebhookSecret, webhookNow, payload)

	rec := deliver(h, payload, sig)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// The event was not marked processed, so the retry goes through.
	confirmer.err = nil
	rec = deliver(h, payload, sig)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uuid.UUID{bookingID}, confirmer.confirmed)
}

func TestWebhookAcknowledgesFinalisedBooking(t *testing.T) {
	confirmer := &stubConfirmer{err: bookings.ErrAlreadyFinal}
	h := newWebhookHandler(confirmer)
	payload := succeededEvent("evt_5", uuid.New())
	sig := signPayload(testWebhookSecret, webhookNow, payload)

	// Payment succeeded for a booking that was cancelled in the meantime.
	// Retrying can never succeed, so the event is acked and marked processed.
	rec := deliver(h, payload, sig)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, confirmer.confirmed)

	confirmer.err = nil
	rec = deliver(h, payload, sig)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, confirmer.confirmed, "redelivery should be deduped, not confirmed")
}
