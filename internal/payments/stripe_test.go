package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

func TestCreatePaymentIntentForm(t *testing.T) {
	bookingID := uuid.New()
	var gotForm map[string][]string
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "pi_123", "client_secret": "pi_123_secret_abc"}`))
	}))
	defer server.Close()

	service := NewStripeService("sk_test_123", logging.Default()).WithBaseURL(server.URL)
	intent, err := service.CreatePaymentIntent(context.Background(), IntentParams{
		BookingID:                bookingID,
		AmountMinorUnits:         6500,
		Currency:                 "gbp",
		DestinationAccountID:     "acct_456",
		ApplicationFeeMinorUnits: 1950,
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)

	assert.Equal(t, "Bearer sk_test_123", gotAuth)
	assert.Equal(t, "6500", gotForm["amount"][0])
	assert.Equal(t, "gbp", gotForm["currency"][0])
	assert.Equal(t, bookingID.String(), gotForm["metadata[booking_id]"][0])
	assert.Equal(t, "acct_456", gotForm["transfer_data[destination]"][0])
	assert.Equal(t, "1950", gotForm["application_fee_amount"][0])
}

func TestCreatePaymentIntentNoDestination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.NotContains(t, r.PostForm, "transfer_data[destination]")
		assert.NotContains(t, r.PostForm, "application_fee_amount")
		w.Write([]byte(`{"id": "pi_123", "client_secret": "secret"}`))
	}))
	defer server.Close()

	service := NewStripeService("sk_test_123", logging.Default()).WithBaseURL(server.URL)
	_, err := service.CreatePaymentIntent(context.Background(), IntentParams{
		BookingID:        uuid.New(),
		AmountMinorUnits: 6500,
	})
	require.NoError(t, err)
}

func TestCreatePaymentIntentAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error": {"message": "Your card was declined."}}`))
	}))
	defer server.Close()

	service := NewStripeService("sk_test_123", logging.Default()).WithBaseURL(server.URL)
	_, err := service.CreatePaymentIntent(context.Background(), IntentParams{
		BookingID:        uuid.New(),
		AmountMinorUnits: 6500,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 402")
}

func TestCreatePaymentIntentValidation(t *testing.T) {
	service := NewStripeService("sk_test_123", logging.Default())
	_, err := service.CreatePaymentIntent(context.Background(), IntentParams{
		BookingID: uuid.New(),
	})
	assert.Error(t, err)
}

func TestCreatePaymentIntentDryRun(t *testing.T) {
	service := NewStripeService("", logging.Default()).WithDryRun(true)
	intent, err := service.CreatePaymentIntent(context.Background(), IntentParams{
		BookingID:        uuid.New(),
		AmountMinorUnits: 6500,
	})
	require.NoError(t, err)
	assert.Contains(t, intent.ID, "pi_dryrun_")
	assert.NotEmpty(t, intent.ClientSecret)
}
