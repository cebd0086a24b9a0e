package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// StripeService creates PaymentIntents for consultation bookings. When the
// doctor has a connected account, the intent carries a destination split so
// the doctor's share settles on their account and the platform keeps the
// application fee.
type StripeService struct {
	secretKey  string
	baseURL    string
	apiVersion string
	httpClient *http.Client
	logger     *logging.Logger
	dryRun     bool
}

// NewStripeService creates a new Stripe payment service.
func NewStripeService(secretKey string, logger *logging.Logger) *StripeService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StripeService{
		secretKey:  secretKey,
		baseURL:    "https://api.stripe.com",
		apiVersion: "2024-12-18.acacia",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// WithBaseURL overrides the Stripe API base URL (for testing).
func (s *StripeService) WithBaseURL(baseURL string) *StripeService {
	if baseURL != "" {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
	return s
}

// WithDryRun enables dry-run mode (returns fake intents without calling Stripe).
func (s *StripeService) WithDryRun(enabled bool) *StripeService {
	s.dryRun = enabled
	return s
}

// IntentParams describes the payment to authorize.
type IntentParams struct {
	BookingID uuid.UUID
	// AmountMinorUnits is the full consultation price in the currency's
	// smallest unit.
	AmountMinorUnits int64
	Currency         string
	// DestinationAccountID, when set, routes the payment to the doctor's
	// connected account with ApplicationFeeMinorUnits retained by the
	// platform.
	DestinationAccountID     string
	ApplicationFeeMinorUnits int64
}

// Intent is the subset of Stripe's PaymentIntent the booking flow needs.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// CreatePaymentIntent authorizes a payment for a booking.
func (s *StripeService) CreatePaymentIntent(ctx context.Context, params IntentParams) (*Intent, error) {
	if params.AmountMinorUnits <= 0 {
		return nil, fmt.Errorf("payments: amount must be positive, got %d", params.AmountMinorUnits)
	}
	currency := params.Currency
	if currency == "" {
		currency = "gbp"
	}

	if s.dryRun {
		fakeID := "pi_dryrun_" + uuid.New().String()[:8]
		s.logger.Info("stripe dry run: skipping payment intent creation",
			"booking_id", params.BookingID, "amount", params.AmountMinorUnits)
		return &Intent{ID: fakeID, ClientSecret: fakeID + "_secret"}, nil
	}

	// Build form-encoded body for Stripe API
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.AmountMinorUnits, 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set("metadata[booking_id]", params.BookingID.String())

	// Destination payment (Stripe Connect)
	if params.DestinationAccountID != "" {
		form.Set("transfer_data[destination]", params.DestinationAccountID)
		if params.ApplicationFeeMinorUnits > 0 {
			form.Set("application_fee_amount", strconv.FormatInt(params.ApplicationFeeMinorUnits, 10))
		}
	}

	apiURL := s.baseURL + "/v1/payment_intents"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("payments: stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Stripe-Version", s.apiVersion)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payments: stripe http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("payments: stripe api status %d: %s", resp.StatusCode, string(body))
	}

	var parsed Intent
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("payments: stripe decode: %w", err)
	}
	if parsed.ClientSecret == "" {
		return nil, fmt.Errorf("payments: stripe response missing client secret")
	}
	return &parsed, nil
}
