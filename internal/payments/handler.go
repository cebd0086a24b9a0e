package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Bezzin/HerHealth-Hub-sub000/internal/bookings"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/doctors"
	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// IntentCreator authorizes a payment with the provider.
type IntentCreator interface {
	CreatePaymentIntent(ctx context.Context, params IntentParams) (*Intent, error)
}

// BookingStore is the slice of the booking lifecycle the payment flow needs.
type BookingStore interface {
	Get(ctx context.Context, id uuid.UUID) (*bookings.Booking, error)
	AttachPaymentIntent(ctx context.Context, id uuid.UUID, paymentIntentID string) (*bookings.Booking, error)
}

// DoctorStore resolves the doctor's fee and connected account.
type DoctorStore interface {
	Get(ctx context.Context, id uuid.UUID) (*doctors.Doctor, error)
}

// Handler handles HTTP requests for payment intent creation
type Handler struct {
	stripe     IntentCreator
	bookings   BookingStore
	doctors    DoctorStore
	currency   string
	feePercent int
	logger     *logging.Logger
}

// NewHandler creates a new payments handler. feePercent is the platform's
// share of the consultation fee, in whole percent.
func NewHandler(stripe IntentCreator, bookingStore BookingStore, doctorStore DoctorStore, currency string, feePercent int, logger *logging.Logger) *Handler {
	if currency == "" {
		currency = "gbp"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		stripe:     stripe,
		bookings:   bookingStore,
		doctors:    doctorStore,
		currency:   currency,
		feePercent: feePercent,
		logger:     logger,
	}
}

// IntentResponse carries what the frontend needs to collect the payment
type IntentResponse struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

// CreateIntent handles POST /api/bookings/{bookingID}/payment-intent requests
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}

	booking, err := h.bookings.Get(r.Context(), bookingID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if booking.Status != bookings.StatusPending {
		http.Error(w, "booking is not awaiting payment", http.StatusConflict)
		return
	}

	doctor, err := h.doctors.Get(r.Context(), booking.DoctorID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	params := IntentParams{
		BookingID:        booking.ID,
		AmountMinorUnits: doctor.ConsultationFee,
		Currency:         h.currency,
	}
	if doctor.StripeAccountID != "" {
		params.DestinationAccountID = doctor.StripeAccountID
		params.ApplicationFeeMinorUnits = doctor.ConsultationFee * int64(h.feePercent) / 100
	}

	intent, err := h.stripe.CreatePaymentIntent(r.Context(), params)
	if err != nil {
		h.logger.Error("payment intent creation failed", "booking_id", booking.ID, "error", err)
		http.Error(w, "payment provider error", http.StatusBadGateway)
		return
	}

	if _, err := h.bookings.AttachPaymentIntent(r.Context(), booking.ID, intent.ID); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(IntentResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          params.AmountMinorUnits,
		Currency:        h.currency,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bookings.ErrBookingNotFound), errors.Is(err, doctors.ErrDoctorNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("payment operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
