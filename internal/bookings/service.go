package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Bezzin/HerHealth-Hub-sub000/internal/slots"
	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// Notifier receives lifecycle events for best-effort notification dispatch.
// Implementations must never block or fail the calling transition; errors
// are handled (logged) inside the implementation.
type Notifier interface {
	BookingCreated(ctx context.Context, b *Booking)
	BookingConfirmed(ctx context.Context, b *Booking)
	BookingCancelled(ctx context.Context, b *Booking)
	BookingRescheduled(ctx context.Context, b *Booking, oldDate, oldTime string)
	FeedbackRequested(ctx context.Context, b *Booking)
}

// Metrics records lifecycle counters. Nil-safe in the implementation.
type Metrics interface {
	ObserveBookingCreated()
	ObserveTransition(to string)
}

// Service is the booking lifecycle manager. Every transition that touches a
// slot goes through the slot registry's reserve/release primitives, and a
// failed step aborts the whole operation so a booking never points at a slot
// it does not hold.
type Service struct {
	repo     Repository
	slots    slots.Repository
	notifier Notifier
	metrics  Metrics
	logger   *logging.Logger
}

// NewService constructs a booking lifecycle service.
func NewService(repo Repository, slotRepo slots.Repository, notifier Notifier, metrics Metrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("bookings: repository required")
	}
	if slotRepo == nil {
		panic("bookings: slot repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:     repo,
		slots:    slotRepo,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// CreateRequest carries the patient's booking submission.
type CreateRequest struct {
	PatientID      uuid.UUID `json:"patient_id"`
	SlotID         uuid.UUID `json:"slot_id"`
	PatientEmail   string    `json:"patient_email"`
	PatientPhone   string    `json:"patient_phone,omitempty"`
	Reason         string    `json:"reason_for_consultation,omitempty"`
	SymptomSummary string    `json:"symptom_summary,omitempty"`
}

// Validate checks required fields.
func (req *CreateRequest) Validate() error {
	if req.PatientID == uuid.Nil {
		return ErrMissingPatient
	}
	if req.PatientEmail == "" {
		return ErrMissingContact
	}
	if req.SlotID == uuid.Nil {
		return slots.ErrSlotNotFound
	}
	return nil
}

// Create claims the slot and persists a pending booking. The slot claim and
// the booking insert form one logical unit: if the insert fails, the slot is
// released again.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	slot, err := s.slots.Reserve(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}

	start, err := slot.StartTime()
	if err != nil {
		s.release(ctx, slot.ID)
		return nil, err
	}

	booking := &Booking{
		ID:              uuid.New(),
		PatientID:       req.PatientID,
		DoctorID:        slot.DoctorID,
		SlotID:          slot.ID,
		AppointmentDate: slot.Date,
		AppointmentTime: slot.Time,
		Start:           start,
		Reason:          req.Reason,
		PatientEmail:    req.PatientEmail,
		PatientPhone:    req.PatientPhone,
		SymptomSummary:  req.SymptomSummary,
		Status:          StatusPending,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.release(ctx, slot.ID)
		return nil, fmt.Errorf("bookings: create: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ObserveBookingCreated()
	}
	s.logger.Info("booking created",
		"id", booking.ID,
		"doctor_id", booking.DoctorID,
		"slot_id", booking.SlotID,
		"start", booking.Start,
	)

	if s.notifier != nil {
		s.notifier.BookingCreated(ctx, booking)
	}
	return booking, nil
}

// Get returns a booking by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.Get(ctx, id)
}

// ListByPatient returns a patient's bookings.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Booking, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// ListByDoctor returns a doctor's bookings.
func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Booking, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

// AttachPaymentIntent records the payment intent created for a booking.
func (s *Service) AttachPaymentIntent(ctx context.Context, id uuid.UUID, paymentIntentID string) (*Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	booking.PaymentIntentID = paymentIntentID
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("bookings: attach payment intent: %w", err)
	}
	return booking, nil
}

// Confirm transitions pending → confirmed on a successful payment. Called
// from the payment webhook; idempotent for already-confirmed bookings so a
// replayed event never errors.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID, paymentIntentID string) (*Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case StatusConfirmed:
		return booking, nil
	case StatusCompleted, StatusCancelled:
		return nil, ErrAlreadyFinal
	}

	booking.Status = StatusConfirmed
	if paymentIntentID != "" {
		booking.PaymentIntentID = paymentIntentID
	}
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("bookings: confirm: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ObserveTransition(string(StatusConfirmed))
	}
	s.logger.Info("booking confirmed", "id", booking.ID, "payment_intent", booking.PaymentIntentID)

	if s.notifier != nil {
		s.notifier.BookingConfirmed(ctx, booking)
	}
	return booking, nil
}

// MarkCompleted transitions confirmed → completed after the consultation.
func (s *Service) MarkCompleted(ctx context.Context, id uuid.UUID) (*Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != StatusConfirmed {
		return nil, ErrNotConfirmed
	}

	booking.Status = StatusCompleted
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("bookings: complete: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ObserveTransition(string(StatusCompleted))
	}
	s.logger.Info("booking completed", "id", booking.ID)

	if s.notifier != nil {
		s.notifier.FeedbackRequested(ctx, booking)
	}
	return booking, nil
}

// Cancel releases the slot and marks the booking cancelled. Rejected inside
// the 24-hour cutoff.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, now time.Time) (*Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.modifiable(booking, now); err != nil {
		return nil, err
	}

	booking.Status = StatusCancelled
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("bookings: cancel: %w", err)
	}
	s.release(ctx, booking.SlotID)

	if s.metrics != nil {
		s.metrics.ObserveTransition(string(StatusCancelled))
	}
	s.logger.Info("booking cancelled", "id", booking.ID, "slot_id", booking.SlotID)

	if s.notifier != nil {
		s.notifier.BookingCancelled(ctx, booking)
	}
	return booking, nil
}

// Reschedule moves the booking to a new slot. The new slot is reserved
// before anything else changes; only after the booking row is persisted is
// the old slot released, so a failure at any step leaves no partial state.
// Payment progress carries over unchanged.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newSlotID uuid.UUID, now time.Time) (*Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.modifiable(booking, now); err != nil {
		return nil, err
	}

	newSlot, err := s.slots.Reserve(ctx, newSlotID)
	if err != nil {
		return nil, err
	}
	start, err := newSlot.StartTime()
	if err != nil {
		s.release(ctx, newSlot.ID)
		return nil, err
	}

	oldSlotID := booking.SlotID
	oldDate, oldTime := booking.AppointmentDate, booking.AppointmentTime

	booking.SlotID = newSlot.ID
	booking.AppointmentDate = newSlot.Date
	booking.AppointmentTime = newSlot.Time
	booking.Start = start
	rescheduledAt := now.UTC()
	booking.RescheduledAt = &rescheduledAt

	if err := s.repo.Update(ctx, booking); err != nil {
		s.release(ctx, newSlot.ID)
		return nil, fmt.Errorf("bookings: reschedule: %w", err)
	}
	s.release(ctx, oldSlotID)

	if s.metrics != nil {
		s.metrics.ObserveTransition("rescheduled")
	}
	s.logger.Info("booking rescheduled",
		"id", booking.ID,
		"old_slot_id", oldSlotID,
		"new_slot_id", newSlot.ID,
		"start", booking.Start,
	)

	if s.notifier != nil {
		s.notifier.BookingRescheduled(ctx, booking, oldDate, oldTime)
	}
	return booking, nil
}

// CanJoin checks the video-call join window: the booking must still be
// active and now must fall within [start-15m, start+30m].
func (s *Service) CanJoin(ctx context.Context, id uuid.UUID, now time.Time) (*Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.Active() {
		return nil, ErrNotModifiable
	}
	opens := booking.Start.Add(-JoinOpensBefore)
	closes := booking.Start.Add(JoinClosesAfter)
	if now.Before(opens) || now.After(closes) {
		return nil, ErrJoinWindow
	}
	return booking, nil
}

func (s *Service) modifiable(b *Booking, now time.Time) error {
	if !b.Active() {
		return ErrNotModifiable
	}
	if b.Start.Sub(now) < ModificationCutoff {
		return ErrModificationWindow
	}
	return nil
}

// release is best-effort; the slot registry's Release is idempotent and a
// failure here is logged, not propagated.
func (s *Service) release(ctx context.Context, slotID uuid.UUID) {
	if _, err := s.slots.Release(ctx, slotID); err != nil {
		s.logger.Error("slot release failed", "error", err, "slot_id", slotID)
	}
}
