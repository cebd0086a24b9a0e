package bookings

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks the lifecycle of a booking.
//
// Reschedule is not a status: a rescheduled booking keeps its payment
// progress (pending stays pending, confirmed stays confirmed) and records
// the move in RescheduledAt. Slot availability therefore stays derivable
// from status alone.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Booking is a patient's claim on a doctor's slot.
type Booking struct {
	ID              uuid.UUID `json:"id"`
	PatientID       uuid.UUID `json:"patient_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	SlotID          uuid.UUID `json:"slot_id"`
	AppointmentDate string    `json:"appointment_date"` // YYYY-MM-DD, for display
	AppointmentTime string    `json:"appointment_time"` // HH:MM, for display
	// Start is the canonical appointment instant (UTC), composed once from
	// the slot's date+time. Every window computation uses this field.
	Start           time.Time  `json:"appointment_start"`
	Reason          string     `json:"reason_for_consultation,omitempty"`
	PatientEmail    string     `json:"patient_email"`
	PatientPhone    string     `json:"patient_phone,omitempty"`
	SymptomSummary  string     `json:"symptom_summary,omitempty"`
	Status          Status     `json:"status"`
	PaymentIntentID string     `json:"payment_intent_id,omitempty"`
	RemindersSent   bool       `json:"reminders_sent"`
	RescheduledAt   *time.Time `json:"rescheduled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Active reports whether the booking currently holds its slot.
func (b *Booking) Active() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// Policy windows for the booking lifecycle.
const (
	// ModificationCutoff is the minimum lead time for cancel/reschedule.
	ModificationCutoff = 24 * time.Hour

	// JoinOpensBefore and JoinClosesAfter bound the video-call join window
	// around the scheduled start.
	JoinOpensBefore = 15 * time.Minute
	JoinClosesAfter = 30 * time.Minute

	// ReminderWindowStart and ReminderWindowEnd bound the lookahead band for
	// the one-time 24-hour reminder (±1h tolerance around the nominal target
	// to absorb the hourly scan granularity).
	ReminderWindowStart = 23 * time.Hour
	ReminderWindowEnd   = 25 * time.Hour
)
