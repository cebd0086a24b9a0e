package notify

import (
	"github.com/google/uuid"
)

// JobType names the notification being dispatched.
type JobType string

// Notification job types.
const (
	JobBookingCreated     JobType = "booking.created"
	JobBookingConfirmed   JobType = "booking.confirmed"
	JobBookingCancelled   JobType = "booking.cancelled"
	JobBookingRescheduled JobType = "booking.rescheduled"
	JobReminder           JobType = "booking.reminder_24h"
	JobFeedbackRequest    JobType = "booking.feedback_request"
)

// Job is a self-contained notification payload. Everything the consumer
// needs travels in the job so the worker binary holds no repositories.
type Job struct {
	Type      JobType   `json:"type"`
	BookingID uuid.UUID `json:"booking_id"`

	PatientEmail string `json:"patient_email"`
	PatientPhone string `json:"patient_phone,omitempty"`

	DoctorName  string `json:"doctor_name,omitempty"`
	DoctorEmail string `json:"doctor_email,omitempty"`

	Date string `json:"date"`
	Time string `json:"time"`

	// Previous appointment, set for reschedule notifications.
	OldDate string `json:"old_date,omitempty"`
	OldTime string `json:"old_time,omitempty"`

	Reason string `json:"reason,omitempty"`
}
