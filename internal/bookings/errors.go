package bookings

import "errors"

var (
	// ErrBookingNotFound is returned when no booking exists with the given id
	ErrBookingNotFound = errors.New("booking not found")

	// ErrNotModifiable is returned when cancelling/rescheduling a booking
	// that is already completed or cancelled
	ErrNotModifiable = errors.New("booking can no longer be modified")

	// ErrModificationWindow is the policy rejection for changes inside the
	// 24-hour cutoff
	ErrModificationWindow = errors.New("cannot modify a booking within 24 hours of the appointment")

	// ErrJoinWindow is the policy rejection for joining outside the
	// 15-minutes-before to 30-minutes-after band
	ErrJoinWindow = errors.New("the consultation room opens 15 minutes before the appointment and closes 30 minutes after")

	// ErrNotConfirmed is returned when completing a booking that was never confirmed
	ErrNotConfirmed = errors.New("only confirmed bookings can be completed")

	// ErrAlreadyFinal is returned when confirming a completed/cancelled booking
	ErrAlreadyFinal = errors.New("booking is already completed or cancelled")

	// ErrMissingPatient is returned when the patient id is absent
	ErrMissingPatient = errors.New("patient id is required")

	// ErrMissingContact is returned when no patient email is provided
	ErrMissingContact = errors.New("patient email is required")
)
