package doctors

import "errors"

var (
	// ErrDoctorNotFound is returned when no doctor exists with the given id
	ErrDoctorNotFound = errors.New("doctor not found")

	// ErrMissingName is returned when onboarding without a first and last name
	ErrMissingName = errors.New("first and last name are required")

	// ErrInvalidFee is returned for a zero or negative consultation fee
	ErrInvalidFee = errors.New("consultation fee must be positive")
)
