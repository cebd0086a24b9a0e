package slots

import "errors"

var (
	// ErrSlotNotFound is returned when no slot exists with the given id
	ErrSlotNotFound = errors.New("slot not found")

	// ErrSlotTaken is returned when reserving a slot that is already claimed
	ErrSlotTaken = errors.New("slot is no longer available")

	// ErrInvalidDate is returned when a slot date is not YYYY-MM-DD
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

	// ErrInvalidTime is returned when a slot time is not HH:MM
	ErrInvalidTime = errors.New("time must be in HH:MM format")
)
