package slots

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Slot is a doctor-defined bookable (date, time) unit of availability.
type Slot struct {
	ID          uuid.UUID `json:"id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	Date        string    `json:"date"` // calendar date, YYYY-MM-DD
	Time        string    `json:"time"` // local time of day, HH:MM
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// StartTime composes the slot's date and time into a single UTC instant.
// All window computations (reminders, modification cutoff, join window)
// use this one canonical value.
func (s *Slot) StartTime() (time.Time, error) {
	return ComposeStart(s.Date, s.Time)
}

// ComposeStart parses a date + time-of-day pair into a UTC instant.
func ComposeStart(date, timeOfDay string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+timeOfDay, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("slots: invalid appointment date/time %q %q: %w", date, timeOfDay, err)
	}
	return t, nil
}

// ValidateDateTime checks the wire formats used for slot creation.
func ValidateDateTime(date, timeOfDay string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return ErrInvalidDate
	}
	if _, err := time.Parse(timeLayout, timeOfDay); err != nil {
		return ErrInvalidTime
	}
	return nil
}
