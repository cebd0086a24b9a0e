package doctors

import (
	"time"

	"github.com/google/uuid"
)

// Doctor is an onboarded practitioner who can publish availability and
// receive destination payouts.
type Doctor struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Qualifications  string    `json:"qualifications,omitempty"`
	Experience      string    `json:"experience,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	ConsultationFee int64     `json:"consultation_fee"` // minor units
	StripeAccountID string    `json:"stripe_account_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FullName returns the doctor's display name.
func (d *Doctor) FullName() string {
	return d.FirstName + " " + d.LastName
}
