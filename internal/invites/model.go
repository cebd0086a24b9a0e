package invites

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long an invite stays redeemable unless configured otherwise.
const DefaultTTL = 7 * 24 * time.Hour

// Invite is a single-use, time-limited token granting onboarding access to a
// prospective doctor.
type Invite struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	IsUsed    bool      `json:"is_used"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the invite is past its expiry at now.
func (i *Invite) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// NewToken returns a 64-character hex token from 32 bytes of crypto randomness.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("invites: generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
