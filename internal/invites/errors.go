package invites

import "errors"

var (
	// ErrInviteNotFound is returned when no invite matches the id or token
	ErrInviteNotFound = errors.New("invite not found")

	// ErrInviteUsed is returned when redeeming an already-consumed token
	ErrInviteUsed = errors.New("invite already used")

	// ErrInviteExpired is returned when redeeming a token past its expiry
	ErrInviteExpired = errors.New("invite expired")

	// ErrMissingEmail is returned when creating an invite without an email
	ErrMissingEmail = errors.New("email is required")
)
