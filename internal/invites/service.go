package invites

import (
	"context"
	"fmt"
	"time"

	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// Service issues and redeems doctor onboarding invites.
type Service struct {
	repo   Repository
	ttl    time.Duration
	logger *logging.Logger
	now    func() time.Time
}

// NewService constructs an invite service with the given redemption TTL.
func NewService(repo Repository, ttl time.Duration, logger *logging.Logger) *Service {
	if repo == nil {
		panic("invites: repository required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:   repo,
		ttl:    ttl,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock (for tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Create issues a new invite for the given email.
func (s *Service) Create(ctx context.Context, email string) (*Invite, error) {
	if email == "" {
		return nil, ErrMissingEmail
	}

	token, err := NewToken()
	if err != nil {
		return nil, err
	}
	inv := &Invite{
		Email:     email,
		Token:     token,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("invites: create: %w", err)
	}

	s.logger.Info("invite created", "id", inv.ID, "email", email, "expires_at", inv.ExpiresAt)
	return inv, nil
}

// Preview returns the invite for a token without consuming it, surfacing the
// used/expired state so the onboarding form can reject early.
func (s *Service) Preview(ctx context.Context, token string) (*Invite, error) {
	inv, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv.IsUsed {
		return nil, ErrInviteUsed
	}
	if inv.Expired(s.now()) {
		return nil, ErrInviteExpired
	}
	return inv, nil
}

// Redeem consumes the token. At most one caller ever succeeds per token.
func (s *Service) Redeem(ctx context.Context, token string) (*Invite, error) {
	inv, err := s.repo.Redeem(ctx, token, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("invite redeemed", "id", inv.ID, "email", inv.Email)
	return inv, nil
}
