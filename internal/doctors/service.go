package doctors

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Bezzin/HerHealth-Hub-sub000/internal/invites"
	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// InviteRedeemer consumes a single-use onboarding token.
type InviteRedeemer interface {
	Redeem(ctx context.Context, token string) (*invites.Invite, error)
}

// Service handles doctor onboarding and profile management.
type Service struct {
	repo    Repository
	invites InviteRedeemer
	logger  *logging.Logger
}

// NewService constructs a doctor service.
func NewService(repo Repository, inviteRedeemer InviteRedeemer, logger *logging.Logger) *Service {
	if repo == nil {
		panic("doctors: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, invites: inviteRedeemer, logger: logger}
}

// OnboardRequest carries the onboarding form submission. The profile fields
// may come straight from a LinkedIn import.
type OnboardRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Qualifications  string `json:"qualifications,omitempty"`
	Experience      string `json:"experience,omitempty"`
	Bio             string `json:"bio,omitempty"`
	ConsultationFee int64  `json:"consultation_fee"`
}

// Validate checks required fields.
func (req *OnboardRequest) Validate() error {
	if req.FirstName == "" || req.LastName == "" {
		return ErrMissingName
	}
	if req.ConsultationFee <= 0 {
		return ErrInvalidFee
	}
	return nil
}

// CompleteOnboarding redeems the invite token and creates the doctor with
// the invite's email. Validation runs before the token is consumed so a bad
// form never burns an invite.
func (s *Service) CompleteOnboarding(ctx context.Context, token string, req *OnboardRequest) (*Doctor, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.invites.Redeem(ctx, token)
	if err != nil {
		return nil, err
	}

	doctor := &Doctor{
		ID:              uuid.New(),
		Email:           inv.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Qualifications:  req.Qualifications,
		Experience:      req.Experience,
		Bio:             req.Bio,
		ConsultationFee: req.ConsultationFee,
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, fmt.Errorf("doctors: onboard: %w", err)
	}

	s.logger.Info("doctor onboarded", "id", doctor.ID, "email", doctor.Email)
	return doctor, nil
}

// Get returns a doctor by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.Get(ctx, id)
}

// List returns all doctors.
func (s *Service) List(ctx context.Context) ([]*Doctor, error) {
	return s.repo.List(ctx)
}

// SetStripeAccount records the doctor's connected payout account.
func (s *Service) SetStripeAccount(ctx context.Context, id uuid.UUID, accountID string) (*Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doctor.StripeAccountID = accountID
	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, fmt.Errorf("doctors: set stripe account: %w", err)
	}
	s.logger.Info("doctor stripe account linked", "id", id)
	return doctor, nil
}
