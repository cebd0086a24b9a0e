package invites

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for invite storage
type Repository interface {
	Create(ctx context.Context, inv *Invite) error
	GetByToken(ctx context.Context, token string) (*Invite, error)

	// Redeem consumes the token at most once. It fails with ErrInviteUsed
	// on a second attempt and ErrInviteExpired past expiry; on success the
	// stored invite has is_used permanently true.
	Redeem(ctx context.Context, token string, now time.Time) (*Invite, error)
}

// InMemoryRepository stores invites in a mutex-guarded map keyed by token.
type InMemoryRepository struct {
	mu      sync.Mutex
	byToken map[string]*Invite
}

// NewInMemoryRepository creates a new in-memory invite repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byToken: make(map[string]*Invite)}
}

// Create persists a new invite.
func (r *InMemoryRepository) Create(ctx context.Context, inv *Invite) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.CreatedAt = time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	c := *inv
	r.byToken[inv.Token] = &c
	return nil
}

// GetByToken retrieves an invite without consuming it.
func (r *InMemoryRepository) GetByToken(ctx context.Context, token string) (*Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.byToken[token]
	if !ok {
		return nil, ErrInviteNotFound
	}
	c := *inv
	return &c, nil
}

// Redeem flips is_used under the lock so concurrent redemptions of the same
// token cannot both succeed.
func (r *InMemoryRepository) Redeem(ctx context.Context, token string, now time.Time) (*Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.byToken[token]
	if !ok {
		return nil, ErrInviteNotFound
	}
	if inv.IsUsed {
		return nil, ErrInviteUsed
	}
	if inv.Expired(now) {
		return nil, ErrInviteExpired
	}

	inv.IsUsed = true
	c := *inv
	return &c, nil
}
