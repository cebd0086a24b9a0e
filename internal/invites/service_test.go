package invites

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

var inviteNow = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func newInviteService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()
	return NewService(NewInMemoryRepository(), ttl, logging.Default()).
		WithClock(func() time.Time { return inviteNow })
}

func TestCreateInvite(t *testing.T) {
	s := newInviteService(t, 0)

	inv, err := s.Create(context.Background(), "dr.smith@example.com")
	require.NoError(t, err)
	assert.Equal(t, "dr.smith@example.com", inv.Email)
	assert.Len(t, inv.Token, 64)
	assert.False(t, inv.IsUsed)
	assert.Equal(t, inviteNow.Add(DefaultTTL), inv.ExpiresAt)

	other, err := s.Create(context.Background(), "dr.jones@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, inv.Token, other.Token)
}

func TestCreateInviteRequiresEmail(t *testing.T) {
	s := newInviteService(t, 0)
	_, err := s.Create(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingEmail)
}

func TestRedeemOnce(t *testing.T) {
	s := newInviteService(t, 0)
	inv, err := s.Create(context.Background(), "dr.smith@example.com")
	require.NoError(t, err)

	redeemed, err := s.Redeem(context.Background(), inv.Token)
	require.NoError(t, err)
	assert.True(t, redeemed.IsUsed)

	_, err = s.Redeem(context.Background(), inv.Token)
	assert.ErrorIs(t, err, ErrInviteUsed)
}

func TestRedeemUnknownToken(t *testing.T) {
	s := newInviteService(t, 0)
	_, err := s.Redeem(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestRedeemExpired(t *testing.T) {
	s := newInviteService(t, time.Hour)
	inv, err := s.Create(context.Background(), "dr.smith@example.com")
	require.NoError(t, err)

	s.WithClock(func() time.Time { return inviteNow.Add(2 * time.Hour) })
	_, err = s.Redeem(context.Background(), inv.Token)
	assert.ErrorIs(t, err, ErrInviteExpired)
}

func TestPreview(t *testing.T) {
	s := newInviteService(t, time.Hour)
	inv, err := s.Create(context.Background(), "dr.smith@example.com")
	require.NoError(t, err)

	got, err := s.Preview(context.Background(), inv.Token)
	require.NoError(t, err)
	assert.Equal(t, inv.Email, got.Email)
	assert.False(t, got.IsUsed)

	// Preview never consumes.
	_, err = s.Redeem(context.Background(), inv.Token)
	assert.NoError(t, err)

	_, err = s.Preview(context.Background(), inv.Token)
	assert.ErrorIs(t, err, ErrInviteUsed)
}

func TestConcurrentRedeem(t *testing.T) {
	repo := NewInMemoryRepository()
	s := NewService(repo, time.Hour, logging.Default()).
		WithClock(func() time.Time { return inviteNow })
	inv, err := s.Create(context.Background(), "dr.smith@example.com")
	require.NoError(t, err)

	const attempts = 16
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			_, err := s.Redeem(context.Background(), inv.Token)
			results <- err
		}()
	}

	succeeded := 0
	for i := 0; i < attempts; i++ {
		if err := <-results; err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInviteUsed)
		}
	}
	assert.Equal(t, 1, succeeded)
}
