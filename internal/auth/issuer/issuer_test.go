package issuer_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utpal16raj09/flfe/internal/auth"
	"github.com/utpal16raj09/flfe/internal/auth/issuer"
	"github.com/utpal16raj09/flfe/internal/auth/reconciler"
	"github.com/utpal16raj09/flfe/internal/token"
	"github.com/utpal16raj09/flfe/internal/user"
)

type countingSender struct {
	calls atomic.Int64
}

func (s *countingSender) SendWelcome(ctx context.Context, to, name string) error {
	s.calls.Add(1)
	return nil
}

type fixture struct {
	store  *user.MemoryStore
	tokens *token.Service
	sender *countingSender
	svc    *issuer.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens, err := token.NewService([]byte("test-signing-key-at-least-32-bytes!!"), "flfe-test", time.Hour)
	require.NoError(t, err)

	store := user.NewMemoryStore()
	sender := &countingSender{}
	rec := reconciler.New(store, sender)

	return &fixture{
		store:  store,
		tokens: tokens,
		sender: sender,
		svc:    issuer.New(store, tokens, rec, sender),
	}
}

func TestSignup(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Signup(ctx, "A@X.com", "Ann", "password1")
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", session.Email)
	assert.Equal(t, "Ann", session.Name)
	assert.Equal(t, user.RoleUser, session.Role)
	assert.EqualValues(t, 1, f.sender.calls.Load())

	claims, err := f.tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, user.RoleUser, claims.Role)

	t.Run("duplicate email fails", func(t *testing.T) {
		_, err := f.svc.Signup(ctx, "a@x.com", "Ann Again", "password2")
		require.ErrorIs(t, err, issuer.ErrDuplicateAccount)
	})

	t.Run("duplicate is case-insensitive", func(t *testing.T) {
		_, err := f.svc.Signup(ctx, "A@x.COM", "Ann Again", "password2")
		require.ErrorIs(t, err, issuer.ErrDuplicateAccount)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, "a@x.com", "Ann", "password1")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		session, err := f.svc.Login(ctx, "a@x.com", "password1")
		require.NoError(t, err)

		claims, err := f.tokens.Verify(session.Token)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", claims.Subject)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.svc.Login(ctx, "a@x.com", "wrongpass")
		require.ErrorIs(t, err, issuer.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.svc.Login(ctx, "nobody@x.com", "password1")
		require.ErrorIs(t, err, issuer.ErrInvalidCredentials)
	})

	t.Run("oauth-only account rejects any password", func(t *testing.T) {
		_, err := f.store.Create(ctx, &user.User{
			Email:    "google-only@x.com",
			Name:     "Gina",
			Provider: user.ProviderGoogle,
		})
		require.NoError(t, err)

		for _, pw := range []string{"", "password1", "anything-at-all"} {
			_, err := f.svc.Login(ctx, "google-only@x.com", pw)
			require.ErrorIs(t, err, issuer.ErrInvalidCredentials)
		}
	})
}

func TestCompleteOAuth(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	identity := &auth.Identity{
		Provider:      "google",
		Email:         "gina@x.com",
		EmailVerified: true,
		Name:          "Gina",
		Picture:       "pic-1",
	}

	first, err := f.svc.CompleteOAuth(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, "gina@x.com", first.Email)
	assert.EqualValues(t, 1, f.sender.calls.Load())

	claims, err := f.tokens.Verify(first.Token)
	require.NoError(t, err)
	assert.Equal(t, "gina@x.com", claims.Subject)
	assert.Equal(t, "pic-1", claims.Picture)

	t.Run("second callback updates without duplicating", func(t *testing.T) {
		identity.Name = "Gina Lee"
		identity.Picture = "pic-2"

		second, err := f.svc.CompleteOAuth(ctx, identity)
		require.NoError(t, err)
		assert.Equal(t, "Gina Lee", second.Name)

		_, total, err := f.store.List(ctx, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.EqualValues(t, 1, f.sender.calls.Load())
	})
}

func TestReissue(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, "a@x.com", "Ann", "password1")
	require.NoError(t, err)

	t.Run("existing subject", func(t *testing.T) {
		session, err := f.svc.Reissue(ctx, "a@x.com")
		require.NoError(t, err)

		claims, err := f.tokens.Verify(session.Token)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", claims.Subject)
	})

	t.Run("deleted account", func(t *testing.T) {
		u, err := f.store.FindByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.NoError(t, f.store.Delete(ctx, u.ID))

		_, err = f.svc.Reissue(ctx, "a@x.com")
		require.ErrorIs(t, err, issuer.ErrUserNotFound)
	})
}
