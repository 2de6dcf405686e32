package reconciler_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utpal16raj09/flfe/internal/auth"
	"github.com/utpal16raj09/flfe/internal/auth/reconciler"
	"github.com/utpal16raj09/flfe/internal/user"
)

type countingSender struct {
	calls atomic.Int64
}

func (s *countingSender) SendWelcome(ctx context.Context, to, name string) error {
	s.calls.Add(1)
	return nil
}

func googleIdentity(email, name, picture string) *auth.Identity {
	return &auth.Identity{
		Provider:       "google",
		ProviderUserID: "sub-123",
		Email:          email,
		EmailVerified:  true,
		Name:           name,
		Picture:        picture,
	}
}

func TestReconcileCreatesAccount(t *testing.T) {
	t.Parallel()

	store := user.NewMemoryStore()
	sender := &countingSender{}
	rec := reconciler.New(store, sender)

	u, err := rec.Reconcile(context.Background(), googleIdentity("Ann@X.com", "Ann", "pic"))
	require.NoError(t, err)

	assert.Equal(t, "ann@x.com", u.Email)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, "pic", u.AvatarURL)
	assert.Equal(t, user.ProviderGoogle, u.Provider)
	assert.Equal(t, []string{user.RoleUser}, u.Roles)
	assert.Empty(t, u.PasswordHash)
	assert.EqualValues(t, 1, sender.calls.Load())
}

func TestReconcileIsIdempotent(t *testing.T) {
	t.Parallel()

	store := user.NewMemoryStore()
	sender := &countingSender{}
	rec := reconciler.New(store, sender)
	ctx := context.Background()

	first, err := rec.Reconcile(ctx, googleIdentity("ann@x.com", "Ann", "old-pic"))
	require.NoError(t, err)

	second, err := rec.Reconcile(ctx, googleIdentity("ann@x.com", "Ann Lee", "new-pic"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ann Lee", second.Name)
	assert.Equal(t, "new-pic", second.AvatarURL)
	assert.EqualValues(t, 1, sender.calls.Load(), "welcome mail must fire once per email")
}

func TestReconcileUpgradesLocalAccount(t *testing.T) {
	t.Parallel()

	store := user.NewMemoryStore()
	_, err := store.Create(context.Background(), &user.User{
		Email:        "ann@x.com",
		Name:         "Ann",
		PasswordHash: "stored-hash",
		Provider:     user.ProviderLocal,
		Roles:        []string{user.RoleAdmin, user.RoleUser},
	})
	require.NoError(t, err)

	sender := &countingSender{}
	rec := reconciler.New(store, sender)

	u, err := rec.Reconcile(context.Background(), googleIdentity("ann@x.com", "Ann G", "pic"))
	require.NoError(t, err)

	// Provider and profile refresh; roles and password hash survive.
	assert.Equal(t, user.ProviderGoogle, u.Provider)
	assert.Equal(t, "Ann G", u.Name)
	assert.Equal(t, []string{user.RoleAdmin, user.RoleUser}, u.Roles)
	assert.Equal(t, "stored-hash", u.PasswordHash)
	assert.EqualValues(t, 0, sender.calls.Load(), "existing account must not re-trigger welcome")
}

func TestReconcileConcurrentFirstLogins(t *testing.T) {
	t.Parallel()

	store := user.NewMemoryStore()
	sender := &countingSender{}
	rec := reconciler.New(store, sender)

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = rec.Reconcile(context.Background(), googleIdentity("race@x.com", "Racer", ""))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	users, total, err := store.List(context.Background(), 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, total, "exactly one record for the racing email")
	assert.Len(t, users, 1)
	assert.EqualValues(t, 1, sender.calls.Load(), "exactly one welcome notification")
}

func TestReconcileNilIdentity(t *testing.T) {
	t.Parallel()

	rec := reconciler.New(user.NewMemoryStore(), nil)
	_, err := rec.Reconcile(context.Background(), nil)
	require.Error(t, err)
}
