package reconciler

import (
	"context"
	"errors"

	"github.com/utpal16raj09/flfe/internal/auth"
	"github.com/utpal16raj09/flfe/internal/email"
	"github.com/utpal16raj09/flfe/internal/logger"
	"github.com/utpal16raj09/flfe/internal/user"
)

// Reconciler maps an external identity to a durable user record.
// It is the ONLY place where identity-to-account mapping logic lives.
type Reconciler interface {
	Reconcile(ctx context.Context, identity *auth.Identity) (*user.User, error)
}

// StoreReconciler resolves identities against the user store.
type StoreReconciler struct {
	users  user.Store
	sender email.Sender
}

func New(users user.Store, sender email.Sender) *StoreReconciler {
	return &StoreReconciler{users: users, sender: sender}
}

// Reconcile finds or creates the account for the identity's email.
//
// Existing accounts get name, avatar and provider refreshed; roles and
// password hash are never touched. A lost create race (unique violation on
// email) is retried as an update, so two concurrent first logins collapse
// into one record and only the race winner sends the welcome notification.
func (r *StoreReconciler) Reconcile(
	ctx context.Context,
	identity *auth.Identity,
) (*user.User, error) {

	if identity == nil {
		return nil, errors.New("reconciler: identity is nil")
	}

	addr := user.NormalizeEmail(identity.Email)
	prov := providerOf(identity)
	update := user.ProfileUpdate{
		Name:      identity.Name,
		AvatarURL: identity.Picture,
		Provider:  prov,
	}

	_, err := r.users.FindByEmail(ctx, addr)
	switch {
	case err == nil:
		return r.users.UpdateProfile(ctx, addr, update)

	case errors.Is(err, user.ErrNotFound):
		created, err := r.users.Create(ctx, &user.User{
			Email:     addr,
			Name:      identity.Name,
			Provider:  prov,
			Roles:     []string{user.RoleUser},
			AvatarURL: identity.Picture,
		})
		if errors.Is(err, user.ErrEmailTaken) {
			// Another request created the account first.
			return r.users.UpdateProfile(ctx, addr, update)
		}
		if err != nil {
			return nil, err
		}

		r.notify(ctx, created)
		return created, nil

	default:
		return nil, err
	}
}

// providerOf maps a provider name from the registry onto the account enum.
func providerOf(identity *auth.Identity) string {
	if identity.Provider == "google" {
		return user.ProviderGoogle
	}
	return user.ProviderLocal
}

// notify sends the welcome mail for a freshly created account.
// Failures never fail the authentication flow.
func (r *StoreReconciler) notify(ctx context.Context, u *user.User) {
	if r.sender == nil {
		return
	}
	if err := r.sender.SendWelcome(ctx, u.Email, u.Name); err != nil {
		logger.Error("welcome notification failed", map[string]any{
			"email": u.Email,
			"error": err.Error(),
		})
	}
}
