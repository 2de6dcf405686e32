package issuer

import (
	"context"
	"errors"

	"github.com/utpal16raj09/flfe/internal/auth"
	"github.com/utpal16raj09/flfe/internal/auth/credentials"
	"github.com/utpal16raj09/flfe/internal/auth/reconciler"
	"github.com/utpal16raj09/flfe/internal/email"
	"github.com/utpal16raj09/flfe/internal/logger"
	"github.com/utpal16raj09/flfe/internal/token"
	"github.com/utpal16raj09/flfe/internal/user"
)

var (
	// ErrDuplicateAccount is returned on signup when the email is taken.
	ErrDuplicateAccount = errors.New("issuer: account already exists")

	// ErrInvalidCredentials covers unknown email, non-local provider and
	// wrong password alike, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("issuer: invalid credentials")

	// ErrUserNotFound is returned on reissue when the account is gone.
	ErrUserNotFound = errors.New("issuer: user not found")
)

// Session is the issued token together with the profile snapshot embedded
// in it. Mirrors the original API's auth response.
type Session struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Service orchestrates signup, login, OAuth completion and reissue.
// It holds no mutable state; all fields are read-only after construction.
type Service struct {
	users      user.Store
	tokens     *token.Service
	reconciler reconciler.Reconciler
	sender     email.Sender
}

func New(
	users user.Store,
	tokens *token.Service,
	rec reconciler.Reconciler,
	sender email.Sender,
) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		reconciler: rec,
		sender:     sender,
	}
}

// Signup registers a local account and issues its first session token.
func (s *Service) Signup(ctx context.Context, emailAddr, name, password string) (*Session, error) {
	addr := user.NormalizeEmail(emailAddr)

	exists, err := s.users.ExistsByEmail(ctx, addr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateAccount
	}

	hash, err := credentials.Hash(password)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, &user.User{
		Email:        addr,
		Name:         name,
		PasswordHash: hash,
		Provider:     user.ProviderLocal,
		Roles:        []string{user.RoleUser},
	})
	if errors.Is(err, user.ErrEmailTaken) {
		// Lost a race against a concurrent signup for the same email.
		return nil, ErrDuplicateAccount
	}
	if err != nil {
		return nil, err
	}

	s.sendWelcome(ctx, u)

	return s.issue(u)
}

// Login authenticates a local account. Password login never succeeds against
// an account whose provider is not LOCAL: such accounts have no hash the
// user ever set, and accepting one would allow account takeover.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, user.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if u.Provider != user.ProviderLocal || u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := credentials.Verify(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(u)
}

// CompleteOAuth reconciles a pre-verified external identity and issues a
// session token. Trust in the identity is delegated to the OAuth provider;
// no further credential check happens here.
func (s *Service) CompleteOAuth(ctx context.Context, identity *auth.Identity) (*Session, error) {
	u, err := s.reconciler.Reconcile(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Reissue produces a fresh token for an already-authenticated subject.
func (s *Service) Reissue(ctx context.Context, subject string) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, user.NormalizeEmail(subject))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.issue(u)
}

func (s *Service) issue(u *user.User) (*Session, error) {
	role := u.PrimaryRole()
	tok, err := s.tokens.Issue(u.Email, role, u.Name, u.AvatarURL)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token: tok,
		Email: u.Email,
		Name:  u.Name,
		Role:  role,
	}, nil
}

// sendWelcome delivers the new-account mail; failures are logged, never
// propagated into the signup flow.
func (s *Service) sendWelcome(ctx context.Context, u *user.User) {
	if s.sender == nil {
		return
	}
	if err := s.sender.SendWelcome(ctx, u.Email, u.Name); err != nil {
		logger.Error("welcome notification failed", map[string]any{
			"email": u.Email,
			"error": err.Error(),
		})
	}
}
