package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/utpal16raj09/flfe/internal/token"
	"github.com/utpal16raj09/flfe/internal/user"
)

// Principal is the immutable authenticated identity bound into the request
// context. Downstream authorization reads it; nothing mutates it.
type Principal struct {
	Email string
	Name  string
	Roles []string
}

// HasRole reports whether the principal carries the given role.
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// unexported, collision-proof context key
type principalContextKeyType struct{}

var principalKey = principalContextKeyType{}

// PrincipalFromContext extracts the authenticated principal from context.
// The second return value is false for anonymous requests.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// WithPrincipal binds a principal into the context. Exposed for tests and
// for adapters that authenticate outside the HTTP gate.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// AuthGate authenticates requests from bearer tokens. It never rejects:
// every failure downgrades the request to anonymous, and whether anonymous
// access is acceptable is a downstream authorization decision.
type AuthGate struct {
	tokens *token.Service
	users  user.Store
}

func NewAuthGate(tokens *token.Service, users user.Store) *AuthGate {
	return &AuthGate{tokens: tokens, users: users}
}

// Authenticate resolves the caller's identity and binds it into the request
// context. Safe to run multiple times in one pipeline: an already-bound
// principal is left untouched.
func (g *AuthGate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if _, ok := PrincipalFromContext(ctx); ok {
			next.ServeHTTP(w, r)
			return
		}

		raw := bearerToken(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := g.tokens.Verify(raw)
		if err != nil {
			// Malformed, bad signature or expired: all downgrade to
			// anonymous without telling the caller which one it was.
			next.ServeHTTP(w, r)
			return
		}

		u, err := g.users.FindByEmail(ctx, claims.Subject)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		principal := &Principal{
			Email: u.Email,
			Name:  u.Name,
			Roles: append([]string(nil), u.Roles...),
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
	})
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// Missing header or a different scheme yields the empty string.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
