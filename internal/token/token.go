package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the session token payload. The subject is the account email;
// role, name and picture mirror the stored profile at issuance time.
type Claims struct {
	Role    string `json:"role"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and verifies session tokens. The signing key is immutable
// after construction, so a single Service is safe for concurrent use.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

func NewService(signingKey []byte, issuer string, ttl time.Duration) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	if ttl <= 0 {
		return nil, errors.New("token: ttl must be positive")
	}
	return &Service{
		signingKey: signingKey,
		issuer:     issuer,
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

// Issue signs a token for the given subject. The TTL is fixed by
// configuration; callers cannot extend it per request.
func (s *Service) Issue(subject, role, name, picture string) (string, error) {
	if subject == "" {
		return "", errors.New("token: empty subject")
	}

	now := s.now()
	claims := Claims{
		Role:    role,
		Name:    name,
		Picture: picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// Verify parses and validates a token. Every failure path returns one of the
// typed errors below; attacker-controlled input never panics.
func (s *Service) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) { return s.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		default:
			return nil, ErrMalformed
		}
	}

	if claims.Subject == "" {
		return nil, ErrMalformed
	}

	return claims, nil
}
