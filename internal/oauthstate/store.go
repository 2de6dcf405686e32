package oauthstate

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utpal16raj09/flfe/internal/utils"
)

// TTL bounds how long an authorization redirect may stay in flight.
const TTL = 5 * time.Minute

var ErrStateNotFound = errors.New("oauthstate: unknown or expired state")

// Pending is one in-flight authorization attempt: the CSRF state value and
// the PKCE verifier that must accompany the code exchange.
type Pending struct {
	State    string
	Verifier string
}

// Challenge returns the S256 code challenge for the pending verifier.
func (p Pending) Challenge() string {
	sum := sha256.Sum256([]byte(p.Verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Store keeps pending authorization attempts in Redis, keyed by state.
// Entries are single-use: Consume deletes on read, so a replayed state
// fails validation.
type Store struct {
	client *redis.Client
	prefix string
}

func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		prefix: "oauthstate:",
	}
}

func (s *Store) key(state string) string {
	return s.prefix + state
}

// Begin creates and persists a new pending attempt.
func (s *Store) Begin(ctx context.Context) (Pending, error) {
	p := Pending{
		State:    utils.RandomString(32),
		Verifier: utils.RandomString(32),
	}

	if err := s.client.Set(ctx, s.key(p.State), p.Verifier, TTL).Err(); err != nil {
		return Pending{}, err
	}
	return p, nil
}

// Consume validates a callback state and returns the matching verifier.
// The entry is removed atomically, so each state is accepted at most once.
func (s *Store) Consume(ctx context.Context, state string) (Pending, error) {
	if state == "" {
		return Pending{}, ErrStateNotFound
	}

	verifier, err := s.client.GetDel(ctx, s.key(state)).Result()
	if errors.Is(err, redis.Nil) {
		return Pending{}, ErrStateNotFound
	}
	if err != nil {
		return Pending{}, err
	}

	return Pending{State: state, Verifier: verifier}, nil
}
