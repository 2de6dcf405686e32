package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Authentication origin of an account. Reflects the most recent successful
// login method, not the creation method.
const (
	ProviderLocal  = "LOCAL"
	ProviderGoogle = "GOOGLE"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

var (
	ErrNotFound   = errors.New("user: not found")
	ErrEmailTaken = errors.New("user: email already taken")
)

// User is the durable principal record, keyed by normalized email.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Provider     string    `db:"provider" json:"provider"`
	Roles        []string  `db:"-" json:"roles"`
	AvatarURL    string    `db:"avatar_url" json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// PrimaryRole is the role embedded into session tokens. Roles are an ordered
// sequence and index 0 is the primary, so the choice is deterministic.
func (u *User) PrimaryRole() string {
	if len(u.Roles) == 0 {
		return RoleUser
	}
	return u.Roles[0]
}

// NormalizeEmail lowercases and trims an email so it can serve as the unique
// account key. Every store call site must pass emails through here.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProfileUpdate carries the fields refreshed on every OAuth login.
// Roles and password hash are deliberately absent.
type ProfileUpdate struct {
	Name      string
	AvatarURL string
	Provider  string
}

// Store is the persistence contract. Create must fail with ErrEmailTaken when
// the normalized email already exists, even under concurrent inserts; that
// guarantee is what lets the reconciler collapse racing first logins into a
// single record.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *User) (*User, error)
	UpdateProfile(ctx context.Context, email string, p ProfileUpdate) (*User, error)

	// Administration surface.
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]User, int, error)
	Search(ctx context.Context, query string) ([]User, error)
	Update(ctx context.Context, id string, name string, roles []string) (*User, error)
	Delete(ctx context.Context, id string) error
}
