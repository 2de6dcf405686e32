package user

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used in tests and local tooling.
// The mutex gives it the same guarantee the Postgres unique index gives the
// real store: concurrent Creates for one email produce exactly one record.
type MemoryStore struct {
	mu      sync.Mutex
	byEmail map[string]*User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byEmail: make(map[string]*User)}
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(u), nil
}

func (s *MemoryStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.byEmail[NormalizeEmail(email)]
	return ok, nil
}

func (s *MemoryStore) Create(ctx context.Context, u *User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	addr := NormalizeEmail(u.Email)
	if _, ok := s.byEmail[addr]; ok {
		return nil, ErrEmailTaken
	}

	now := time.Now()
	stored := clone(u)
	stored.ID = uuid.NewString()
	stored.Email = addr
	if len(stored.Roles) == 0 {
		stored.Roles = []string{RoleUser}
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.byEmail[addr] = stored
	return clone(stored), nil
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, email string, p ProfileUpdate) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}

	u.Name = p.Name
	u.AvatarURL = p.AvatarURL
	u.Provider = p.Provider
	u.UpdatedAt = time.Now()
	return clone(u), nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byEmail {
		if u.ID == id {
			return clone(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) List(ctx context.Context, offset, limit int) ([]User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]User, 0, len(s.byEmail))
	for _, u := range s.byEmail {
		all = append(all, *clone(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })

	total := len(all)
	if offset >= total {
		return []User{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *MemoryStore) Search(ctx context.Context, query string) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)
	var out []User
	for _, u := range s.byEmail {
		if strings.Contains(u.Email, q) || strings.Contains(strings.ToLower(u.Name), q) {
			out = append(out, *clone(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, name string, roles []string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byEmail {
		if u.ID == id {
			u.Name = name
			if len(roles) == 0 {
				roles = []string{RoleUser}
			}
			u.Roles = append([]string(nil), roles...)
			u.UpdatedAt = time.Now()
			return clone(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for addr, u := range s.byEmail {
		if u.ID == id {
			delete(s.byEmail, addr)
			return nil
		}
	}
	return ErrNotFound
}

func clone(u *User) *User {
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}
