package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// PostgresStore implements Store on top of the users table.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type userRow struct {
	ID           string         `db:"id"`
	Email        string         `db:"email"`
	Name         string         `db:"name"`
	PasswordHash string         `db:"password_hash"`
	Provider     string         `db:"provider"`
	Roles        pq.StringArray `db:"roles"`
	AvatarURL    string         `db:"avatar_url"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r userRow) toUser() *User {
	return &User{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		Provider:     r.Provider,
		Roles:        []string(r.Roles),
		AvatarURL:    r.AvatarURL,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

const userColumns = `id, email, name, password_hash, provider, roles, avatar_url, created_at, updated_at`

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		NormalizeEmail(email),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toUser(), nil
}

func (s *PostgresStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`,
		NormalizeEmail(email),
	)
	return exists, err
}

// Create inserts a new account. The unique index on email serializes
// concurrent first logins; the loser receives ErrEmailTaken.
func (s *PostgresStore) Create(ctx context.Context, u *User) (*User, error) {
	roles := u.Roles
	if len(roles) == 0 {
		roles = []string{RoleUser}
	}

	var row userRow
	err := s.db.GetContext(ctx, &row, `
		INSERT INTO users (id, email, name, password_hash, provider, roles, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns,
		uuid.NewString(),
		NormalizeEmail(u.Email),
		u.Name,
		u.PasswordHash,
		u.Provider,
		pq.Array(roles),
		u.AvatarURL,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return row.toUser(), nil
}

// UpdateProfile refreshes the fields rewritten on every OAuth login.
// Roles and password hash are never touched here.
func (s *PostgresStore) UpdateProfile(ctx context.Context, email string, p ProfileUpdate) (*User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `
		UPDATE users
		SET name = $2, avatar_url = $3, provider = $4, updated_at = NOW()
		WHERE email = $1
		RETURNING `+userColumns,
		NormalizeEmail(email),
		p.Name,
		p.AvatarURL,
		p.Provider,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toUser(), nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toUser(), nil
}

func (s *PostgresStore) List(ctx context.Context, offset, limit int) ([]User, int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, err
	}

	var rows []userRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, 0, err
	}

	users := make([]User, 0, len(rows))
	for _, r := range rows {
		users = append(users, *r.toUser())
	}
	return users, total, nil
}

func (s *PostgresStore) Search(ctx context.Context, query string) ([]User, error) {
	var rows []userRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+userColumns+` FROM users
		 WHERE email ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%'
		 ORDER BY email`,
		query,
	)
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(rows))
	for _, r := range rows {
		users = append(users, *r.toUser())
	}
	return users, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, name string, roles []string) (*User, error) {
	if len(roles) == 0 {
		roles = []string{RoleUser}
	}

	var row userRow
	err := s.db.GetContext(ctx, &row, `
		UPDATE users
		SET name = $2, roles = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, name, pq.Array(roles),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toUser(), nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
