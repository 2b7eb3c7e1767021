package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/example/boardgame-tables/internal/persistence"
	"github.com/example/boardgame-tables/internal/proposition"
)

// UserRepository implements persistence.UserRepository using SQLite
type UserRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	now    func() time.Time
}

// UpsertUser inserts the user or refreshes the stored identity fields.
func (r *UserRepository) UpsertUser(ctx context.Context, user proposition.User) error {
	if strings.TrimSpace(user.ID) == "" {
		return persistence.ErrConstraintViolation
	}

	now := formatInstant(r.now())
	query := `
		INSERT INTO users (id, username, email, is_admin, is_banned, created_at, updated_at)
		VALUES (?, NULLIF(?, ''), ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			email = excluded.email,
			is_admin = excluded.is_admin,
			is_banned = excluded.is_banned,
			updated_at = excluded.updated_at
	`
	_, err := r.pool.DB().ExecContext(ctx, query,
		user.ID,
		strings.TrimSpace(user.Username),
		normalizeEmail(user.Email),
		boolToInt(user.IsAdmin),
		boolToInt(user.IsBanned),
		now,
		now,
	)
	return r.mapper.MapError(err)
}

// GetUser retrieves a user by ID
func (r *UserRepository) GetUser(ctx context.Context, id string) (proposition.User, error) {
	query := `
		SELECT id, COALESCE(username, ''), email, is_admin, is_banned
		FROM users
		WHERE id = ?
	`
	var user proposition.User
	err := r.pool.DB().QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.IsAdmin,
		&user.IsBanned,
	)
	if err != nil {
		return proposition.User{}, r.mapper.MapError(err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
