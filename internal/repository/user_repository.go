package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/restaurant-kot/internal/model"
)

// UserRepo reads staff accounts from the 'users' table.  Accounts are
// created by back office tooling, never by this service, so the repo is
// read-only.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// GetByUsername fetches a user by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,role,is_active,created_at,updated_at FROM users WHERE username=? LIMIT 1",
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,role,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
