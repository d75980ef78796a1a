package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/restaurant-kot/internal/model"
)

// TokenRepo persists and validates refresh tokens.  Only the SHA-256 hash
// of a token ever reaches the database.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return err
}

// ValidateRefresh returns the owning userID if a non-revoked, non-expired
// token with the given hash exists.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		tok       model.RefreshToken
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&tok.ID, &tok.UserID, &tok.ExpiresAt, &revokedAt, &tok.CreatedAt)
	if err != nil {
		return 0, err
	}
	if revokedAt.Valid {
		tok.RevokedAt = &revokedAt.Time
	}
	if tok.RevokedAt != nil || time.Now().UTC().After(tok.ExpiresAt) {
		return 0, sql.ErrNoRows
	}
	return tok.UserID, nil
}

// RevokeByHash marks a token as revoked.  Revoking an already revoked or
// unknown hash is a no-op.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}
