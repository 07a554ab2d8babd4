package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TokenRepository defines the interface for access token persistence.
//
// A stored row is the token→user binding. Issuance inserts a row,
// resolution looks one up by hash, revocation deletes it.
type TokenRepository interface {
	Create(ctx context.Context, token *AccessToken) error
	GetByHash(ctx context.Context, tokenHash string) (*AccessToken, error)
	DeleteByHash(ctx context.Context, tokenHash string) error
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
	Touch(ctx context.Context, id string) error
}

// SQLiteTokenRepository implements TokenRepository using SQLite.
type SQLiteTokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new SQLite-backed token repository.
func NewTokenRepository(db *sql.DB) *SQLiteTokenRepository {
	return &SQLiteTokenRepository{db: db}
}

// Create inserts a new access token binding. The ID is generated if empty.
func (r *SQLiteTokenRepository) Create(ctx context.Context, token *AccessToken) error {
	if token.ID == "" {
		token.ID = "tok-" + uuid.NewString()[:16]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	token.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO access_tokens (id, user_id, token_hash, created_at)
		 VALUES (?, ?, ?, ?)`,
		token.ID, token.UserID, token.TokenHash, now,
	)
	if err != nil {
		return fmt.Errorf("creating access token: %w", err)
	}

	return nil
}

// GetByHash retrieves an access token binding by its SHA-256 hash.
// Returns ErrTokenInvalid when no binding exists; a revoked token is
// indistinguishable from one that never existed.
func (r *SQLiteTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*AccessToken, error) {
	var t AccessToken
	var createdAt string
	var lastUsedAt sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, created_at, last_used_at
		 FROM access_tokens WHERE token_hash = ?`, tokenHash,
	).Scan(&t.ID, &t.UserID, &t.TokenHash, &createdAt, &lastUsedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("getting access token: %w", err)
	}

	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	if lastUsedAt.Valid {
		used, _ := time.Parse(time.RFC3339, lastUsedAt.String) //nolint:errcheck // format is controlled
		t.LastUsedAt = &used
	}

	return &t, nil
}

// DeleteByHash revokes a token by deleting its binding.
// Deleting a hash with no binding is a no-op, so revocation is idempotent.
func (r *SQLiteTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM access_tokens WHERE token_hash = ?", tokenHash)
	if err != nil {
		return fmt.Errorf("deleting access token: %w", err)
	}
	return nil
}

// DeleteAllForUser revokes every token belonging to a user.
// Returns the number of deleted bindings.
func (r *SQLiteTokenRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM access_tokens WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("deleting tokens for user: %w", err)
	}

	count, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return count, nil
}

// Touch records that a token was just used.
func (r *SQLiteTokenRepository) Touch(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE access_tokens SET last_used_at = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("touching access token: %w", err)
	}
	return nil
}
