package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Count(ctx context.Context) (int, error)
}

// SQLiteUserRepository implements UserRepository using SQLite.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed user repository.
func NewUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Create inserts a new user account. The ID is generated if empty.
// Returns ErrEmailExists when the email is already registered.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = "usr-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	user.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	user.UpdatedAt = user.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their unique ID.
func (r *SQLiteUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getUser(ctx,
		"SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE id = ?", id)
}

// GetByEmail retrieves a user by their email address.
func (r *SQLiteUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getUser(ctx,
		"SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE email = ?", email)
}

// Count returns the total number of user accounts.
func (r *SQLiteUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// getUser executes a query and scans a single user result.
func (r *SQLiteUserRepository) getUser(ctx context.Context, query string, args ...any) (*User, error) {
	var u User
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	u.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &u, nil
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
