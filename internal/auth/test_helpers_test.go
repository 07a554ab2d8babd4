package auth

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the auth schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "auth-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schemaSQL := `
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE TABLE access_tokens (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			token_hash TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			last_used_at TEXT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		) STRICT;

		CREATE INDEX idx_access_tokens_user_id ON access_tokens(user_id);
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying auth schema: %v", err)
	}

	return db
}

// seedTestUser inserts a test user and returns it.
func seedTestUser(t *testing.T, db *sql.DB, name, email string) *User {
	t.Helper()

	hash, err := HashPassword("test-password")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	repo := NewUserRepository(db)
	user := &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("creating test user %s: %v", email, err)
	}
	return user
}

// seedTestToken issues a token binding for a user and returns the raw token
// alongside the stored binding.
func seedTestToken(t *testing.T, db *sql.DB, userID string) (string, *AccessToken) {
	t.Helper()

	raw, err := GenerateToken()
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	repo := NewTokenRepository(db)
	token := &AccessToken{
		UserID:    userID,
		TokenHash: HashToken(raw),
	}
	if err := repo.Create(context.Background(), token); err != nil {
		t.Fatalf("creating test token: %v", err)
	}
	return raw, token
}
