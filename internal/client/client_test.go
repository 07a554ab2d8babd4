package client

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rdelacroix/inkwell/internal/api"
	"github.com/rdelacroix/inkwell/internal/article"
	"github.com/rdelacroix/inkwell/internal/auth"
	"github.com/rdelacroix/inkwell/internal/infrastructure/config"
	"github.com/rdelacroix/inkwell/internal/infrastructure/logging"
)

// testAPI spins up a real API server over a temporary database and
// returns its base URL.
func testAPI(t *testing.T) string {
	t.Helper()

	f, err := os.CreateTemp("", "client-test-*.db")
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

	schema := `
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

		CREATE TABLE articles (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			FOREIGN KEY (user_id) REFERENCES users(id)
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating test schema: %v", err)
	}

	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	srv, err := api.New(api.Deps{
		Logger:   log,
		Users:    auth.NewUserRepository(db),
		Tokens:   auth.NewTokenRepository(db),
		Articles: article.NewRepository(db),
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("api.New() error: %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

// testClient builds a client with a session file under a temp dir.
func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	session, err := NewSession(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	c, err := New(baseURL, session, log)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestClient_RegisterStoresToken(t *testing.T) {
	baseURL := testAPI(t)
	c := testClient(t, baseURL)

	user, err := c.Register(context.Background(), "Ana Martin", "ana@example.com", "secret-password", "secret-password")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Errorf("registered user = %+v", user)
	}
	if !c.Session().IsAuthenticated() {
		t.Error("session should hold the issued token")
	}

	// The cached token resolves the same account
	me, err := c.User(context.Background())
	if err != nil {
		t.Fatalf("User() error = %v", err)
	}
	if me.ID != user.ID {
		t.Errorf("User() id = %q, want %q", me.ID, user.ID)
	}
}

func TestClient_LoginAfterRestart(t *testing.T) {
	baseURL := testAPI(t)
	sessionPath := filepath.Join(t.TempDir(), "session.json")

	session, err := NewSession(sessionPath)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	c, err := New(baseURL, session, log)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	registered, err := c.Register(context.Background(), "Ana Martin", "ana@example.com", "secret-password", "secret-password")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Simulate a process restart: new session over the same file
	restarted, err := NewSession(sessionPath)
	if err != nil {
		t.Fatalf("NewSession() reload error = %v", err)
	}
	c2, err := New(baseURL, restarted, log)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	me, err := c2.User(context.Background())
	if err != nil {
		t.Fatalf("User() after restart error = %v", err)
	}
	if me.ID != registered.ID {
		t.Errorf("User() id = %q, want %q", me.ID, registered.ID)
	}
}

func TestClient_UserClearsSessionOn401(t *testing.T) {
	baseURL := testAPI(t)
	c := testClient(t, baseURL)

	if err := c.Session().SetToken("stale-or-revoked-token"); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}

	_, err := c.User(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("User() error = %v, want 401 APIError", err)
	}

	if c.Session().IsAuthenticated() {
		t.Error("session should be cleared after a 401")
	}
}

func TestClient_LogoutClearsSessionRegardless(t *testing.T) {
	baseURL := testAPI(t)
	c := testClient(t, baseURL)

	if _, err := c.Register(context.Background(), "Ana Martin", "ana@example.com", "secret-password", "secret-password"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	token := c.Session().Token()

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if c.Session().IsAuthenticated() {
		t.Error("session should be cleared after logout")
	}

	// The token was revoked server-side too
	if err := c.Session().SetToken(token); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}
	_, err := c.User(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("revoked token User() error = %v, want 401 APIError", err)
	}

	// Logging out while already logged out still succeeds
	if err := c.Session().Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if err := c.Logout(context.Background()); err != nil {
		t.Errorf("Logout() when logged out error = %v", err)
	}
}

func TestClient_ArticleLifecycle(t *testing.T) {
	baseURL := testAPI(t)
	ana := testClient(t, baseURL)
	bruno := testClient(t, baseURL)

	if _, err := ana.Register(context.Background(), "Ana Martin", "ana@example.com", "secret-password", "secret-password"); err != nil {
		t.Fatalf("Register(ana) error = %v", err)
	}
	if _, err := bruno.Register(context.Background(), "Bruno Keller", "bruno@example.com", "secret-password", "secret-password"); err != nil {
		t.Fatalf("Register(bruno) error = %v", err)
	}

	created, err := ana.CreateArticle(context.Background(), "Ana's Post", "hello")
	if err != nil {
		t.Fatalf("CreateArticle() error = %v", err)
	}
	if created.User == nil || created.User.Name != "Ana Martin" {
		t.Errorf("created article should embed its author, got %+v", created.User)
	}

	// A foreign account cannot update or delete
	var apiErr *APIError
	if _, err := bruno.UpdateArticle(context.Background(), created.ID, "Hijacked", "x"); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("foreign UpdateArticle() error = %v, want 403", err)
	}
	if _, err := bruno.DeleteArticle(context.Background(), created.ID); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("foreign DeleteArticle() error = %v, want 403", err)
	}

	// The owner can
	updated, err := ana.UpdateArticle(context.Background(), created.ID, "Ana's Post, Revised", "hello again")
	if err != nil {
		t.Fatalf("UpdateArticle() error = %v", err)
	}
	if updated.Title != "Ana's Post, Revised" {
		t.Errorf("updated title = %q", updated.Title)
	}

	page, err := bruno.ListArticles(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListArticles() error = %v", err)
	}
	if page.Total != 1 || len(page.Data) != 1 {
		t.Errorf("listing = total %d with %d articles, want 1 and 1", page.Total, len(page.Data))
	}

	msg, err := ana.DeleteArticle(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("DeleteArticle() error = %v", err)
	}
	if msg == "" {
		t.Error("DeleteArticle() should return the confirmation message")
	}

	if _, err := ana.GetArticle(context.Background(), created.ID); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("GetArticle() after delete error = %v, want 404", err)
	}
}
