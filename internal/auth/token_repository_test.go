package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestTokenRepository_CreateAndGetByHash(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepository(db)

	user := seedTestUser(t, db, "Ana Martin", "ana@example.com")
	raw, token := seedTestToken(t, db, user.ID)

	if !strings.HasPrefix(token.ID, "tok-") {
		t.Errorf("generated ID = %q, want tok- prefix", token.ID)
	}

	got, err := repo.GetByHash(context.Background(), HashToken(raw))
	if err != nil {
		t.Fatalf("GetByHash() error = %v", err)
	}
	if got.UserID != user.ID {
		t.Errorf("GetByHash() user = %q, want %q", got.UserID, user.ID)
	}
	if got.LastUsedAt != nil {
		t.Error("fresh token should have no last_used_at")
	}
}

func TestTokenRepository_GetByHash_Unknown(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepository(db)

	_, err := repo.GetByHash(context.Background(), HashToken("never-issued"))
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("GetByHash() error = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenRepository_DeleteByHash_Revokes(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepository(db)

	user := seedTestUser(t, db, "Ana Martin", "ana@example.com")
	raw, _ := seedTestToken(t, db, user.ID)
	hash := HashToken(raw)

	if err := repo.DeleteByHash(context.Background(), hash); err != nil {
		t.Fatalf("DeleteByHash() error = %v", err)
	}

	// A revoked token must never resolve again
	if _, err := repo.GetByHash(context.Background(), hash); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("GetByHash() after revocation error = %v, want ErrTokenInvalid", err)
	}

	// Revoking again is a no-op
	if err := repo.DeleteByHash(context.Background(), hash); err != nil {
		t.Errorf("DeleteByHash() on revoked token error = %v, want nil", err)
	}
}

func TestTokenRepository_DeleteAllForUser(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepository(db)

	ana := seedTestUser(t, db, "Ana Martin", "ana@example.com")
	bruno := seedTestUser(t, db, "Bruno Keller", "bruno@example.com")

	anaRaw1, _ := seedTestToken(t, db, ana.ID)
	anaRaw2, _ := seedTestToken(t, db, ana.ID)
	brunoRaw, _ := seedTestToken(t, db, bruno.ID)

	count, err := repo.DeleteAllForUser(context.Background(), ana.ID)
	if err != nil {
		t.Fatalf("DeleteAllForUser() error = %v", err)
	}
	if count != 2 {
		t.Errorf("DeleteAllForUser() = %d, want 2", count)
	}

	for _, raw := range []string{anaRaw1, anaRaw2} {
		if _, err := repo.GetByHash(context.Background(), HashToken(raw)); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("ana's token should be revoked, got error = %v", err)
		}
	}

	// Bruno's token is untouched
	if _, err := repo.GetByHash(context.Background(), HashToken(brunoRaw)); err != nil {
		t.Errorf("bruno's token should survive, got error = %v", err)
	}
}

func TestTokenRepository_Touch(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepository(db)

	user := seedTestUser(t, db, "Ana Martin", "ana@example.com")
	raw, token := seedTestToken(t, db, user.ID)

	if err := repo.Touch(context.Background(), token.ID); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}

	got, err := repo.GetByHash(context.Background(), HashToken(raw))
	if err != nil {
		t.Fatalf("GetByHash() error = %v", err)
	}
	if got.LastUsedAt == nil {
		t.Error("Touch() should set last_used_at")
	}
}

func TestTokenRepository_CascadeOnUserDelete(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepository(db)

	user := seedTestUser(t, db, "Ana Martin", "ana@example.com")
	raw, _ := seedTestToken(t, db, user.ID)

	if _, err := db.Exec("DELETE FROM users WHERE id = ?", user.ID); err != nil {
		t.Fatalf("deleting user: %v", err)
	}

	if _, err := repo.GetByHash(context.Background(), HashToken(raw)); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("token should cascade-delete with its user, got error = %v", err)
	}
}
