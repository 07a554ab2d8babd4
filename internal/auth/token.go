package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the number of random bytes in a raw token (256-bit).
const tokenBytes = 32

// GenerateToken creates a cryptographically random opaque bearer token.
// The raw token is returned to the client; only its hash is stored.
func GenerateToken() (raw string, err error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashToken computes the SHA-256 hash of a raw token string for storage
// and lookup. Raw tokens are never stored, only their hashes.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
