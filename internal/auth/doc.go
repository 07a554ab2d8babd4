// Package auth provides authentication primitives for Inkwell.
//
// It implements:
//   - Argon2id password hashing (OWASP recommendation)
//   - Opaque bearer tokens, stored hashed, revoked by deletion
//   - SQLite-backed user and token repositories
//
// Tokens carry no claims and no expiry: a token is valid exactly as long
// as its row exists in access_tokens. Logout deletes the row; deleting a
// row that is already gone is a no-op, so revocation is idempotent.
// A time-to-live policy is a possible future extension and deliberately
// not implemented here.
package auth
