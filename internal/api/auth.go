package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rdelacroix/inkwell/internal/auth"
)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 8

// registerRequest is the payload for POST /api/register.
type registerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// loginRequest is the payload for POST /api/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse carries the user and their freshly issued raw token. The raw
// token appears here and nowhere else.
type authResponse struct {
	User  *auth.User `json:"user"`
	Token string     `json:"token"`
}

// handleRegister creates a new user account and issues its first token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	errs := map[string][]string{}
	if req.Name == "" {
		errs["name"] = append(errs["name"], "The name field is required.")
	} else if len(req.Name) > 255 {
		errs["name"] = append(errs["name"], "The name field must not be greater than 255 characters.")
	}
	if req.Email == "" {
		errs["email"] = append(errs["email"], "The email field is required.")
	} else if !auth.IsValidEmail(req.Email) {
		errs["email"] = append(errs["email"], "The email field must be a valid email address.")
	}
	if req.Password == "" {
		errs["password"] = append(errs["password"], "The password field is required.")
	} else if len(req.Password) < minPasswordLength {
		errs["password"] = append(errs["password"], "The password field must be at least 8 characters.")
	}
	if req.Password != req.PasswordConfirmation {
		errs["password"] = append(errs["password"], "The password field confirmation does not match.")
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		writeInternalError(w, "failed to create account")
		return
	}

	user := &auth.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			writeValidationErrors(w, map[string][]string{
				"email": {"The email has already been taken."},
			})
			return
		}
		s.logger.Error("failed to create user", "error", err)
		writeInternalError(w, "failed to create account")
		return
	}

	raw, err := s.issueToken(r, user.ID)
	if err != nil {
		s.logger.Error("failed to issue token", "error", err, "user_id", user.ID)
		writeInternalError(w, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{User: user, Token: raw})
}

// handleLogin verifies credentials and issues a new token.
//
// Unknown email and wrong password produce the same 401 so the response
// does not reveal which accounts exist.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	errs := map[string][]string{}
	if req.Email == "" {
		errs["email"] = append(errs["email"], "The email field is required.")
	}
	if req.Password == "" {
		errs["password"] = append(errs["password"], "The password field is required.")
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	user, err := s.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeUnauthorized(w, "invalid credentials")
			return
		}
		s.logger.Error("failed to load user", "error", err)
		writeInternalError(w, "login failed")
		return
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("failed to verify password", "error", err, "user_id", user.ID)
		writeInternalError(w, "login failed")
		return
	}
	if !ok {
		writeUnauthorized(w, "invalid credentials")
		return
	}

	raw, err := s.issueToken(r, user.ID)
	if err != nil {
		s.logger.Error("failed to issue token", "error", err, "user_id", user.ID)
		writeInternalError(w, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: user, Token: raw})
}

// handleLogout revokes exactly the token presented on this request.
// Other sessions of the same user stay valid.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	if err := s.tokens.DeleteByHash(r.Context(), id.TokenHash); err != nil {
		s.logger.Error("failed to revoke token", "error", err, "user_id", id.User.ID)
		writeInternalError(w, "logout failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully.",
	})
}

// handleCurrentUser returns the account bound to the presented token.
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	writeJSON(w, http.StatusOK, id.User)
}

// issueToken generates a fresh opaque token, stores its hash bound to the
// user, and returns the raw token for the response.
func (s *Server) issueToken(r *http.Request, userID string) (string, error) {
	raw, err := auth.GenerateToken()
	if err != nil {
		return "", err
	}

	token := &auth.AccessToken{
		UserID:    userID,
		TokenHash: auth.HashToken(raw),
	}
	if err := s.tokens.Create(r.Context(), token); err != nil {
		return "", err
	}

	return raw, nil
}
