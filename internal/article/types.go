package article

import (
	"errors"
	"time"

	"github.com/rdelacroix/inkwell/internal/auth"
)

// Article represents a blog post owned by a single user.
//
// UserID is set at creation and never changes; no update path touches it.
// User carries the loaded owner for API responses.
type Article struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	User      *auth.User `json:"user,omitempty"`
}

// Page is one page of a newest-first article listing.
type Page struct {
	Data        []*Article `json:"data"`
	CurrentPage int        `json:"current_page"`
	LastPage    int        `json:"last_page"`
	PerPage     int        `json:"per_page"`
	Total       int        `json:"total"`
}

// Sentinel errors for article operations.
var (
	ErrArticleNotFound = errors.New("article not found")
)
