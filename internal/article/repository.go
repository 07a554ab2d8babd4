package article

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rdelacroix/inkwell/internal/auth"
)

// pageSize is the fixed number of articles per listing page.
const pageSize = 10

// Repository defines the interface for article persistence.
type Repository interface {
	List(ctx context.Context, page int) (*Page, error)
	Get(ctx context.Context, id string) (*Article, error)
	Create(ctx context.Context, a *Article) error
	Update(ctx context.Context, a *Article) error
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed article repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// articleColumns selects an article row joined with its owning user.
const articleColumns = `
	a.id, a.user_id, a.title, a.content, a.created_at, a.updated_at,
	u.id, u.name, u.email, u.created_at, u.updated_at
	FROM articles a
	JOIN users u ON u.id = a.user_id`

// List returns one page of articles, newest first. Pages below 1 are
// treated as page 1; a page past the end yields empty Data with correct
// metadata.
func (r *SQLiteRepository) List(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&total); err != nil {
		return nil, fmt.Errorf("counting articles: %w", err)
	}

	lastPage := (total + pageSize - 1) / pageSize
	if lastPage < 1 {
		lastPage = 1
	}

	// Tie-break on id so rows created in the same second keep a stable order
	rows, err := r.db.QueryContext(ctx,
		"SELECT"+articleColumns+`
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT ? OFFSET ?`,
		pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*Article, 0, pageSize)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating articles: %w", err)
	}

	return &Page{
		Data:        articles,
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     pageSize,
		Total:       total,
	}, nil
}

// Get retrieves a single article with its owner loaded.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Article, error) {
	row := r.db.QueryRowContext(ctx, "SELECT"+articleColumns+" WHERE a.id = ?", id)

	a, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return a, nil
}

// Create inserts a new article. The ID is generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, a *Article) error {
	if a.ID == "" {
		a.ID = "art-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	a.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	a.UpdatedAt = a.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO articles (id, user_id, title, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Title, a.Content, now, now,
	)
	if err != nil {
		return fmt.Errorf("creating article: %w", err)
	}

	return nil
}

// Update rewrites an article's title and content. The owner never changes.
// Returns ErrArticleNotFound when the article no longer exists.
func (r *SQLiteRepository) Update(ctx context.Context, a *Article) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		"UPDATE articles SET title = ?, content = ?, updated_at = ? WHERE id = ?",
		a.Title, a.Content, now, a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating article: %w", err)
	}

	affected, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if affected == 0 {
		return ErrArticleNotFound
	}

	a.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	return nil
}

// Delete removes an article. Deleting a missing article returns
// ErrArticleNotFound, so a second delete of the same id fails.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting article: %w", err)
	}

	affected, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if affected == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// scanner abstracts over *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanArticle scans a joined article+user row.
func scanArticle(s scanner) (*Article, error) {
	var a Article
	var u auth.User
	var aCreated, aUpdated, uCreated, uUpdated string

	err := s.Scan(
		&a.ID, &a.UserID, &a.Title, &a.Content, &aCreated, &aUpdated,
		&u.ID, &u.Name, &u.Email, &uCreated, &uUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning article: %w", err)
	}

	a.CreatedAt, _ = time.Parse(time.RFC3339, aCreated) //nolint:errcheck // format is controlled
	a.UpdatedAt, _ = time.Parse(time.RFC3339, aUpdated) //nolint:errcheck // format is controlled
	u.CreatedAt, _ = time.Parse(time.RFC3339, uCreated) //nolint:errcheck // format is controlled
	u.UpdatedAt, _ = time.Parse(time.RFC3339, uUpdated) //nolint:errcheck // format is controlled
	a.User = &u

	return &a, nil
}
