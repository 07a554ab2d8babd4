package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rdelacroix/inkwell/internal/article"
	"github.com/rdelacroix/inkwell/internal/auth"
	"github.com/rdelacroix/inkwell/internal/infrastructure/logging"
)

// defaultTimeout bounds a single API call when the caller's context
// carries no deadline.
const defaultTimeout = 30 * time.Second

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int                 `json:"status"`
	Code       string              `json:"code"`
	Message    string              `json:"message"`
	Errors     map[string][]string `json:"errors,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// authPayload is the {user, token} body returned by register and login.
type authPayload struct {
	User  *auth.User `json:"user"`
	Token string     `json:"token"`
}

// messagePayload is a bare {message} body.
type messagePayload struct {
	Message string `json:"message"`
}

// Client issues typed requests against the Inkwell API.
//
// Register and Login persist the returned token into the session; every
// subsequent call attaches it as a bearer credential.
type Client struct {
	http    *http.Client
	baseURL string
	session *Session
	logger  *logging.Logger
}

// New creates a client for the API at baseURL using the given session.
func New(baseURL string, session *Session, logger *logging.Logger) (*Client, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	return &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		baseURL: baseURL,
		session: session,
		logger:  logger,
	}, nil
}

// Session returns the session backing this client.
func (c *Client) Session() *Session {
	return c.session
}

// Register creates an account and caches the issued token.
func (c *Client) Register(ctx context.Context, name, email, password, passwordConfirmation string) (*auth.User, error) {
	var resp authPayload
	err := c.do(ctx, http.MethodPost, "/api/register", map[string]string{
		"name":                  name,
		"email":                 email,
		"password":              password,
		"password_confirmation": passwordConfirmation,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if err := c.session.SetToken(resp.Token); err != nil {
		return nil, fmt.Errorf("caching token: %w", err)
	}
	return resp.User, nil
}

// Login authenticates and caches the issued token.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.User, error) {
	var resp authPayload
	err := c.do(ctx, http.MethodPost, "/api/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if err := c.session.SetToken(resp.Token); err != nil {
		return nil, fmt.Errorf("caching token: %w", err)
	}
	return resp.User, nil
}

// Logout ends the local session and then best-effort revokes the token
// server-side. The local session is cleared even when the server call
// fails, so the client is always logged out afterwards.
func (c *Client) Logout(ctx context.Context) error {
	token := c.session.Token()
	if err := c.session.Clear(); err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	if err := c.doWithToken(ctx, http.MethodPost, "/api/logout", token, nil, nil); err != nil {
		c.logger.Warn("server-side logout failed", "error", err)
	}
	return nil
}

// User fetches the account bound to the cached token. A 401 clears the
// session: the server has rejected the token, so caching it further
// would only repeat the failure.
func (c *Client) User(ctx context.Context) (*auth.User, error) {
	var user auth.User
	err := c.do(ctx, http.MethodGet, "/api/user", nil, &user)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			if clearErr := c.session.Clear(); clearErr != nil {
				c.logger.Warn("failed to clear rejected session", "error", clearErr)
			}
		}
		return nil, err
	}
	return &user, nil
}

// ListArticles fetches one page of the newest-first listing.
func (c *Client) ListArticles(ctx context.Context, page int) (*article.Page, error) {
	var result article.Page
	path := fmt.Sprintf("/api/articles?page=%d", page)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetArticle fetches a single article with its author.
func (c *Client) GetArticle(ctx context.Context, id string) (*article.Article, error) {
	var a article.Article
	if err := c.do(ctx, http.MethodGet, "/api/articles/"+url.PathEscape(id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateArticle creates an article owned by the authenticated user.
func (c *Client) CreateArticle(ctx context.Context, title, content string) (*article.Article, error) {
	var a article.Article
	err := c.do(ctx, http.MethodPost, "/api/articles", map[string]string{
		"title":   title,
		"content": content,
	}, &a)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateArticle rewrites an article's title and content.
func (c *Client) UpdateArticle(ctx context.Context, id, title, content string) (*article.Article, error) {
	var a article.Article
	err := c.do(ctx, http.MethodPut, "/api/articles/"+url.PathEscape(id), map[string]string{
		"title":   title,
		"content": content,
	}, &a)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteArticle removes an article and returns the server's confirmation
// message.
func (c *Client) DeleteArticle(ctx context.Context, id string) (string, error) {
	var resp messagePayload
	if err := c.do(ctx, http.MethodDelete, "/api/articles/"+url.PathEscape(id), nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// do issues a request with the cached session token.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doWithToken(ctx, method, path, c.session.Token(), body, out)
}

// doWithToken issues a request with an explicit bearer token ("" sends
// none) and decodes the response into out when it is non-nil.
func (c *Client) doWithToken(ctx context.Context, method, path, token string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{}
		//nolint:errcheck // a bare status is still a usable error
		json.NewDecoder(resp.Body).Decode(apiErr)
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
