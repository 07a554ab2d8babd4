package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rdelacroix/inkwell/internal/article"
)

// Localized authorization messages, matched to what the frontend displays.
const (
	msgNotOwnerUpdate = "Vous n'êtes pas autorisé à modifier cet article."
	msgNotOwnerDelete = "Vous n'êtes pas autorisé à supprimer cet article."
	msgArticleDeleted = "Article supprimé avec succès"
)

// articleRequest is the payload for creating or updating an article.
type articleRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// handleListArticles returns one page of articles, newest first.
func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}

	result, err := s.articles.List(r.Context(), page)
	if err != nil {
		s.logger.Error("failed to list articles", "error", err)
		writeInternalError(w, "failed to list articles")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetArticle returns a single article with its author.
func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	a, err := s.articles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, article.ErrArticleNotFound) {
			writeNotFound(w, "article not found")
			return
		}
		s.logger.Error("failed to load article", "error", err)
		writeInternalError(w, "failed to load article")
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// handleCreateArticle creates an article owned by the authenticated user.
func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if errs := article.Validate(req.Title, req.Content); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	a := &article.Article{
		UserID:  id.User.ID,
		Title:   req.Title,
		Content: req.Content,
	}
	if err := s.articles.Create(r.Context(), a); err != nil {
		s.logger.Error("failed to create article", "error", err, "user_id", id.User.ID)
		writeInternalError(w, "failed to create article")
		return
	}
	a.User = id.User

	writeJSON(w, http.StatusCreated, a)
}

// handleUpdateArticle rewrites an article's title and content.
// Only the owner may update; update re-validates exactly like create.
func (s *Server) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	a, err := s.articles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, article.ErrArticleNotFound) {
			writeNotFound(w, "article not found")
			return
		}
		s.logger.Error("failed to load article", "error", err)
		writeInternalError(w, "failed to update article")
		return
	}

	// Ownership check precedes validation so a non-owner learns nothing
	// about what a valid payload looks like
	if a.UserID != id.User.ID {
		writeForbidden(w, msgNotOwnerUpdate)
		return
	}

	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if errs := article.Validate(req.Title, req.Content); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	a.Title = req.Title
	a.Content = req.Content
	if err := s.articles.Update(r.Context(), a); err != nil {
		if errors.Is(err, article.ErrArticleNotFound) {
			writeNotFound(w, "article not found")
			return
		}
		s.logger.Error("failed to update article", "error", err, "article_id", a.ID)
		writeInternalError(w, "failed to update article")
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// handleDeleteArticle removes an article. Only the owner may delete.
func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	a, err := s.articles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, article.ErrArticleNotFound) {
			writeNotFound(w, "article not found")
			return
		}
		s.logger.Error("failed to load article", "error", err)
		writeInternalError(w, "failed to delete article")
		return
	}

	if a.UserID != id.User.ID {
		writeForbidden(w, msgNotOwnerDelete)
		return
	}

	if err := s.articles.Delete(r.Context(), a.ID); err != nil {
		if errors.Is(err, article.ErrArticleNotFound) {
			writeNotFound(w, "article not found")
			return
		}
		s.logger.Error("failed to delete article", "error", err, "article_id", a.ID)
		writeInternalError(w, "failed to delete article")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": msgArticleDeleted,
	})
}
