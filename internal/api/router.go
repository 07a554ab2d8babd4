package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/logout", s.handleLogout)
			r.Get("/user", s.handleCurrentUser)

			r.Route("/articles", func(r chi.Router) {
				r.Get("/", s.handleListArticles)
				r.Post("/", s.handleCreateArticle)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetArticle)
					r.Put("/", s.handleUpdateArticle)
					r.Delete("/", s.handleDeleteArticle)
				})
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
