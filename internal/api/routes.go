package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// apiTimeout bounds the synchronous JSON endpoints.
const apiTimeout = 2 * time.Minute

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/privacy", s.handlePrivacy)

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(apiTimeout))
		r.Get("/compare/{handle}", s.handleAPICompare)
		r.Get("/searches/recent", s.handleAPIRecentSearches)
		r.Get("/searches/top", s.handleAPITopSearches)
		r.Get("/searches/count/{handle}", s.handleAPISearchCount)
		r.Get("/rate-limit", s.handleAPIRateLimit)
	})

	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware)
		r.Get("/", s.handleHome)
		r.Post("/search", s.handleSearch)
		r.Post("/reset", s.handleReset)
		r.Post("/token", s.handleSaveToken)
		r.Get("/export.csv", s.handleExportCSV)
	})

	return r
}
