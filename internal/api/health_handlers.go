package api

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/vytor/ghmutuals/internal/logger"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleReady returns 200 once the analytics store answers a ping. The body
// lists the pending jobs per queue.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if s.DB != nil {
		if err := s.DB.PingContext(r.Context()); err != nil {
			log.Warn("readiness check failed - database: %v", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Database unavailable"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready\n"))
	if s.Queue == nil {
		return
	}
	backlog := s.Queue.Backlog()
	names := make([]string, 0, len(backlog))
	for name := range backlog {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s_backlog=%d\n", name, backlog[name])
	}
}
