package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vytor/ghmutuals/internal/errors"
	"github.com/vytor/ghmutuals/internal/logger"
)

const (
	rateLimitedMessage = "GitHub's API rate limit was reached. Sign in with a GitHub token to raise your limit, or try again later."
	genericMessage     = "Something went wrong while loading this user. Please try again."
)

// userMessage is what the search page shows for a failed search. Only rate
// limiting gets its own wording.
func userMessage(code, message string) string {
	switch code {
	case errors.ErrCodeRateLimited:
		return rateLimitedMessage
	case errors.ErrCodeValidation, errors.ErrCodeBadRequest:
		return message
	default:
		return genericMessage
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") || strings.Contains(r.Header.Get("Accept"), "application/json")
}

// handleError centralizes error handling for HTTP responses
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr := errors.Wrap(err)

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}

	if wantsJSON(r) {
		writeJSON(w, appErr.Status, map[string]any{
			"error": map[string]any{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(appErr.Status)
	s.renderHome(w, r, userMessage(appErr.Code, appErr.Message))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
