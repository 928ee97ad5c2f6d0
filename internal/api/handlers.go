package api

import (
	"context"
	"encoding/csv"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/ghmutuals/internal/errors"
	"github.com/vytor/ghmutuals/internal/logger"
	"github.com/vytor/ghmutuals/internal/models"
	"github.com/vytor/ghmutuals/internal/services"
)

// pageSize is how many accounts each list shows per "show more" step.
const pageSize = 9

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Backlogger reports pending background jobs per queue.
type Backlogger interface {
	Backlog() map[string]int
}

type Server struct {
	SearchService    services.SearchService
	AnalyticsService services.AnalyticsService
	DB               Pinger
	Queue            Backlogger
	Templates        *template.Template
	// DefaultToken is used when the request carries no GitHub token.
	DefaultToken string
}

type listView struct {
	Title   string
	Empty   string
	List    string
	Users   []models.GitHubUser
	Total   int
	More    bool
	MoreURL string
}

type homeView struct {
	Title            string
	Query            string
	State            models.SearchState
	Loading          bool
	Error            string
	HasToken         bool
	Mutuals          listView
	NotFollowingBack listView
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Debug("rendering home page")
	s.renderHome(w, r, "")
}

// renderHome renders the search page for the current session. errMsg, when
// set, takes precedence over the failure stored in the session.
func (s *Server) renderHome(w http.ResponseWriter, r *http.Request, errMsg string) {
	state := s.SearchService.Current(sessionFromContext(r.Context()))

	shownMutuals := countParam(r, "mutuals")
	shownNFB := countParam(r, "nfb")

	view := homeView{
		Query:    state.Username,
		State:    state,
		Loading:  state.Status == models.SearchLoading,
		Error:    errMsg,
		HasToken: s.requestToken(r) != "",
	}
	if view.Error == "" && state.Status == models.SearchFailed {
		view.Error = userMessage(state.ErrorCode, state.ErrorMessage)
	}
	if state.Result != nil {
		view.Title = state.Result.SearchedUser.Login
		view.Mutuals = buildList(state.Result.Mutuals, shownMutuals,
			fmt.Sprintf("/?mutuals=%d&nfb=%d", shownMutuals+pageSize, shownNFB))
		view.Mutuals.Title = "Mutuals"
		view.Mutuals.Empty = "Nobody this user follows follows them back."
		view.Mutuals.List = listMutuals

		view.NotFollowingBack = buildList(state.Result.NotFollowingBack, shownNFB,
			fmt.Sprintf("/?mutuals=%d&nfb=%d", shownMutuals, shownNFB+pageSize))
		view.NotFollowingBack.Title = "Not following back"
		view.NotFollowingBack.Empty = "Everyone this user follows follows them back."
		view.NotFollowingBack.List = listNotFollowingBack
	}

	s.render(w, r, "pages/home.html", view)
}

func buildList(users []models.GitHubUser, shown int, moreURL string) listView {
	v := listView{Total: len(users)}
	if shown >= len(users) {
		v.Users = users
		return v
	}
	v.Users = users[:shown]
	v.More = true
	v.MoreURL = moreURL
	return v
}

// countParam reads a "show more" counter; anything missing or invalid
// falls back to one page.
func countParam(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < pageSize {
		return pageSize
	}
	return n
}

func (s *Server) handlePrivacy(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "pages/privacy.html", homeView{Title: "Privacy"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	session := sessionFromContext(r.Context())
	username := r.FormValue("username")

	runID, err := s.SearchService.StartSearch(r.Context(), session, username, s.requestToken(r), searchMeta(r))
	if err != nil {
		if errors.Code(err) == errors.ErrCodeUnavailable {
			// The session already shows the failure.
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.handleError(w, r, err)
		return
	}

	log.Debug("search started: run=%s", runID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.SearchService.Reset(sessionFromContext(r.Context()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSaveToken(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.FormValue("token"))
	if token == "" {
		logger.FromContext(r.Context()).Debug("clearing token cookie")
		clearTokenCookie(w)
	} else {
		setTokenCookie(w, r, token)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

const (
	listMutuals          = "mutuals"
	listNotFollowingBack = "not-following-back"
)

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	state := s.SearchService.Current(sessionFromContext(r.Context()))
	if state.Result == nil {
		s.handleError(w, r, errors.NewNotFoundError("search result", "current session"))
		return
	}

	list := r.URL.Query().Get("list")
	var users []models.GitHubUser
	switch list {
	case listMutuals, "":
		list = listMutuals
		users = state.Result.Mutuals
	case listNotFollowingBack:
		users = state.Result.NotFollowingBack
	default:
		s.handleError(w, r, errors.NewBadRequestError("list must be mutuals or not-following-back"))
		return
	}

	filename := fmt.Sprintf("%s-%s.csv", state.Result.SearchedUser.Login, list)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "login", "html_url", "avatar_url"})
	for _, u := range users {
		_ = cw.Write([]string{strconv.FormatInt(u.ID, 10), u.Login, u.HTMLURL, u.AvatarURL})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Error("failed to write csv: %v", err)
		return
	}
	log.Debug("exported %d rows from %s", len(users), list)
}

func (s *Server) handleAPICompare(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	result, err := s.SearchService.Search(r.Context(), handle, s.requestToken(r), searchMeta(r))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAPIRecentSearches(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	records, err := s.AnalyticsService.Recent(r.Context(), limit)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if records == nil {
		records = []models.SearchRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"searches": records})
}

func (s *Server) handleAPITopSearches(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	counts, err := s.AnalyticsService.TopUsernames(r.Context(), limit)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if counts == nil {
		counts = []models.SearchCount{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"usernames": counts})
}

func (s *Server) handleAPISearchCount(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	count, err := s.AnalyticsService.CountByUsername(r.Context(), handle)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SearchCount{Username: handle, Count: count})
}

// limitParam reads an optional positive ?limit; zero means the default.
func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.NewBadRequestError("limit must be a positive integer")
	}
	return n, nil
}

func (s *Server) handleAPIRateLimit(w http.ResponseWriter, r *http.Request) {
	rl, err := s.SearchService.RateLimit(r.Context(), s.requestToken(r))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rl)
}

// requestToken picks the GitHub token for r: bearer header, then the token
// cookie, then the server default. It may be empty.
func (s *Server) requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(tokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return s.DefaultToken
}

func searchMeta(r *http.Request) models.SearchMeta {
	return models.SearchMeta{
		CallerID:  r.Header.Get("X-Caller-ID"),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	log := logger.FromContext(r.Context())
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	if err := s.Templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error("failed to render template %s: %v", name, err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}
