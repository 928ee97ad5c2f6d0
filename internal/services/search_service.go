package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/vytor/ghmutuals/internal/compare"
	"github.com/vytor/ghmutuals/internal/errors"
	"github.com/vytor/ghmutuals/internal/github"
	"github.com/vytor/ghmutuals/internal/jobs"
	"github.com/vytor/ghmutuals/internal/logger"
	"github.com/vytor/ghmutuals/internal/models"
)

// SearchService handles follower comparisons
type SearchService interface {
	// Search compares synchronously and records the search on success.
	Search(ctx context.Context, username, token string, meta models.SearchMeta) (*models.FollowComparison, error)
	// StartSearch begins a comparison for a browser session in the background
	// and returns its run id. Any earlier run of the session is abandoned.
	StartSearch(ctx context.Context, sessionID, username, token string, meta models.SearchMeta) (string, error)
	Current(sessionID string) models.SearchState
	Reset(sessionID string)
	RateLimit(ctx context.Context, token string) (*models.RateLimit, error)
}

type searchService struct {
	client    github.ClientInterface
	comparer  *compare.Comparer
	tracker   *compare.Tracker
	analytics AnalyticsService
	queue     jobs.JobQueue
}

// NewSearchService creates a new SearchService. Background runs go through queue.
func NewSearchService(client github.ClientInterface, tracker *compare.Tracker, analytics AnalyticsService, queue jobs.JobQueue) SearchService {
	return &searchService{
		client:    client,
		comparer:  compare.NewComparer(client),
		tracker:   tracker,
		analytics: analytics,
		queue:     queue,
	}
}

func (s *searchService) Search(ctx context.Context, username, token string, meta models.SearchMeta) (*models.FollowComparison, error) {
	username, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).WithField("username", username)
	log.Debug("searching")

	result, err := s.comparer.Compare(ctx, username, token)
	if err != nil {
		return nil, err
	}

	s.analytics.Record(ctx, username, meta)
	return result, nil
}

func (s *searchService) StartSearch(ctx context.Context, sessionID, username, token string, meta models.SearchMeta) (string, error) {
	username, err := NormalizeUsername(username)
	if err != nil {
		return "", err
	}

	log := logger.FromContext(ctx).WithFields(map[string]any{
		"username": username,
		"session":  sessionID,
	})

	// The run outlives the request that started it.
	run := s.tracker.Begin(context.WithoutCancel(ctx), sessionID, username)
	if err := s.queue.EnqueueSearch(s, run, token, meta); err != nil {
		log.Warn("could not queue search: %v", err)
		appErr := errors.NewUnavailableError("too many searches in progress, try again shortly")
		s.tracker.Finish(run, nil, appErr)
		return "", appErr
	}

	log.Info("search queued: run=%s", run.ID)
	return run.ID, nil
}

// ExecuteRun runs a queued search and publishes its outcome to the tracker.
func (s *searchService) ExecuteRun(ctx context.Context, run compare.Run, token string, meta models.SearchMeta) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"username": run.Username,
		"run":      run.ID,
	})
	runCtx := logger.NewContext(run.Context(), log)

	result, err := s.comparer.Compare(runCtx, run.Username, token)
	if !s.tracker.Finish(run, result, err) {
		log.Info("discarding outcome of superseded run")
		return
	}
	if err != nil {
		return
	}
	s.analytics.Record(ctx, run.Username, meta)
}

func (s *searchService) Current(sessionID string) models.SearchState {
	return s.tracker.Current(sessionID)
}

func (s *searchService) Reset(sessionID string) {
	s.tracker.Reset(sessionID)
}

func (s *searchService) RateLimit(ctx context.Context, token string) (*models.RateLimit, error) {
	rl, err := s.client.FetchRateLimit(ctx, token)
	if err != nil {
		return nil, errors.Wrap(err)
	}
	return rl, nil
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9]+(-[A-Za-z0-9]+)*$`)

// NormalizeUsername trims whitespace and a leading @ and checks the GitHub
// login rules: up to 39 alphanumerics or single inner hyphens. The server and
// the CLI both validate handles with it.
func NormalizeUsername(raw string) (string, error) {
	username := strings.TrimPrefix(strings.TrimSpace(raw), "@")
	if username == "" {
		return "", errors.NewValidationError("username", "cannot be empty")
	}
	if len(username) > 39 {
		return "", errors.NewValidationError("username", "must be at most 39 characters")
	}
	if !usernameRe.MatchString(username) {
		return "", errors.NewValidationError("username", "may only contain letters, digits and single hyphens")
	}
	return username, nil
}
