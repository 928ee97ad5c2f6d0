package compare

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/ghmutuals/internal/errors"
	"github.com/vytor/ghmutuals/internal/logger"
	"github.com/vytor/ghmutuals/internal/models"
)

// Run identifies one search started for a session. Only the newest run of a
// session may publish its outcome.
type Run struct {
	ID       string
	Session  string
	Username string

	ctx    context.Context
	cancel context.CancelFunc
}

// Context is cancelled when the run is superseded, reset or finished.
func (r Run) Context() context.Context {
	return r.ctx
}

func (r Run) Cancel() {
	if r.cancel != nil {
		r.cancel()
	}
}

type session struct {
	state   models.SearchState
	cancel  context.CancelFunc
	touched time.Time
}

// Tracker keeps the current search state of each browser session and drops
// outcomes of runs that were superseded before they completed.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

func NewTracker(ttl time.Duration) *Tracker {
	return &Tracker{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Begin starts a new run for sessionID, cancelling any run still in flight
// for it. The session state switches to loading with no result.
func (t *Tracker) Begin(ctx context.Context, sessionID, username string) Run {
	runCtx, cancel := context.WithCancel(ctx)
	run := Run{
		ID:       uuid.NewString(),
		Session:  sessionID,
		Username: username,
		ctx:      runCtx,
		cancel:   cancel,
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		s = &session{}
		t.sessions[sessionID] = s
	}
	if s.cancel != nil {
		logger.FromContext(ctx).WithPrefix("tracker").Debug("superseding run %s for session %s", s.state.RunID, sessionID)
		s.cancel()
	}
	now := t.now()
	s.state = models.SearchState{
		RunID:     run.ID,
		Username:  username,
		Status:    models.SearchLoading,
		StartedAt: now,
	}
	s.cancel = cancel
	s.touched = now
	return run
}

// Finish publishes the outcome of run. It reports false, and changes
// nothing, when a newer run or a reset replaced it in the meantime.
func (t *Tracker) Finish(run Run, result *models.FollowComparison, err error) bool {
	defer run.Cancel()

	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[run.Session]
	if !ok || s.state.RunID != run.ID {
		return false
	}

	now := t.now()
	s.state.FinishedAt = now
	s.touched = now
	s.cancel = nil
	if err != nil {
		appErr := errors.Wrap(err)
		s.state.Status = models.SearchFailed
		s.state.ErrorCode = appErr.Code
		s.state.ErrorMessage = appErr.Message
		s.state.Result = nil
		return true
	}
	s.state.Status = models.SearchDone
	s.state.Result = result
	return true
}

// Current returns a copy of the session state; unknown sessions are idle.
func (t *Tracker) Current(sessionID string) models.SearchState {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		return models.SearchState{Status: models.SearchIdle}
	}
	s.touched = t.now()
	return s.state
}

// Reset cancels any in-flight run and forgets the session.
func (t *Tracker) Reset(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.sessions[sessionID]; ok {
		if s.cancel != nil {
			s.cancel()
		}
		delete(t.sessions, sessionID)
	}
}

// Prune drops sessions idle for longer than the TTL and returns how many
// were removed. Sessions with a run in flight are kept.
func (t *Tracker) Prune() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.ttl)
	removed := 0
	for id, s := range t.sessions {
		if s.cancel == nil && s.touched.Before(cutoff) {
			delete(t.sessions, id)
			removed++
		}
	}
	return removed
}

// StartJanitor prunes expired sessions every interval until ctx is done.
func (t *Tracker) StartJanitor(ctx context.Context, interval time.Duration) {
	log := logger.FromContext(ctx).WithPrefix("tracker")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := t.Prune(); n > 0 {
					log.Debug("pruned %d idle sessions, %d remaining", n, t.Len())
				}
			}
		}
	}()
}

// Len returns the number of tracked sessions.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
