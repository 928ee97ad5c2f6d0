package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vytor/ghmutuals/internal/compare"
	"github.com/vytor/ghmutuals/internal/errors"
	"github.com/vytor/ghmutuals/internal/jobs"
	"github.com/vytor/ghmutuals/internal/models"
	"github.com/vytor/ghmutuals/internal/testutil/mocks"
	"github.com/vytor/ghmutuals/internal/worker"
)

func users(logins ...string) []models.GitHubUser {
	out := make([]models.GitHubUser, len(logins))
	for i, l := range logins {
		out[i] = models.GitHubUser{Login: l}
	}
	return out
}

func newQueue(searchPool *worker.Pool) jobs.JobQueue {
	return jobs.NewWorkerQueue(searchPool, worker.NewPool("analytics", 1, 1), &mocks.MockSearchRepository{})
}

func stubOctocat(client *mocks.MockGitHubClient, token string) {
	client.On("FetchUser", mock.Anything, "octocat", token).
		Return(&models.GitHubUser{Login: "octocat", Followers: 2, Following: 3}, nil)
	client.On("FetchFollowers", mock.Anything, "octocat", token).Return(users("B", "D"), nil)
	client.On("FetchFollowing", mock.Anything, "octocat", token).Return(users("A", "B", "C"), nil)
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "octocat", want: "octocat"},
		{in: "  @octocat ", want: "octocat"},
		{in: "a-b-c", want: "a-b-c"},
		{in: strings.Repeat("a", 39), want: strings.Repeat("a", 39)},
		{in: "", wantErr: true},
		{in: "@", wantErr: true},
		{in: strings.Repeat("a", 40), wantErr: true},
		{in: "-leading", wantErr: true},
		{in: "trailing-", wantErr: true},
		{in: "double--hyphen", wantErr: true},
		{in: "has space", wantErr: true},
		{in: "under_score", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeUsername(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeValidation, errors.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearch_RecordsCompletedSearch(t *testing.T) {
	client := &mocks.MockGitHubClient{}
	analytics := &mocks.MockAnalyticsService{}
	stubOctocat(client, "tok")
	meta := models.SearchMeta{CallerID: "caller-1"}
	analytics.On("Record", mock.Anything, "octocat", meta).Return()

	svc := NewSearchService(client, compare.NewTracker(time.Hour), analytics, newQueue(worker.NewPool("search", 1, 1)))
	result, err := svc.Search(context.Background(), "@octocat", "tok", meta)

	require.NoError(t, err)
	assert.Equal(t, "octocat", result.SearchedUser.Login)
	assert.Len(t, result.Mutuals, 1)
	assert.Len(t, result.NotFollowingBack, 2)
	analytics.AssertExpectations(t)
}

func TestSearch_FailureIsNotRecorded(t *testing.T) {
	client := &mocks.MockGitHubClient{}
	analytics := &mocks.MockAnalyticsService{}
	client.On("FetchUser", mock.Anything, "ghost", "").Return(nil, errors.NewNotFoundError("user", "ghost"))
	client.On("FetchFollowers", mock.Anything, "ghost", "").Return(nil, errors.NewNotFoundError("user", "ghost"))
	client.On("FetchFollowing", mock.Anything, "ghost", "").Return(nil, errors.NewNotFoundError("user", "ghost"))

	svc := NewSearchService(client, compare.NewTracker(time.Hour), analytics, newQueue(worker.NewPool("search", 1, 1)))
	result, err := svc.Search(context.Background(), "ghost", "", models.SearchMeta{})

	assert.Nil(t, result)
	assert.True(t, errors.IsNotFound(err))
	analytics.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearch_InvalidUsernameSkipsGitHub(t *testing.T) {
	client := &mocks.MockGitHubClient{}
	svc := NewSearchService(client, compare.NewTracker(time.Hour), &mocks.MockAnalyticsService{}, newQueue(worker.NewPool("search", 1, 1)))

	_, err := svc.Search(context.Background(), "not valid", "", models.SearchMeta{})

	assert.Equal(t, errors.ErrCodeValidation, errors.Code(err))
	client.AssertNotCalled(t, "FetchUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartSearch_CompletesInBackground(t *testing.T) {
	client := &mocks.MockGitHubClient{}
	analytics := &mocks.MockAnalyticsService{}
	stubOctocat(client, "")
	recorded := make(chan struct{})
	analytics.On("Record", mock.Anything, "octocat", mock.Anything).
		Run(func(mock.Arguments) { close(recorded) }).Return()

	pool := worker.NewPool("search", 1, 4)
	pool.Start(context.Background())
	defer pool.Stop()

	svc := NewSearchService(client, compare.NewTracker(time.Hour), analytics, newQueue(pool))
	runID, err := svc.StartSearch(context.Background(), "session", "octocat", "", models.SearchMeta{})
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	require.Eventually(t, func() bool {
		return svc.Current("session").Status == models.SearchDone
	}, 2*time.Second, 10*time.Millisecond)

	state := svc.Current("session")
	assert.Equal(t, runID, state.RunID)
	assert.Equal(t, "octocat", state.Result.SearchedUser.Login)

	select {
	case <-recorded:
	case <-time.After(2 * time.Second):
		t.Fatal("completed search was not recorded")
	}
}

func TestStartSearch_RequestCancellationDoesNotAbortRun(t *testing.T) {
	client := &mocks.MockGitHubClient{}
	analytics := &mocks.MockAnalyticsService{}
	stubOctocat(client, "")
	analytics.On("Record", mock.Anything, mock.Anything, mock.Anything).Return()

	pool := worker.NewPool("search", 1, 4)
	svc := NewSearchService(client, compare.NewTracker(time.Hour), analytics, newQueue(pool))

	reqCtx, cancel := context.WithCancel(context.Background())
	_, err := svc.StartSearch(reqCtx, "session", "octocat", "", models.SearchMeta{})
	require.NoError(t, err)
	cancel()

	pool.Start(context.Background())
	defer pool.Stop()

	require.Eventually(t, func() bool {
		return svc.Current("session").Status == models.SearchDone
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStartSearch_QueueFull(t *testing.T) {
	client := &mocks.MockGitHubClient{}
	// Not started: the first run occupies the only slot.
	pool := worker.NewPool("search", 1, 1)
	svc := NewSearchService(client, compare.NewTracker(time.Hour), &mocks.MockAnalyticsService{}, newQueue(pool))

	_, err := svc.StartSearch(context.Background(), "first", "octocat", "", models.SearchMeta{})
	require.NoError(t, err)

	_, err = svc.StartSearch(context.Background(), "second", "octocat", "", models.SearchMeta{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnavailable, errors.Code(err))

	state := svc.Current("second")
	assert.Equal(t, models.SearchFailed, state.Status)
	assert.Equal(t, errors.ErrCodeUnavailable, state.ErrorCode)
	assert.Equal(t, models.SearchLoading, svc.Current("first").Status)
}

func TestStartSearch_InvalidUsernameLeavesStateUntouched(t *testing.T) {
	svc := NewSearchService(&mocks.MockGitHubClient{}, compare.NewTracker(time.Hour), &mocks.MockAnalyticsService{}, newQueue(worker.NewPool("search", 1, 1)))

	_, err := svc.StartSearch(context.Background(), "session", "", "", models.SearchMeta{})

	assert.Equal(t, errors.ErrCodeValidation, errors.Code(err))
	assert.Equal(t, models.SearchIdle, svc.Current("session").Status)
}

func TestExecuteRun_SupersededOutcomeIsDropped(t *testing.T) {
	client := &mocks.MockGitHubClient{}
	analytics := &mocks.MockAnalyticsService{}
	stubOctocat(client, "")

	tracker := compare.NewTracker(time.Hour)
	svc := NewSearchService(client, tracker, analytics, newQueue(worker.NewPool("search", 1, 1))).(*searchService)

	stale := tracker.Begin(context.Background(), "session", "octocat")
	current := tracker.Begin(context.Background(), "session", "someone-else")

	svc.ExecuteRun(context.Background(), stale, "", models.SearchMeta{})

	state := svc.Current("session")
	assert.Equal(t, current.ID, state.RunID)
	assert.Equal(t, models.SearchLoading, state.Status)
	analytics.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
}

func TestReset_ForgetsSession(t *testing.T) {
	tracker := compare.NewTracker(time.Hour)
	svc := NewSearchService(&mocks.MockGitHubClient{}, tracker, &mocks.MockAnalyticsService{}, newQueue(worker.NewPool("search", 1, 1)))

	tracker.Begin(context.Background(), "session", "octocat")
	svc.Reset("session")

	assert.Equal(t, models.SearchIdle, svc.Current("session").Status)
}

func TestRateLimit(t *testing.T) {
	client := &mocks.MockGitHubClient{}
	client.On("FetchRateLimit", mock.Anything, "tok").Return(&models.RateLimit{Limit: 5000, Remaining: 4999}, nil)
	client.On("FetchRateLimit", mock.Anything, "").Return(nil, errors.NewRateLimitedError())

	svc := NewSearchService(client, compare.NewTracker(time.Hour), &mocks.MockAnalyticsService{}, newQueue(worker.NewPool("search", 1, 1)))

	rl, err := svc.RateLimit(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 4999, rl.Remaining)

	_, err = svc.RateLimit(context.Background(), "")
	assert.True(t, errors.IsRateLimited(err))
}
