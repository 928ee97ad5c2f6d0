package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vytor/ghmutuals/internal/compare"
	"github.com/vytor/ghmutuals/internal/jobs"
	"github.com/vytor/ghmutuals/internal/models"
	"github.com/vytor/ghmutuals/internal/testutil/mocks"
	"github.com/vytor/ghmutuals/internal/worker"
)

type executorFunc func(ctx context.Context, run compare.Run, token string, meta models.SearchMeta)

func (f executorFunc) ExecuteRun(ctx context.Context, run compare.Run, token string, meta models.SearchMeta) {
	f(ctx, run, token, meta)
}

func TestWorkerQueue_EnqueueSearch(t *testing.T) {
	searchPool := worker.NewPool("search", 1, 2)
	searchPool.Start(context.Background())
	defer searchPool.Stop()

	q := jobs.NewWorkerQueue(searchPool, worker.NewPool("analytics", 1, 1), &mocks.MockSearchRepository{})
	run := compare.NewTracker(time.Hour).Begin(context.Background(), "s", "octocat")

	got := make(chan string, 1)
	exec := executorFunc(func(_ context.Context, r compare.Run, token string, _ models.SearchMeta) {
		got <- r.Username + ":" + token
	})
	require.NoError(t, q.EnqueueSearch(exec, run, "tok", models.SearchMeta{}))

	select {
	case v := <-got:
		assert.Equal(t, "octocat:tok", v)
	case <-time.After(2 * time.Second):
		t.Fatal("search job never ran")
	}
}

func TestWorkerQueue_EnqueueRecord(t *testing.T) {
	repo := &mocks.MockSearchRepository{}
	written := make(chan struct{})
	repo.On("Insert", mock.Anything, models.SearchRecord{ID: "r1", Username: "octocat"}).
		Run(func(mock.Arguments) { close(written) }).Return(nil)

	analyticsPool := worker.NewPool("analytics", 1, 2)
	analyticsPool.Start(context.Background())
	defer analyticsPool.Stop()

	q := jobs.NewWorkerQueue(worker.NewPool("search", 1, 1), analyticsPool, repo)
	require.NoError(t, q.EnqueueRecord(models.SearchRecord{ID: "r1", Username: "octocat"}))

	select {
	case <-written:
	case <-time.After(2 * time.Second):
		t.Fatal("record job never ran")
	}
}

func TestWorkerQueue_FullQueue(t *testing.T) {
	q := jobs.NewWorkerQueue(worker.NewPool("search", 1, 1), worker.NewPool("analytics", 1, 1), &mocks.MockSearchRepository{})

	require.NoError(t, q.EnqueueRecord(models.SearchRecord{ID: "a"}))
	assert.ErrorIs(t, q.EnqueueRecord(models.SearchRecord{ID: "b"}), worker.ErrQueueFull)
	assert.Equal(t, map[string]int{"search": 0, "analytics": 1}, q.Backlog())
}
