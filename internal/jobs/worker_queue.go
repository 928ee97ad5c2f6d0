package jobs

import (
	"github.com/vytor/ghmutuals/internal/compare"
	"github.com/vytor/ghmutuals/internal/models"
	"github.com/vytor/ghmutuals/internal/repository"
	"github.com/vytor/ghmutuals/internal/worker"
)

// WorkerQueue implements JobQueue using worker pools
type WorkerQueue struct {
	searchPool    *worker.Pool
	analyticsPool *worker.Pool
	searches      repository.SearchRepository
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(searchPool, analyticsPool *worker.Pool, searches repository.SearchRepository) *WorkerQueue {
	return &WorkerQueue{
		searchPool:    searchPool,
		analyticsPool: analyticsPool,
		searches:      searches,
	}
}

func (q *WorkerQueue) EnqueueSearch(executor worker.SearchExecutor, run compare.Run, token string, meta models.SearchMeta) error {
	return q.searchPool.TrySubmit(&worker.RunSearchJob{
		Executor:  executor,
		SearchRun: run,
		Token:     token,
		Meta:      meta,
	})
}

func (q *WorkerQueue) EnqueueRecord(record models.SearchRecord) error {
	return q.analyticsPool.TrySubmit(&worker.RecordSearchJob{
		Repo:   q.searches,
		Record: record,
	})
}

// Backlog reports how many jobs wait in each pool's queue.
func (q *WorkerQueue) Backlog() map[string]int {
	return map[string]int{
		"search":    q.searchPool.QueueSize(),
		"analytics": q.analyticsPool.QueueSize(),
	}
}
