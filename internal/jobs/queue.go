package jobs

import (
	"github.com/vytor/ghmutuals/internal/compare"
	"github.com/vytor/ghmutuals/internal/models"
	"github.com/vytor/ghmutuals/internal/worker"
)

// JobQueue provides an abstraction for enqueueing background jobs. Both
// methods return immediately and fail with worker.ErrQueueFull rather than
// wait for room.
type JobQueue interface {
	EnqueueSearch(executor worker.SearchExecutor, run compare.Run, token string, meta models.SearchMeta) error
	EnqueueRecord(record models.SearchRecord) error
}
