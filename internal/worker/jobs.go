package worker

import (
	"context"

	"github.com/vytor/ghmutuals/internal/compare"
	"github.com/vytor/ghmutuals/internal/logger"
	"github.com/vytor/ghmutuals/internal/models"
	"github.com/vytor/ghmutuals/internal/repository"
)

// RecordSearchJob writes one analytics row. Its failure only gets logged.
type RecordSearchJob struct {
	Repo   repository.SearchRepository
	Record models.SearchRecord
}

func (j *RecordSearchJob) Name() string { return "record_search" }

func (j *RecordSearchJob) Run(ctx context.Context) error {
	return j.Repo.Insert(ctx, j.Record)
}

// SearchExecutor runs a tracked comparison and publishes its outcome.
type SearchExecutor interface {
	ExecuteRun(ctx context.Context, run compare.Run, token string, meta models.SearchMeta)
}

// RunSearchJob executes a comparison started from the web UI.
type RunSearchJob struct {
	Executor  SearchExecutor
	SearchRun compare.Run
	Token     string
	Meta      models.SearchMeta
}

func (j *RunSearchJob) Name() string { return "run_search" }

func (j *RunSearchJob) Run(ctx context.Context) error {
	// Stopping the pool abandons the run as well.
	stop := context.AfterFunc(ctx, j.SearchRun.Cancel)
	defer stop()

	logger.FromContext(ctx).WithField("username", j.SearchRun.Username).Debug("executing run %s", j.SearchRun.ID)
	j.Executor.ExecuteRun(ctx, j.SearchRun, j.Token, j.Meta)
	return nil
}
