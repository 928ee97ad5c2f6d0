package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/ghmutuals/internal/compare"
	"github.com/vytor/ghmutuals/internal/models"
	"github.com/vytor/ghmutuals/internal/worker"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueSearch(executor worker.SearchExecutor, run compare.Run, token string, meta models.SearchMeta) error {
	args := m.Called(executor, run, token, meta)
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueRecord(record models.SearchRecord) error {
	args := m.Called(record)
	return args.Error(0)
}
