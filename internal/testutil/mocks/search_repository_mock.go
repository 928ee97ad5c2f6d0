package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/ghmutuals/internal/models"
)

// MockSearchRepository is a mock implementation of repository.SearchRepository
type MockSearchRepository struct {
	mock.Mock
}

func (m *MockSearchRepository) Insert(ctx context.Context, record models.SearchRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSearchRepository) Recent(ctx context.Context, limit int) ([]models.SearchRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SearchRecord), args.Error(1)
}

func (m *MockSearchRepository) CountByUsername(ctx context.Context, username string) (int, error) {
	args := m.Called(ctx, username)
	return args.Int(0), args.Error(1)
}

func (m *MockSearchRepository) TopUsernames(ctx context.Context, limit int) ([]models.SearchCount, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SearchCount), args.Error(1)
}
