package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/ghmutuals/internal/models"
)

// MockSearchService is a mock implementation of services.SearchService
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, username, token string, meta models.SearchMeta) (*models.FollowComparison, error) {
	args := m.Called(ctx, username, token, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FollowComparison), args.Error(1)
}

func (m *MockSearchService) StartSearch(ctx context.Context, sessionID, username, token string, meta models.SearchMeta) (string, error) {
	args := m.Called(ctx, sessionID, username, token, meta)
	return args.String(0), args.Error(1)
}

func (m *MockSearchService) Current(sessionID string) models.SearchState {
	args := m.Called(sessionID)
	return args.Get(0).(models.SearchState)
}

func (m *MockSearchService) Reset(sessionID string) {
	m.Called(sessionID)
}

func (m *MockSearchService) RateLimit(ctx context.Context, token string) (*models.RateLimit, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RateLimit), args.Error(1)
}

// MockAnalyticsService is a mock implementation of services.AnalyticsService
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) Record(ctx context.Context, username string, meta models.SearchMeta) {
	m.Called(ctx, username, meta)
}

func (m *MockAnalyticsService) Recent(ctx context.Context, limit int) ([]models.SearchRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SearchRecord), args.Error(1)
}

func (m *MockAnalyticsService) TopUsernames(ctx context.Context, limit int) ([]models.SearchCount, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SearchCount), args.Error(1)
}

func (m *MockAnalyticsService) CountByUsername(ctx context.Context, username string) (int, error) {
	args := m.Called(ctx, username)
	return args.Int(0), args.Error(1)
}
