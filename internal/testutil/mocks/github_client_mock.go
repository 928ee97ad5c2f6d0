package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/ghmutuals/internal/models"
)

// MockGitHubClient is a mock implementation of github.ClientInterface
type MockGitHubClient struct {
	mock.Mock
}

func (m *MockGitHubClient) FetchUser(ctx context.Context, username, token string) (*models.GitHubUser, error) {
	args := m.Called(ctx, username, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GitHubUser), args.Error(1)
}

func (m *MockGitHubClient) FetchFollowers(ctx context.Context, username, token string) ([]models.GitHubUser, error) {
	args := m.Called(ctx, username, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GitHubUser), args.Error(1)
}

func (m *MockGitHubClient) FetchFollowing(ctx context.Context, username, token string) ([]models.GitHubUser, error) {
	args := m.Called(ctx, username, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GitHubUser), args.Error(1)
}

func (m *MockGitHubClient) FetchRateLimit(ctx context.Context, token string) (*models.RateLimit, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RateLimit), args.Error(1)
}
