package github

import (
	"context"

	"github.com/vytor/ghmutuals/internal/models"
)

// ClientInterface defines the GitHub REST operations the app relies on.
// This interface enables testability by allowing mock implementations.
type ClientInterface interface {
	FetchUser(ctx context.Context, username, token string) (*models.GitHubUser, error)
	FetchFollowers(ctx context.Context, username, token string) ([]models.GitHubUser, error)
	FetchFollowing(ctx context.Context, username, token string) ([]models.GitHubUser, error)
	FetchRateLimit(ctx context.Context, token string) (*models.RateLimit, error)
}

// Ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)
