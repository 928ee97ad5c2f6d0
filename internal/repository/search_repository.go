package repository

import (
	"context"

	"github.com/vytor/ghmutuals/internal/models"
)

// SearchRepository stores the analytics log of completed searches
type SearchRepository interface {
	Insert(ctx context.Context, record models.SearchRecord) error
	Recent(ctx context.Context, limit int) ([]models.SearchRecord, error)
	CountByUsername(ctx context.Context, username string) (int, error)
	TopUsernames(ctx context.Context, limit int) ([]models.SearchCount, error)
}
