package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/ghmutuals/internal/errors"
	"github.com/vytor/ghmutuals/internal/jobs"
	"github.com/vytor/ghmutuals/internal/logger"
	"github.com/vytor/ghmutuals/internal/models"
	"github.com/vytor/ghmutuals/internal/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// AnalyticsService handles the search log
type AnalyticsService interface {
	Record(ctx context.Context, username string, meta models.SearchMeta)
	Recent(ctx context.Context, limit int) ([]models.SearchRecord, error)
	TopUsernames(ctx context.Context, limit int) ([]models.SearchCount, error)
	CountByUsername(ctx context.Context, username string) (int, error)
}

type analyticsService struct {
	repo  repository.SearchRepository
	queue jobs.JobQueue
	now   func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService. Writes go through queue;
// reads hit repo directly.
func NewAnalyticsService(repo repository.SearchRepository, queue jobs.JobQueue) AnalyticsService {
	return &analyticsService{repo: repo, queue: queue, now: time.Now}
}

// Record queues a search record and returns immediately. A full queue or a
// failed write loses the record; the search itself is never affected.
func (s *analyticsService) Record(ctx context.Context, username string, meta models.SearchMeta) {
	log := logger.FromContext(ctx).WithPrefix("analytics")

	record := models.SearchRecord{
		ID:         uuid.NewString(),
		Username:   username,
		SearchedAt: s.now().UTC(),
		CallerID:   meta.CallerID,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}
	if err := s.queue.EnqueueRecord(record); err != nil {
		log.Warn("dropping search record for %s: %v", username, err)
		return
	}
	log.Debug("search record queued: id=%s", record.ID)
}

func (s *analyticsService) Recent(ctx context.Context, limit int) ([]models.SearchRecord, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing recent searches: limit=%d", limit)

	records, err := s.repo.Recent(ctx, clampLimit(limit))
	if err != nil {
		log.Error("failed to list recent searches: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return records, nil
}

func (s *analyticsService) TopUsernames(ctx context.Context, limit int) ([]models.SearchCount, error) {
	log := logger.FromContext(ctx)

	counts, err := s.repo.TopUsernames(ctx, clampLimit(limit))
	if err != nil {
		log.Error("failed to list top usernames: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return counts, nil
}

func (s *analyticsService) CountByUsername(ctx context.Context, username string) (int, error) {
	username, err := NormalizeUsername(username)
	if err != nil {
		return 0, err
	}

	count, err := s.repo.CountByUsername(ctx, username)
	if err != nil {
		logger.FromContext(ctx).Error("failed to count searches: %v", err)
		return 0, errors.NewInternalError(err)
	}
	return count, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
