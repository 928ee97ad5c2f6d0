package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/ghmutuals/internal/logger"
	"github.com/vytor/ghmutuals/internal/models"
	"github.com/vytor/ghmutuals/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var searchColumns = []string{"id", "username", "searched_at", "caller_id", "user_agent", "referrer"}

type searchRepository struct {
	db *sql.DB
}

// NewSearchRepository creates a new SearchRepository implementation
func NewSearchRepository(db *sql.DB) repository.SearchRepository {
	return &searchRepository{db: db}
}

func (r *searchRepository) Insert(ctx context.Context, record models.SearchRecord) error {
	log := logger.FromContext(ctx).WithPrefix("search_repo")

	query, args, err := sqlBuilder.
		Insert("searches").
		Columns(searchColumns...).
		Values(
			record.ID,
			record.Username,
			record.SearchedAt.UTC(),
			nullString(record.CallerID),
			nullString(record.UserAgent),
			nullString(record.Referrer),
		).
		ToSql()
	if err != nil {
		log.Error("failed to build insert query: %v", err)
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert search record: %v", err)
		return err
	}
	log.Debug("search record inserted: id=%s username=%s", record.ID, record.Username)
	return nil
}

func (r *searchRepository) Recent(ctx context.Context, limit int) ([]models.SearchRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("search_repo")

	query := sqlBuilder.
		Select(searchColumns...).
		From("searches").
		OrderBy("searched_at DESC", "id")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build recent query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query recent searches: %v", err)
		return nil, err
	}
	defer rows.Close()

	records := make([]models.SearchRecord, 0)
	for rows.Next() {
		var (
			rec                          models.SearchRecord
			callerID, userAgent, referer sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Username, &rec.SearchedAt, &callerID, &userAgent, &referer); err != nil {
			log.Error("failed to scan search row: %v", err)
			return nil, err
		}
		rec.CallerID = callerID.String
		rec.UserAgent = userAgent.String
		rec.Referrer = referer.String
		records = append(records, rec)
	}

	log.Debug("found %d recent searches", len(records))
	return records, rows.Err()
}

func (r *searchRepository) CountByUsername(ctx context.Context, username string) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("search_repo")

	sqlStr, args, err := sqlBuilder.
		Select("COUNT(*)").
		From("searches").
		Where(squirrel.Expr("lower(username) = lower(?)", username)).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count searches for %s: %v", username, err)
		return 0, err
	}
	return count, nil
}

// TopUsernames groups searches case-insensitively, most searched first.
func (r *searchRepository) TopUsernames(ctx context.Context, limit int) ([]models.SearchCount, error) {
	log := logger.FromContext(ctx).WithPrefix("search_repo")

	query := sqlBuilder.
		Select("lower(username) AS name", "COUNT(*) AS total").
		From("searches").
		GroupBy("name").
		OrderBy("total DESC", "name ASC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query top usernames: %v", err)
		return nil, err
	}
	defer rows.Close()

	counts := make([]models.SearchCount, 0)
	for rows.Next() {
		var c models.SearchCount
		if err := rows.Scan(&c.Username, &c.Count); err != nil {
			log.Error("failed to scan top username row: %v", err)
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
