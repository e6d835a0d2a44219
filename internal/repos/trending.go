package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/types"
)

type TrendingRepo interface {
	DeleteByDate(ctx context.Context, tx *gorm.DB, date time.Time) error
	CreateMany(ctx context.Context, tx *gorm.DB, rows []*types.MovieTrendingDaily) error
	ListByDate(ctx context.Context, tx *gorm.DB, date time.Time, limit int) ([]*types.MovieTrendingDaily, error)
	LatestDate(ctx context.Context, tx *gorm.DB) (*time.Time, error)
	CountByDate(ctx context.Context, tx *gorm.DB, date time.Time) (int64, error)
}

type trendingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrendingRepo(db *gorm.DB, baseLog *logger.Logger) TrendingRepo {
	return &trendingRepo{
		db:  db,
		log: baseLog.With("repo", "TrendingRepo"),
	}
}

func (r *trendingRepo) DeleteByDate(ctx context.Context, tx *gorm.DB, date time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("date = ?", date).
		Delete(&types.MovieTrendingDaily{}).Error
}

func (r *trendingRepo) CreateMany(ctx context.Context, tx *gorm.DB, rows []*types.MovieTrendingDaily) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).CreateInBatches(rows, 500).Error
}

func (r *trendingRepo) ListByDate(ctx context.Context, tx *gorm.DB, date time.Time, limit int) ([]*types.MovieTrendingDaily, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MovieTrendingDaily
	q := transaction.WithContext(ctx).
		Where("date = ?", date).
		Order("rank ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *trendingRepo) LatestDate(ctx context.Context, tx *gorm.DB) (*time.Time, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.MovieTrendingDaily
	err := transaction.WithContext(ctx).
		Order("date DESC").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	d := row.Date
	return &d, nil
}

func (r *trendingRepo) CountByDate(ctx context.Context, tx *gorm.DB, date time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).
		Model(&types.MovieTrendingDaily{}).
		Where("date = ?", date).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}
