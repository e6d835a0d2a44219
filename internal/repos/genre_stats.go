package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/types"
)

type GenreStatsRepo interface {
	DeleteByDate(ctx context.Context, tx *gorm.DB, date time.Time) error
	CreateMany(ctx context.Context, tx *gorm.DB, rows []*types.GenreStatsDaily) error
	ListByDate(ctx context.Context, tx *gorm.DB, date time.Time) ([]*types.GenreStatsDaily, error)
	LatestDate(ctx context.Context, tx *gorm.DB) (*time.Time, error)
}

type genreStatsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenreStatsRepo(db *gorm.DB, baseLog *logger.Logger) GenreStatsRepo {
	return &genreStatsRepo{
		db:  db,
		log: baseLog.With("repo", "GenreStatsRepo"),
	}
}

func (r *genreStatsRepo) DeleteByDate(ctx context.Context, tx *gorm.DB, date time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("date = ?", date).
		Delete(&types.GenreStatsDaily{}).Error
}

func (r *genreStatsRepo) CreateMany(ctx context.Context, tx *gorm.DB, rows []*types.GenreStatsDaily) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).CreateInBatches(rows, 500).Error
}

func (r *genreStatsRepo) ListByDate(ctx context.Context, tx *gorm.DB, date time.Time) ([]*types.GenreStatsDaily, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.GenreStatsDaily
	err := transaction.WithContext(ctx).
		Where("date = ?", date).
		Order("volume DESC, genre_id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *genreStatsRepo) LatestDate(ctx context.Context, tx *gorm.DB) (*time.Time, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.GenreStatsDaily
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
