package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/types"
)

type RatingsByDecadeRepo interface {
	Truncate(ctx context.Context, tx *gorm.DB) error
	CreateMany(ctx context.Context, tx *gorm.DB, rows []*types.RatingsByDecade) error
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.RatingsByDecade, error)
}

type ratingsByDecadeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRatingsByDecadeRepo(db *gorm.DB, baseLog *logger.Logger) RatingsByDecadeRepo {
	return &ratingsByDecadeRepo{
		db:  db,
		log: baseLog.With("repo", "RatingsByDecadeRepo"),
	}
}

func (r *ratingsByDecadeRepo) Truncate(ctx context.Context, tx *gorm.DB) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("1 = 1").
		Delete(&types.RatingsByDecade{}).Error
}

func (r *ratingsByDecadeRepo) CreateMany(ctx context.Context, tx *gorm.DB, rows []*types.RatingsByDecade) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Create(&rows).Error
}

func (r *ratingsByDecadeRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.RatingsByDecade, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.RatingsByDecade
	err := transaction.WithContext(ctx).
		Order("decade ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
