package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/types"
)

type RecommendationRepo interface {
	DeleteByMovie(ctx context.Context, tx *gorm.DB, movieID int) error
	Create(ctx context.Context, tx *gorm.DB, row *types.MovieRecommendations) error
	GetByMovie(ctx context.Context, tx *gorm.DB, movieID int) (*types.MovieRecommendations, error)
}

type recommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
	return &recommendationRepo{
		db:  db,
		log: baseLog.With("repo", "RecommendationRepo"),
	}
}

func (r *recommendationRepo) DeleteByMovie(ctx context.Context, tx *gorm.DB, movieID int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("movie_id = ?", movieID).
		Delete(&types.MovieRecommendations{}).Error
}

func (r *recommendationRepo) Create(ctx context.Context, tx *gorm.DB, row *types.MovieRecommendations) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *recommendationRepo) GetByMovie(ctx context.Context, tx *gorm.DB, movieID int) (*types.MovieRecommendations, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.MovieRecommendations
	err := transaction.WithContext(ctx).
		Where("movie_id = ?", movieID).
		Order("generated_at DESC").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}
