package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/types"
)

type MovieRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id int) (*types.Movie, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.Movie, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Movie, error)
	ListScorable(ctx context.Context, tx *gorm.DB) ([]*types.Movie, error)
	ListRecommendable(ctx context.Context, tx *gorm.DB) ([]*types.Movie, error)
	ListDatedAndRated(ctx context.Context, tx *gorm.DB) ([]*types.Movie, error)
	ListMissingDetails(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Movie, error)
	Upsert(ctx context.Context, tx *gorm.DB, movie *types.Movie) error
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type movieRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMovieRepo(db *gorm.DB, baseLog *logger.Logger) MovieRepo {
	return &movieRepo{
		db:  db,
		log: baseLog.With("repo", "MovieRepo"),
	}
}

func (r *movieRepo) GetByID(ctx context.Context, tx *gorm.DB, id int) (*types.Movie, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var movie types.Movie
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&movie).Error
	if err != nil {
		return nil, err
	}
	if movie.ID == 0 {
		return nil, nil
	}
	return &movie, nil
}

func (r *movieRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.Movie, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Movie
	err := transaction.WithContext(ctx).
		Order("popularity DESC NULLS LAST").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *movieRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Movie, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Movie
	if err := transaction.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListScorable returns movies eligible for trending ranking: both popularity
// and rating present. Movies missing either are silently excluded.
func (r *movieRepo) ListScorable(ctx context.Context, tx *gorm.DB) ([]*types.Movie, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Movie
	err := transaction.WithContext(ctx).
		Where("popularity IS NOT NULL AND rating IS NOT NULL").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecommendable returns movies with a genre list and a rating. Callers
// still need to skip movies whose genre list is present but empty.
func (r *movieRepo) ListRecommendable(ctx context.Context, tx *gorm.DB) ([]*types.Movie, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Movie
	err := transaction.WithContext(ctx).
		Where("genres IS NOT NULL AND rating IS NOT NULL").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *movieRepo) ListDatedAndRated(ctx context.Context, tx *gorm.DB) ([]*types.Movie, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Movie
	err := transaction.WithContext(ctx).
		Where("release_date IS NOT NULL AND rating IS NOT NULL").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListMissingDetails returns movies that never got a details fetch, newest
// first so fresh catalog entries are enriched before the long tail.
func (r *movieRepo) ListMissingDetails(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Movie, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Movie
	q := transaction.WithContext(ctx).
		Where("runtime IS NULL").
		Order("updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *movieRepo) Upsert(ctx context.Context, tx *gorm.DB, movie *types.Movie) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if movie == nil || movie.ID == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(movie).Error
}

func (r *movieRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(ctx).Model(&types.Movie{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
