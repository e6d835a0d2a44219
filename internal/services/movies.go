package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/repos"
	"github.com/moviemetric/backend/internal/types"
)

type MovieService interface {
	List(ctx context.Context, limit, offset int) ([]*types.Movie, error)
	Get(ctx context.Context, id int) (*types.Movie, error)
	Recommendations(ctx context.Context, id int) (*types.MovieRecommendations, error)
}

type movieService struct {
	db     *gorm.DB
	log    *logger.Logger
	movies repos.MovieRepo
	recs   repos.RecommendationRepo
}

func NewMovieService(db *gorm.DB, baseLog *logger.Logger, movies repos.MovieRepo, recs repos.RecommendationRepo) MovieService {
	return &movieService{
		db:     db,
		log:    baseLog.With("service", "MovieService"),
		movies: movies,
		recs:   recs,
	}
}

func (s *movieService) List(ctx context.Context, limit, offset int) ([]*types.Movie, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.movies.List(ctx, nil, limit, offset)
}

func (s *movieService) Get(ctx context.Context, id int) (*types.Movie, error) {
	return s.movies.GetByID(ctx, nil, id)
}

func (s *movieService) Recommendations(ctx context.Context, id int) (*types.MovieRecommendations, error) {
	return s.recs.GetByMovie(ctx, nil, id)
}
