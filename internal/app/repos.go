package app

import (
	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/repos"
)

type Repos struct {
	Movie           repos.MovieRepo
	GenreStats      repos.GenreStatsRepo
	RatingsByDecade repos.RatingsByDecadeRepo
	Trending        repos.TrendingRepo
	Recommendation  repos.RecommendationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Movie:           repos.NewMovieRepo(db, log),
		GenreStats:      repos.NewGenreStatsRepo(db, log),
		RatingsByDecade: repos.NewRatingsByDecadeRepo(db, log),
		Trending:        repos.NewTrendingRepo(db, log),
		Recommendation:  repos.NewRecommendationRepo(db, log),
	}
}
