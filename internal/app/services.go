package app

import (
	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/services"
)

type Services struct {
	Movie     services.MovieService
	Analytics services.AnalyticsService
}

func wireServices(db *gorm.DB, log *logger.Logger, reposet Repos) Services {
	log.Info("Wiring services...")
	return Services{
		Movie:     services.NewMovieService(db, log, reposet.Movie, reposet.Recommendation),
		Analytics: services.NewAnalyticsService(db, log, reposet.Movie, reposet.GenreStats, reposet.RatingsByDecade, reposet.Trending),
	}
}
