package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/types"
	"github.com/moviemetric/backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "moviemetric", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.Movie{},
		&types.MovieTrendingDaily{},
		&types.GenreStatsDaily{},
		&types.RatingsByDecade{},
		&types.MovieRecommendations{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	if err := s.db.Exec(`
		ALTER TABLE "movie_trending_daily"
		ADD CONSTRAINT "fk_movie_trending_daily_movie_id"
		FOREIGN KEY ("movie_id")
		REFERENCES "movies"("id")
		ON DELETE CASCADE
	`).Error; err != nil {
		s.log.Warn("fk_movie_trending_daily_movie_id not added (may already exist)", "error", err)
	}
	if err := s.db.Exec(`
		ALTER TABLE "movie_recommendations"
		ADD CONSTRAINT "fk_movie_recommendations_movie_id"
		FOREIGN KEY ("movie_id")
		REFERENCES "movies"("id")
		ON DELETE CASCADE
	`).Error; err != nil {
		s.log.Warn("fk_movie_recommendations_movie_id not added (may already exist)", "error", err)
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
