package compute

import (
	"context"

	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/repos"
	"github.com/moviemetric/backend/internal/types"
)

const TypeGenreStats = "compute_genre_stats"

type GenreStatsJob struct {
	db     *gorm.DB
	log    *logger.Logger
	movies repos.MovieRepo
	stats  repos.GenreStatsRepo
}

func NewGenreStatsJob(db *gorm.DB, baseLog *logger.Logger, movies repos.MovieRepo, stats repos.GenreStatsRepo) *GenreStatsJob {
	return &GenreStatsJob{
		db:     db,
		log:    baseLog.With("job", TypeGenreStats),
		movies: movies,
		stats:  stats,
	}
}

// Run aggregates per-genre volume and average rating over the whole catalog
// and replaces the partition for the target date inside one transaction.
func (j *GenreStatsJob) Run(ctx context.Context, targetDate string) Result {
	date, err := TargetDate(targetDate)
	if err != nil {
		return errorResult(err)
	}

	count := 0
	err = j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		movies, err := j.movies.ListAll(ctx, tx)
		if err != nil {
			return err
		}

		aggregates := AggregateGenres(movies)
		rows := make([]*types.GenreStatsDaily, 0, len(aggregates))
		for _, agg := range aggregates {
			rows = append(rows, &types.GenreStatsDaily{
				GenreID:   agg.GenreID,
				GenreName: agg.GenreName,
				Date:      date,
				AvgRating: agg.AvgRating,
				Volume:    agg.Volume,
			})
		}

		if err := j.stats.DeleteByDate(ctx, tx, date); err != nil {
			return err
		}
		if err := j.stats.CreateMany(ctx, tx, rows); err != nil {
			return err
		}
		count = len(rows)
		return nil
	})
	if err != nil {
		j.log.Error("genre stats computation failed", "date", date.Format("2006-01-02"), "error", err)
		return errorResult(err)
	}

	j.log.Info("genre stats computed", "date", date.Format("2006-01-02"), "genres", count)
	return Result{
		Status:          StatusSuccess,
		Date:            date.Format("2006-01-02"),
		GenresProcessed: count,
	}
}
