package compute

import (
	"context"

	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/repos"
	"github.com/moviemetric/backend/internal/types"
)

const TypeRatingsByDecade = "compute_ratings_by_decade"

type RatingsByDecadeJob struct {
	db      *gorm.DB
	log     *logger.Logger
	movies  repos.MovieRepo
	decades repos.RatingsByDecadeRepo
}

func NewRatingsByDecadeJob(db *gorm.DB, baseLog *logger.Logger, movies repos.MovieRepo, decades repos.RatingsByDecadeRepo) *RatingsByDecadeJob {
	return &RatingsByDecadeJob{
		db:      db,
		log:     baseLog.With("job", TypeRatingsByDecade),
		movies:  movies,
		decades: decades,
	}
}

// Run rebuilds the whole ratings_by_decade table from the current catalog.
// There is no date partition here; every run supersedes the previous one.
func (j *RatingsByDecadeJob) Run(ctx context.Context) Result {
	count := 0
	err := j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		movies, err := j.movies.ListDatedAndRated(ctx, tx)
		if err != nil {
			return err
		}

		buckets := AggregateDecades(movies)
		rows := make([]*types.RatingsByDecade, 0, len(buckets))
		for _, b := range buckets {
			rows = append(rows, &types.RatingsByDecade{
				Decade:     b.Decade,
				AvgRating:  b.AvgRating,
				MovieCount: b.MovieCount,
			})
		}

		if err := j.decades.Truncate(ctx, tx); err != nil {
			return err
		}
		if err := j.decades.CreateMany(ctx, tx, rows); err != nil {
			return err
		}
		count = len(rows)
		return nil
	})
	if err != nil {
		j.log.Error("ratings by decade computation failed", "error", err)
		return errorResult(err)
	}

	j.log.Info("ratings by decade computed", "decades", count)
	return Result{
		Status:           StatusSuccess,
		DecadesProcessed: count,
	}
}
