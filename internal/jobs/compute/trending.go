package compute

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/repos"
	"github.com/moviemetric/backend/internal/scoring"
	"github.com/moviemetric/backend/internal/types"
)

const TypeTrending = "compute_trending"

type TrendingJob struct {
	db       *gorm.DB
	log      *logger.Logger
	movies   repos.MovieRepo
	trending repos.TrendingRepo
}

func NewTrendingJob(db *gorm.DB, baseLog *logger.Logger, movies repos.MovieRepo, trending repos.TrendingRepo) *TrendingJob {
	return &TrendingJob{
		db:       db,
		log:      baseLog.With("job", TypeTrending),
		movies:   movies,
		trending: trending,
	}
}

// Run scores every movie with both popularity and rating present, assigns
// dense ranks 1..N by score descending, and replaces the whole partition for
// the target date inside one transaction. Rerunning for the same date against
// an unchanged catalog reproduces identical rows.
func (j *TrendingJob) Run(ctx context.Context, targetDate string) Result {
	date, err := TargetDate(targetDate)
	if err != nil {
		return errorResult(err)
	}

	count := 0
	err = j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		movies, err := j.movies.ListScorable(ctx, tx)
		if err != nil {
			return err
		}

		rows := make([]*types.MovieTrendingDaily, 0, len(movies))
		for _, movie := range movies {
			if movie.Popularity == nil || movie.Rating == nil {
				continue
			}
			rows = append(rows, &types.MovieTrendingDaily{
				MovieID: movie.ID,
				Date:    date,
				Score:   scoring.TrendingScore(*movie.Popularity, *movie.Rating, movie.VoteCount),
			})
		}
		// Ties keep catalog iteration order; any stable total order satisfies
		// the ranking contract.
		sort.SliceStable(rows, func(a, b int) bool { return rows[a].Score > rows[b].Score })
		for i, row := range rows {
			row.Rank = i + 1
		}

		if err := j.trending.DeleteByDate(ctx, tx, date); err != nil {
			return err
		}
		if err := j.trending.CreateMany(ctx, tx, rows); err != nil {
			return err
		}
		count = len(rows)
		return nil
	})
	if err != nil {
		j.log.Error("trending computation failed", "date", date.Format("2006-01-02"), "error", err)
		return errorResult(err)
	}

	j.log.Info("trending computed", "date", date.Format("2006-01-02"), "movies", count)
	return Result{
		Status:          StatusSuccess,
		Date:            date.Format("2006-01-02"),
		MoviesProcessed: count,
	}
}
