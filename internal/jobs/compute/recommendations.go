package compute

import (
	"context"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/repos"
	"github.com/moviemetric/backend/internal/scoring"
	"github.com/moviemetric/backend/internal/types"
)

const (
	TypeRecommendations = "compute_recommendations"

	maxRecommendations = 10
)

type RecommendationsJob struct {
	db     *gorm.DB
	log    *logger.Logger
	movies repos.MovieRepo
	recs   repos.RecommendationRepo
}

func NewRecommendationsJob(db *gorm.DB, baseLog *logger.Logger, movies repos.MovieRepo, recs repos.RecommendationRepo) *RecommendationsJob {
	return &RecommendationsJob{
		db:     db,
		log:    baseLog.With("job", TypeRecommendations),
		movies: movies,
		recs:   recs,
	}
}

// Run recomputes recommendation lists, either for one movie or for every
// movie with genres and a rating. The scan is all-pairs per target — fine for
// catalogs in the low-to-mid thousands, and the first thing to revisit if the
// catalog outgrows that. One generated_at timestamp is shared across the whole
// invocation, and the entire run is a single transaction.
func (j *RecommendationsJob) Run(ctx context.Context, movieID *int) Result {
	generatedAt := time.Now().UTC()
	count := 0

	err := j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidates, err := j.movies.ListRecommendable(ctx, tx)
		if err != nil {
			return err
		}

		var targets []*types.Movie
		if movieID != nil {
			movie, err := j.movies.GetByID(ctx, tx, *movieID)
			if err != nil {
				return err
			}
			if movie != nil {
				targets = []*types.Movie{movie}
			}
		} else {
			targets = candidates
		}

		for _, target := range targets {
			if target.Rating == nil {
				continue
			}
			targetGenres := target.GenreIDs()
			if len(targetGenres) == 0 {
				continue
			}

			recs := make([]types.RecommendedMovie, 0, 16)
			for _, other := range candidates {
				if other.ID == target.ID || other.Rating == nil {
					continue
				}
				otherGenres := other.GenreIDs()
				if len(otherGenres) == 0 {
					continue
				}
				combined := scoring.Similarity(targetGenres, otherGenres, *target.Rating, *other.Rating)
				if combined > scoring.RecommendationThreshold {
					recs = append(recs, types.RecommendedMovie{
						MovieID: other.ID,
						Title:   other.Title,
						Score:   math.Round(combined*10000) / 10000,
						Rating:  other.Rating,
					})
				}
			}
			if len(recs) == 0 {
				continue
			}
			// Ties keep candidate iteration order; any stable total order
			// among exact ties is acceptable.
			sort.SliceStable(recs, func(a, b int) bool { return recs[a].Score > recs[b].Score })
			if len(recs) > maxRecommendations {
				recs = recs[:maxRecommendations]
			}

			if err := j.recs.DeleteByMovie(ctx, tx, target.ID); err != nil {
				return err
			}
			if err := j.recs.Create(ctx, tx, &types.MovieRecommendations{
				MovieID:         target.ID,
				Recommendations: recs,
				GeneratedAt:     generatedAt,
			}); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		j.log.Error("recommendations computation failed", "error", err)
		return errorResult(err)
	}

	j.log.Info("recommendations computed", "movies", count)
	return Result{
		Status:                   StatusSuccess,
		RecommendationsGenerated: count,
		GeneratedAt:              generatedAt.Format(time.RFC3339),
	}
}
