package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/jobs/compute"
	"github.com/moviemetric/backend/internal/jobs/ingest"
	"github.com/moviemetric/backend/internal/jobs/search"
	"github.com/moviemetric/backend/internal/observability"
	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/temporalx/jobrun"
)

// wireJobs builds every batch job and registers it in the job registry.
// The same registry backs the Temporal worker and inline admin runs.
func wireJobs(db *gorm.DB, log *logger.Logger, reposet Repos, clients Clients, metrics *observability.Metrics) *jobrun.Registry {
	log.Info("Wiring jobs...")
	registry := jobrun.NewRegistry()

	trendingJob := compute.NewTrendingJob(db, log, reposet.Movie, reposet.Trending)
	registry.Register(compute.TypeTrending, func(ctx context.Context, req jobrun.JobRequest) compute.Result {
		return trendingJob.Run(ctx, req.Date)
	})

	genreStatsJob := compute.NewGenreStatsJob(db, log, reposet.Movie, reposet.GenreStats)
	registry.Register(compute.TypeGenreStats, func(ctx context.Context, req jobrun.JobRequest) compute.Result {
		return genreStatsJob.Run(ctx, req.Date)
	})

	decadesJob := compute.NewRatingsByDecadeJob(db, log, reposet.Movie, reposet.RatingsByDecade)
	registry.Register(compute.TypeRatingsByDecade, func(ctx context.Context, req jobrun.JobRequest) compute.Result {
		return decadesJob.Run(ctx)
	})

	recsJob := compute.NewRecommendationsJob(db, log, reposet.Movie, reposet.Recommendation)
	registry.Register(compute.TypeRecommendations, func(ctx context.Context, req jobrun.JobRequest) compute.Result {
		return recsJob.Run(ctx, req.MovieID)
	})

	if clients.TMDB != nil {
		ingestJob := ingest.NewIngestJob(log, clients.TMDB, reposet.Movie, metrics)
		registry.Register(ingest.TypeIngest, func(ctx context.Context, req jobrun.JobRequest) compute.Result {
			res := ingestJob.Run(ctx, ingest.Options{Categories: req.Categories, Pages: req.Pages})
			if res.Status != compute.StatusSuccess {
				return res
			}
			if details := ingestJob.RunDetails(ctx, req.Limit); details.Status != compute.StatusSuccess {
				log.Warn("detail enrichment failed after ingest", "message", details.Message)
			}
			return res
		})
		registry.Register(ingest.TypeDetails, func(ctx context.Context, req jobrun.JobRequest) compute.Result {
			return ingestJob.RunDetails(ctx, req.Limit)
		})
	}

	if clients.Search != nil {
		indexJob := search.NewIndexJob(log, reposet.Movie, clients.Search, metrics)
		registry.Register(search.TypeSearchIndex, func(ctx context.Context, req jobrun.JobRequest) compute.Result {
			return indexJob.Run(ctx)
		})
	}

	log.Info("Jobs registered", "job_types", registry.Types())
	return registry
}
