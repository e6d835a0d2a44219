package ingest

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"github.com/moviemetric/backend/internal/clients/tmdb"
	"github.com/moviemetric/backend/internal/jobs/compute"
	"github.com/moviemetric/backend/internal/types"
)

const TypeDetails = "ingest_movie_details"

const defaultDetailsBatch = 100

// RunDetails enriches movies that only have list-endpoint data with the full
// details record: named genres, runtime, budget, revenue, tagline, status.
// Individual fetch failures skip the movie and keep going.
func (j *IngestJob) RunDetails(ctx context.Context, limit int) compute.Result {
	if limit <= 0 {
		limit = defaultDetailsBatch
	}

	pending, err := j.movies.ListMissingDetails(ctx, nil, limit)
	if err != nil {
		return compute.Result{Status: compute.StatusError, Message: err.Error()}
	}

	enriched := 0
	for _, movie := range pending {
		if ctx.Err() != nil {
			return compute.Result{Status: compute.StatusError, Message: ctx.Err().Error()}
		}
		details, err := j.tmdb.MovieDetails(ctx, movie.ID)
		if err != nil {
			j.metrics.IncClientError("tmdb")
			j.log.Warn("Skipping details fetch", "movie_id", movie.ID, "error", err.Error())
			continue
		}
		if err := j.movies.Upsert(ctx, nil, movieFromDetails(details)); err != nil {
			j.log.Warn("Skipping details upsert", "movie_id", movie.ID, "error", err.Error())
			continue
		}
		enriched++
	}

	j.log.Info("Details enrichment finished", "candidates", len(pending), "enriched", enriched)
	return compute.Result{
		Status:          compute.StatusSuccess,
		MoviesProcessed: enriched,
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
	}
}

func movieFromDetails(d *tmdb.MovieDetails) *types.Movie {
	refs := make([]types.GenreRef, 0, len(d.Genres))
	for _, g := range d.Genres {
		refs = append(refs, types.GenreRef{ID: g.ID, Name: g.Name})
	}

	return &types.Movie{
		ID:           d.ID,
		Title:        d.Title,
		Overview:     d.Overview,
		ReleaseDate:  parseReleaseDate(d.ReleaseDate),
		Genres:       datatypes.NewJSONSlice(refs),
		Rating:       d.VoteAverage,
		VoteCount:    d.VoteCount,
		Popularity:   d.Popularity,
		PosterPath:   d.PosterPath,
		BackdropPath: d.BackdropPath,
		Runtime:      d.Runtime,
		Budget:       d.Budget,
		Revenue:      d.Revenue,
		Tagline:      d.Tagline,
		Status:       d.Status,
		IsTrending:   isTrendingFlag(d.Popularity),
		IsUnderrated: isUnderratedFlag(d.VoteAverage, d.VoteCount),
	}
}
