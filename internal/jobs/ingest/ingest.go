package ingest

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"github.com/moviemetric/backend/internal/clients/tmdb"
	"github.com/moviemetric/backend/internal/jobs/compute"
	"github.com/moviemetric/backend/internal/observability"
	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/repos"
	"github.com/moviemetric/backend/internal/types"
)

const TypeIngest = "ingest_movies"

// Catalog flags derived at ingestion time.
const (
	trendingPopularityFloor = 50.0
	underratedRatingFloor   = 7.5
	underratedVoteCeiling   = 1000
)

var defaultCategories = []string{"popular", "top_rated", "now_playing", "upcoming"}

// Options controls one ingestion run. Zero values mean the default sweep:
// every list category plus weekly trending, two pages each.
type Options struct {
	Categories      []string `json:"categories,omitempty"`
	Pages           int      `json:"pages,omitempty"`
	IncludeTrending bool     `json:"include_trending,omitempty"`
	TrendingWindow  string   `json:"trending_window,omitempty"`
	DiscoverGenres  []int    `json:"discover_genres,omitempty"`
}

type IngestJob struct {
	log     *logger.Logger
	tmdb    tmdb.Client
	movies  repos.MovieRepo
	metrics *observability.Metrics
}

func NewIngestJob(baseLog *logger.Logger, client tmdb.Client, movies repos.MovieRepo, metrics *observability.Metrics) *IngestJob {
	return &IngestJob{
		log:     baseLog.With("job", TypeIngest),
		tmdb:    client,
		movies:  movies,
		metrics: metrics,
	}
}

// Run sweeps the configured TMDB endpoints and upserts every movie it can
// fetch. Page and movie failures are logged and skipped; the run only fails
// outright when the context dies or every page failed.
func (j *IngestJob) Run(ctx context.Context, opts Options) compute.Result {
	categories := opts.Categories
	if len(categories) == 0 {
		categories = defaultCategories
		opts.IncludeTrending = true
	}
	pages := opts.Pages
	if pages <= 0 {
		pages = 2
	}

	genreNames := j.loadGenreNames(ctx)

	processed := 0
	pagesFetched := 0
	pagesFailed := 0

	upsertPage := func(page *tmdb.Page) {
		for _, summary := range page.Results {
			if ctx.Err() != nil {
				return
			}
			movie := movieFromSummary(summary, genreNames)
			if err := j.movies.Upsert(ctx, nil, movie); err != nil {
				j.log.Warn("Skipping movie upsert", "movie_id", movie.ID, "error", err.Error())
				continue
			}
			processed++
		}
	}

	for _, category := range categories {
		for p := 1; p <= pages; p++ {
			if ctx.Err() != nil {
				return compute.Result{Status: compute.StatusError, Message: ctx.Err().Error()}
			}
			started := time.Now()
			page, err := j.tmdb.ListMovies(ctx, category, p)
			j.metrics.ObserveClientPerf("tmdb", "list_"+category, time.Since(started).Seconds())
			if err != nil {
				pagesFailed++
				j.metrics.IncClientError("tmdb")
				j.log.Warn("Skipping list page", "category", category, "page", p, "error", err.Error())
				continue
			}
			pagesFetched++
			upsertPage(page)
			if page.TotalPages > 0 && p >= page.TotalPages {
				break
			}
		}
	}

	if opts.IncludeTrending {
		for p := 1; p <= pages; p++ {
			started := time.Now()
			page, err := j.tmdb.Trending(ctx, opts.TrendingWindow, p)
			j.metrics.ObserveClientPerf("tmdb", "trending", time.Since(started).Seconds())
			if err != nil {
				pagesFailed++
				j.metrics.IncClientError("tmdb")
				j.log.Warn("Skipping trending page", "page", p, "error", err.Error())
				continue
			}
			pagesFetched++
			upsertPage(page)
		}
	}

	for _, genreID := range opts.DiscoverGenres {
		page, err := j.tmdb.Discover(ctx, genreID, 1)
		if err != nil {
			pagesFailed++
			j.metrics.IncClientError("tmdb")
			j.log.Warn("Skipping discover page", "genre_id", genreID, "error", err.Error())
			continue
		}
		pagesFetched++
		upsertPage(page)
	}

	if pagesFetched == 0 && pagesFailed > 0 {
		j.log.Error("Ingestion fetched no pages", "pages_failed", pagesFailed)
		return compute.Result{Status: compute.StatusError, Message: "all source pages failed"}
	}

	j.metrics.AddMoviesUpserted(processed)
	j.log.Info("Ingestion run finished",
		"movies_processed", processed,
		"pages_fetched", pagesFetched,
		"pages_failed", pagesFailed,
	)
	return compute.Result{
		Status:          compute.StatusSuccess,
		MoviesProcessed: processed,
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
	}
}

func (j *IngestJob) loadGenreNames(ctx context.Context) map[int]string {
	names := map[int]string{}
	genres, err := j.tmdb.Genres(ctx)
	if err != nil {
		// List endpoints only carry genre ids; without names those entries
		// stay partial and aggregation skips them until details arrive.
		j.log.Warn("Genre list unavailable; ingesting ids only", "error", err.Error())
		return names
	}
	for _, g := range genres {
		names[g.ID] = g.Name
	}
	return names
}

func movieFromSummary(s tmdb.MovieSummary, genreNames map[int]string) *types.Movie {
	refs := make([]types.GenreRef, 0, len(s.GenreIDs))
	for _, id := range s.GenreIDs {
		refs = append(refs, types.GenreRef{ID: id, Name: genreNames[id]})
	}

	return &types.Movie{
		ID:           s.ID,
		Title:        s.Title,
		Overview:     s.Overview,
		ReleaseDate:  parseReleaseDate(s.ReleaseDate),
		Genres:       datatypes.NewJSONSlice(refs),
		Rating:       s.VoteAverage,
		VoteCount:    s.VoteCount,
		Popularity:   s.Popularity,
		PosterPath:   s.PosterPath,
		BackdropPath: s.BackdropPath,
		IsTrending:   isTrendingFlag(s.Popularity),
		IsUnderrated: isUnderratedFlag(s.VoteAverage, s.VoteCount),
	}
}

func parseReleaseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	d, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return nil
	}
	return &d
}

func isTrendingFlag(popularity *float64) bool {
	return popularity != nil && *popularity >= trendingPopularityFloor
}

func isUnderratedFlag(rating *float64, voteCount int64) bool {
	return rating != nil && *rating >= underratedRatingFloor && voteCount < underratedVoteCeiling
}
