package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/moviemetric/backend/internal/jobs/compute"
	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/repos"
	"github.com/moviemetric/backend/internal/types"
)

type fixture struct {
	db      *gorm.DB
	log     *logger.Logger
	movies  repos.MovieRepo
	stats   repos.GenreStatsRepo
	decades repos.RatingsByDecadeRepo
	trend   repos.TrendingRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&types.Movie{},
		&types.MovieTrendingDaily{},
		&types.GenreStatsDaily{},
		&types.RatingsByDecade{},
		&types.MovieRecommendations{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return &fixture{
		db:      db,
		log:     log,
		movies:  repos.NewMovieRepo(db, log),
		stats:   repos.NewGenreStatsRepo(db, log),
		decades: repos.NewRatingsByDecadeRepo(db, log),
		trend:   repos.NewTrendingRepo(db, log),
	}
}

func (f *fixture) service() AnalyticsService {
	return NewAnalyticsService(f.db, f.log, f.movies, f.stats, f.decades, f.trend)
}

func f64(v float64) *float64 { return &v }

func (f *fixture) seed(t *testing.T, movie *types.Movie) {
	t.Helper()
	if err := f.db.Create(movie).Error; err != nil {
		t.Fatalf("seed movie %d: %v", movie.ID, err)
	}
}

func actionComedy() datatypes.JSONSlice[types.GenreRef] {
	return datatypes.NewJSONSlice([]types.GenreRef{
		{ID: 28, Name: "Action"},
		{ID: 35, Name: "Comedy"},
	})
}

func TestTopGenresFallbackMatchesBatchJob(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	f.seed(t, &types.Movie{ID: 1, Title: "A", Rating: f64(8), Genres: actionComedy()})
	f.seed(t, &types.Movie{ID: 2, Title: "B", Rating: f64(6), Genres: datatypes.NewJSONSlice([]types.GenreRef{{ID: 28, Name: "Action"}})})

	// No artifact yet: fallback path.
	fromFallback, err := svc.TopGenres(context.Background())
	if err != nil {
		t.Fatalf("fallback: %v", err)
	}

	// Materialize the artifact and read again.
	job := compute.NewGenreStatsJob(f.db, f.log, f.movies, f.stats)
	if res := job.Run(context.Background(), "2024-02-01"); res.Status != compute.StatusSuccess {
		t.Fatalf("batch job failed: %+v", res)
	}
	fromArtifact, err := svc.TopGenres(context.Background())
	if err != nil {
		t.Fatalf("artifact read: %v", err)
	}

	if len(fromFallback) != len(fromArtifact) {
		t.Fatalf("fallback and artifact disagree on row count: %d vs %d", len(fromFallback), len(fromArtifact))
	}
	for i := range fromFallback {
		fb, ar := fromFallback[i], fromArtifact[i]
		if fb.ID != ar.ID || fb.MovieCount != ar.MovieCount {
			t.Fatalf("ordering/count mismatch at %d: fallback %+v vs artifact %+v", i, fb, ar)
		}
	}
	if fromFallback[0].ID != 28 || fromFallback[0].MovieCount != 2 {
		t.Fatalf("expected Action first with count 2, got %+v", fromFallback[0])
	}
}

func TestRatingsByDecadeFallbackMatchesBatchJob(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	d1990 := mustDate(t, "1994-06-01")
	d2010 := mustDate(t, "2013-06-01")
	f.seed(t, &types.Movie{ID: 1, Title: "Old", ReleaseDate: &d1990, Rating: f64(9)})
	f.seed(t, &types.Movie{ID: 2, Title: "New", ReleaseDate: &d2010, Rating: f64(7)})

	fromFallback, err := svc.RatingsByDecade(context.Background())
	if err != nil {
		t.Fatalf("fallback: %v", err)
	}

	job := compute.NewRatingsByDecadeJob(f.db, f.log, f.movies, f.decades)
	if res := job.Run(context.Background()); res.Status != compute.StatusSuccess {
		t.Fatalf("batch job failed: %+v", res)
	}
	fromArtifact, err := svc.RatingsByDecade(context.Background())
	if err != nil {
		t.Fatalf("artifact read: %v", err)
	}

	if len(fromFallback) != 2 || len(fromArtifact) != 2 {
		t.Fatalf("expected 2 buckets both ways, got %d and %d", len(fromFallback), len(fromArtifact))
	}
	for i := range fromFallback {
		fb, ar := fromFallback[i], fromArtifact[i]
		if fb.Decade != ar.Decade || fb.MovieCount != ar.MovieCount {
			t.Fatalf("bucket mismatch at %d: %+v vs %+v", i, fb, ar)
		}
		if fb.AvgRating == nil || ar.AvgRating == nil || *fb.AvgRating != *ar.AvgRating {
			t.Fatalf("avg mismatch at %d: %+v vs %+v", i, fb, ar)
		}
	}
}

func TestTrendingPrefersArtifact(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	f.seed(t, &types.Movie{ID: 1, Title: "A", Popularity: f64(10), Rating: f64(5), VoteCount: 10})
	f.seed(t, &types.Movie{ID: 2, Title: "B", Popularity: f64(90), Rating: f64(9), VoteCount: 900})

	// Fallback first.
	entries, err := svc.Trending(context.Background(), 20)
	if err != nil {
		t.Fatalf("fallback: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != 2 {
		t.Fatalf("fallback should score and rank on the fly, got %+v", entries)
	}
	if entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Fatalf("fallback ranks not dense: %+v", entries)
	}

	job := compute.NewTrendingJob(f.db, f.log, f.movies, f.trend)
	if res := job.Run(context.Background(), "2024-02-01"); res.Status != compute.StatusSuccess {
		t.Fatalf("batch job failed: %+v", res)
	}

	entries, err = svc.Trending(context.Background(), 20)
	if err != nil {
		t.Fatalf("artifact read: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != 2 || entries[0].Rank != 1 {
		t.Fatalf("artifact read wrong: %+v", entries)
	}
}

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		t.Fatalf("parse date %q: %v", raw, err)
	}
	return d
}
