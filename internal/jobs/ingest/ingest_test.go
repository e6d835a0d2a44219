package ingest

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/moviemetric/backend/internal/clients/tmdb"
	"github.com/moviemetric/backend/internal/jobs/compute"
	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/repos"
	"github.com/moviemetric/backend/internal/types"
)

type fakeTMDB struct {
	pages       map[string][]*tmdb.Page
	trending    []*tmdb.Page
	details     map[int]*tmdb.MovieDetails
	genres      []tmdb.Genre
	genresErr   error
	listErr     map[string]error
	detailsErr  map[int]error
	listCalls   int
	detailCalls int
}

func (f *fakeTMDB) ListMovies(_ context.Context, category string, page int) (*tmdb.Page, error) {
	f.listCalls++
	if err := f.listErr[category]; err != nil {
		return nil, err
	}
	pages := f.pages[category]
	if page < 1 || page > len(pages) {
		return &tmdb.Page{Page: page, TotalPages: len(pages)}, nil
	}
	return pages[page-1], nil
}

func (f *fakeTMDB) Trending(_ context.Context, _ string, page int) (*tmdb.Page, error) {
	if page < 1 || page > len(f.trending) {
		return &tmdb.Page{Page: page, TotalPages: len(f.trending)}, nil
	}
	return f.trending[page-1], nil
}

func (f *fakeTMDB) Discover(_ context.Context, _ int, page int) (*tmdb.Page, error) {
	return &tmdb.Page{Page: page}, nil
}

func (f *fakeTMDB) MovieDetails(_ context.Context, id int) (*tmdb.MovieDetails, error) {
	f.detailCalls++
	if err := f.detailsErr[id]; err != nil {
		return nil, err
	}
	d, ok := f.details[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return d, nil
}

func (f *fakeTMDB) Genres(_ context.Context) ([]tmdb.Genre, error) {
	if f.genresErr != nil {
		return nil, f.genresErr
	}
	return f.genres, nil
}

func newTestDB(t *testing.T) *gorm.DB {
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
	if err := db.AutoMigrate(&types.Movie{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newJob(t *testing.T, db *gorm.DB, client tmdb.Client) (*IngestJob, repos.MovieRepo) {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	movies := repos.NewMovieRepo(db, log)
	return NewIngestJob(log, client, movies, nil), movies
}

func f64(v float64) *float64 { return &v }

func summary(id int, title string, popularity, rating float64, votes int64, genreIDs ...int) tmdb.MovieSummary {
	return tmdb.MovieSummary{
		ID:          id,
		Title:       title,
		ReleaseDate: "2021-07-09",
		GenreIDs:    genreIDs,
		VoteAverage: f64(rating),
		VoteCount:   votes,
		Popularity:  f64(popularity),
	}
}

func TestRunUpsertsMoviesWithGenreNames(t *testing.T) {
	db := newTestDB(t)
	fake := &fakeTMDB{
		genres: []tmdb.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
		pages: map[string][]*tmdb.Page{
			"popular": {{
				Page:       1,
				TotalPages: 1,
				Results:    []tmdb.MovieSummary{summary(603, "The Matrix", 85, 8.2, 26000, 28, 878)},
			}},
		},
	}
	job, movies := newJob(t, db, fake)

	res := job.Run(context.Background(), Options{Categories: []string{"popular"}, Pages: 2})
	if res.Status != compute.StatusSuccess || res.MoviesProcessed != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	got, err := movies.GetByID(context.Background(), nil, 603)
	if err != nil || got == nil {
		t.Fatalf("movie not stored: %v", err)
	}
	if len(got.Genres) != 2 || got.Genres[0].Name != "Action" {
		t.Fatalf("genre names not resolved: %+v", got.Genres)
	}
	if got.ReleaseDate == nil {
		t.Fatal("release date not parsed")
	}
	if !got.IsTrending {
		t.Fatal("popularity 85 should flag trending")
	}
	if got.IsUnderrated {
		t.Fatal("26000 votes should not flag underrated")
	}
}

func TestRunSkipsFailedCategoriesAndContinues(t *testing.T) {
	db := newTestDB(t)
	fake := &fakeTMDB{
		listErr: map[string]error{"popular": errors.New("upstream down")},
		pages: map[string][]*tmdb.Page{
			"top_rated": {{
				Page:       1,
				TotalPages: 1,
				Results:    []tmdb.MovieSummary{summary(238, "The Godfather", 60, 8.7, 19000)},
			}},
		},
	}
	job, movies := newJob(t, db, fake)

	res := job.Run(context.Background(), Options{Categories: []string{"popular", "top_rated"}, Pages: 1})
	if res.Status != compute.StatusSuccess {
		t.Fatalf("partial failure should still succeed: %+v", res)
	}
	if res.MoviesProcessed != 1 {
		t.Fatalf("expected 1 movie from surviving category, got %d", res.MoviesProcessed)
	}
	got, err := movies.GetByID(context.Background(), nil, 238)
	if err != nil || got == nil {
		t.Fatalf("surviving category not ingested: %v", err)
	}
}

func TestRunFailsWhenEverySourceFails(t *testing.T) {
	db := newTestDB(t)
	fake := &fakeTMDB{
		listErr: map[string]error{"popular": errors.New("down"), "top_rated": errors.New("down")},
	}
	job, _ := newJob(t, db, fake)

	res := job.Run(context.Background(), Options{Categories: []string{"popular", "top_rated"}, Pages: 1})
	if res.Status != compute.StatusError {
		t.Fatalf("all sources failing should fail the run: %+v", res)
	}
}

func TestUnderratedBoundary(t *testing.T) {
	cases := []struct {
		rating *float64
		votes  int64
		want   bool
	}{
		{f64(7.5), 999, true},
		{f64(7.5), 1000, false},
		{f64(7.4), 999, false},
		{f64(9.0), 500, true},
		{nil, 100, false},
	}
	for _, tc := range cases {
		if got := isUnderratedFlag(tc.rating, tc.votes); got != tc.want {
			t.Errorf("isUnderratedFlag(%v, %d) = %v, want %v", tc.rating, tc.votes, got, tc.want)
		}
	}
}

func TestTrendingFlagBoundary(t *testing.T) {
	if !isTrendingFlag(f64(50)) {
		t.Fatal("popularity 50 should flag trending")
	}
	if isTrendingFlag(f64(49.99)) {
		t.Fatal("popularity below 50 should not flag trending")
	}
	if isTrendingFlag(nil) {
		t.Fatal("missing popularity should not flag trending")
	}
}

func TestParseReleaseDateBadInput(t *testing.T) {
	if parseReleaseDate("") != nil {
		t.Fatal("empty date should map to nil")
	}
	if parseReleaseDate("not-a-date") != nil {
		t.Fatal("malformed date should map to nil")
	}
	if d := parseReleaseDate("1999-03-30"); d == nil || d.Year() != 1999 {
		t.Fatalf("valid date mis-parsed: %v", d)
	}
}

func TestRunUpsertIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	fake := &fakeTMDB{
		pages: map[string][]*tmdb.Page{
			"popular": {{
				Page:       1,
				TotalPages: 1,
				Results:    []tmdb.MovieSummary{summary(603, "The Matrix", 85, 8.2, 26000, 28)},
			}},
		},
	}
	job, movies := newJob(t, db, fake)

	for i := 0; i < 2; i++ {
		if res := job.Run(context.Background(), Options{Categories: []string{"popular"}, Pages: 1}); res.Status != compute.StatusSuccess {
			t.Fatalf("run %d: %+v", i, res)
		}
	}

	n, err := movies.Count(context.Background(), nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("rerun should not duplicate rows, got %d", n)
	}
}

func TestRunDetailsEnrichesAndSkipsFailures(t *testing.T) {
	db := newTestDB(t)
	runtime := 136
	budget := int64(63000000)
	fake := &fakeTMDB{
		pages: map[string][]*tmdb.Page{
			"popular": {{
				Page:       1,
				TotalPages: 1,
				Results: []tmdb.MovieSummary{
					summary(603, "The Matrix", 85, 8.2, 26000, 28),
					summary(604, "The Matrix Reloaded", 60, 7.0, 20000, 28),
				},
			}},
		},
		details: map[int]*tmdb.MovieDetails{
			603: {
				ID:          603,
				Title:       "The Matrix",
				ReleaseDate: "1999-03-30",
				Genres:      []tmdb.Genre{{ID: 28, Name: "Action"}},
				VoteAverage: f64(8.2),
				VoteCount:   26000,
				Popularity:  f64(85),
				Runtime:     &runtime,
				Budget:      &budget,
				Tagline:     "Free your mind.",
				Status:      "Released",
			},
		},
		detailsErr: map[int]error{604: errors.New("timeout")},
	}
	job, movies := newJob(t, db, fake)

	if res := job.Run(context.Background(), Options{Categories: []string{"popular"}, Pages: 1}); res.Status != compute.StatusSuccess {
		t.Fatalf("ingest: %+v", res)
	}

	res := job.RunDetails(context.Background(), 10)
	if res.Status != compute.StatusSuccess {
		t.Fatalf("details: %+v", res)
	}
	if res.MoviesProcessed != 1 {
		t.Fatalf("expected 1 enriched movie, got %d", res.MoviesProcessed)
	}

	got, err := movies.GetByID(context.Background(), nil, 603)
	if err != nil || got == nil {
		t.Fatalf("enriched movie missing: %v", err)
	}
	if got.Runtime == nil || *got.Runtime != 136 {
		t.Fatalf("runtime not stored: %+v", got.Runtime)
	}
	if got.Tagline != "Free your mind." || got.Status != "Released" {
		t.Fatalf("details fields not stored: %+v", got)
	}
}
