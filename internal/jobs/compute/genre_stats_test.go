package compute

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/moviemetric/backend/internal/repos"
	"github.com/moviemetric/backend/internal/types"
)

func genres(refs ...types.GenreRef) datatypes.JSONSlice[types.GenreRef] {
	return datatypes.NewJSONSlice(refs)
}

func TestGenreStatsSingleTaggedMovie(t *testing.T) {
	db, log := newTestDB(t)
	movies := repos.NewMovieRepo(db, log)
	statsRepo := repos.NewGenreStatsRepo(db, log)
	job := NewGenreStatsJob(db, log, movies, statsRepo)

	seedMovie(t, db, &types.Movie{
		ID:     1,
		Title:  "Action Flick",
		Rating: f64(8.5),
		Genres: genres(types.GenreRef{ID: 28, Name: "Action"}),
	})

	res := job.Run(context.Background(), "2024-02-01")
	if res.Status != StatusSuccess || res.GenresProcessed != 1 {
		t.Fatalf("expected one genre processed, got %+v", res)
	}

	date, _ := TargetDate("2024-02-01")
	rows, err := statsRepo.ListByDate(context.Background(), nil, date)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(rows))
	}
	row := rows[0]
	if row.GenreID != 28 || row.GenreName != "Action" || row.Volume != 1 {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.AvgRating == nil || *row.AvgRating != 8.5 {
		t.Fatalf("expected avg_rating 8.5, got %v", row.AvgRating)
	}
}

func TestGenreStatsPartialGenreNeverCounted(t *testing.T) {
	db, log := newTestDB(t)
	movies := repos.NewMovieRepo(db, log)
	statsRepo := repos.NewGenreStatsRepo(db, log)
	job := NewGenreStatsJob(db, log, movies, statsRepo)

	// Id-only entry from a list endpoint plus one complete entry.
	seedMovie(t, db, &types.Movie{
		ID:     1,
		Title:  "Partially Ingested",
		Rating: f64(7.0),
		Genres: genres(
			types.GenreRef{ID: 12},
			types.GenreRef{ID: 35, Name: "Comedy"},
		),
	})

	res := job.Run(context.Background(), "2024-02-01")
	if res.Status != StatusSuccess {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.GenresProcessed != 1 {
		t.Fatalf("id-only genre must be excluded, got %d genres", res.GenresProcessed)
	}

	date, _ := TargetDate("2024-02-01")
	rows, _ := statsRepo.ListByDate(context.Background(), nil, date)
	if len(rows) != 1 || rows[0].GenreID != 35 {
		t.Fatalf("expected only the complete genre entry, got %+v", rows)
	}
}

func TestGenreStatsUnratedMovieCountsVolumeOnly(t *testing.T) {
	db, log := newTestDB(t)
	movies := repos.NewMovieRepo(db, log)
	statsRepo := repos.NewGenreStatsRepo(db, log)
	job := NewGenreStatsJob(db, log, movies, statsRepo)

	seedMovie(t, db, &types.Movie{
		ID:     1,
		Title:  "Unrated",
		Genres: genres(types.GenreRef{ID: 18, Name: "Drama"}),
	})

	res := job.Run(context.Background(), "2024-02-01")
	if res.Status != StatusSuccess {
		t.Fatalf("expected success, got %+v", res)
	}

	date, _ := TargetDate("2024-02-01")
	rows, _ := statsRepo.ListByDate(context.Background(), nil, date)
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	if rows[0].Volume != 1 {
		t.Fatalf("expected volume 1, got %d", rows[0].Volume)
	}
	if rows[0].AvgRating != nil {
		t.Fatalf("expected nil avg_rating for unrated genre, got %v", *rows[0].AvgRating)
	}
}

func TestGenreStatsReplacesPartitionOnRerun(t *testing.T) {
	db, log := newTestDB(t)
	movies := repos.NewMovieRepo(db, log)
	statsRepo := repos.NewGenreStatsRepo(db, log)
	job := NewGenreStatsJob(db, log, movies, statsRepo)

	seedMovie(t, db, &types.Movie{
		ID:     1,
		Title:  "First",
		Rating: f64(6.0),
		Genres: genres(types.GenreRef{ID: 28, Name: "Action"}),
	})

	if res := job.Run(context.Background(), "2024-02-01"); res.Status != StatusSuccess {
		t.Fatalf("first run failed: %+v", res)
	}

	seedMovie(t, db, &types.Movie{
		ID:     2,
		Title:  "Second",
		Rating: f64(8.0),
		Genres: genres(types.GenreRef{ID: 28, Name: "Action"}),
	})

	if res := job.Run(context.Background(), "2024-02-01"); res.Status != StatusSuccess {
		t.Fatalf("second run failed: %+v", res)
	}

	date, _ := TargetDate("2024-02-01")
	rows, _ := statsRepo.ListByDate(context.Background(), nil, date)
	if len(rows) != 1 {
		t.Fatalf("rerun must not accumulate rows, got %d", len(rows))
	}
	if rows[0].Volume != 2 {
		t.Fatalf("expected recomputed volume 2, got %d", rows[0].Volume)
	}
	if rows[0].AvgRating == nil || *rows[0].AvgRating != 7.0 {
		t.Fatalf("expected recomputed avg 7.0, got %v", rows[0].AvgRating)
	}
}

func TestGenreStatsNameFollowsLastSupplier(t *testing.T) {
	// The aggregate keyed by id takes whichever name a movie record carried
	// last during the scan; both spellings collapse into one row.
	db, log := newTestDB(t)
	movies := repos.NewMovieRepo(db, log)
	statsRepo := repos.NewGenreStatsRepo(db, log)
	job := NewGenreStatsJob(db, log, movies, statsRepo)

	seedMovie(t, db, &types.Movie{
		ID: 1, Title: "A", Rating: f64(5),
		Genres: genres(types.GenreRef{ID: 878, Name: "Science Fiction"}),
	})
	seedMovie(t, db, &types.Movie{
		ID: 2, Title: "B", Rating: f64(7),
		Genres: genres(types.GenreRef{ID: 878, Name: "Sci-Fi"}),
	})

	res := job.Run(context.Background(), "2024-02-01")
	if res.Status != StatusSuccess || res.GenresProcessed != 1 {
		t.Fatalf("expected a single row for the shared id, got %+v", res)
	}
}
