package compute

import (
	"context"
	"testing"

	"github.com/moviemetric/backend/internal/repos"
	"github.com/moviemetric/backend/internal/types"
)

func TestRecommendationsThresholdIsStrict(t *testing.T) {
	db, log := newTestDB(t)
	movies := repos.NewMovieRepo(db, log)
	recs := repos.NewRecommendationRepo(db, log)
	job := NewRecommendationsJob(db, log, movies, recs)

	// Disjoint genres, max rating distance: combined score 0, below threshold.
	seedMovie(t, db, &types.Movie{ID: 1, Title: "A", Rating: f64(0), Genres: genres(types.GenreRef{ID: 1})})
	seedMovie(t, db, &types.Movie{ID: 2, Title: "B", Rating: f64(10), Genres: genres(types.GenreRef{ID: 2})})

	res := job.Run(context.Background(), nil)
	if res.Status != StatusSuccess {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.RecommendationsGenerated != 0 {
		t.Fatalf("expected no rows for unqualifying pairs, got %d", res.RecommendationsGenerated)
	}

	row, err := recs.GetByMovie(context.Background(), nil, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row != nil {
		t.Fatalf("absence of a row expected, got %+v", row)
	}
}

func TestRecommendationsSymmetricPair(t *testing.T) {
	db, log := newTestDB(t)
	movies := repos.NewMovieRepo(db, log)
	recs := repos.NewRecommendationRepo(db, log)
	job := NewRecommendationsJob(db, log, movies, recs)

	shared := genres(types.GenreRef{ID: 28, Name: "Action"}, types.GenreRef{ID: 53, Name: "Thriller"})
	seedMovie(t, db, &types.Movie{ID: 1, Title: "A", Rating: f64(7.5), Genres: shared})
	seedMovie(t, db, &types.Movie{ID: 2, Title: "B", Rating: f64(7.0), Genres: shared})

	res := job.Run(context.Background(), nil)
	if res.Status != StatusSuccess || res.RecommendationsGenerated != 2 {
		t.Fatalf("expected both movies to get rows, got %+v", res)
	}

	rowA, _ := recs.GetByMovie(context.Background(), nil, 1)
	rowB, _ := recs.GetByMovie(context.Background(), nil, 2)
	if rowA == nil || rowB == nil {
		t.Fatalf("expected rows for both movies")
	}
	if len(rowA.Recommendations) != 1 || rowA.Recommendations[0].MovieID != 2 {
		t.Fatalf("unexpected recommendations for A: %+v", rowA.Recommendations)
	}
	if len(rowB.Recommendations) != 1 || rowB.Recommendations[0].MovieID != 1 {
		t.Fatalf("unexpected recommendations for B: %+v", rowB.Recommendations)
	}
	if rowA.Recommendations[0].Score != rowB.Recommendations[0].Score {
		t.Fatalf("similarity must be symmetric: %v vs %v", rowA.Recommendations[0].Score, rowB.Recommendations[0].Score)
	}
	if !rowA.GeneratedAt.Equal(rowB.GeneratedAt) {
		t.Fatalf("generated_at must be shared across one invocation")
	}
}

func TestRecommendationsTruncatedToTopTen(t *testing.T) {
	db, log := newTestDB(t)
	movies := repos.NewMovieRepo(db, log)
	recs := repos.NewRecommendationRepo(db, log)
	job := NewRecommendationsJob(db, log, movies, recs)

	shared := genres(types.GenreRef{ID: 28, Name: "Action"})
	seedMovie(t, db, &types.Movie{ID: 1, Title: "Target", Rating: f64(8.0), Genres: shared})
	for i := 2; i <= 16; i++ {
		seedMovie(t, db, &types.Movie{ID: i, Title: "Neighbor", Rating: f64(7.5), Genres: shared})
	}

	res := job.Run(context.Background(), nil)
	if res.Status != StatusSuccess {
		t.Fatalf("expected success, got %+v", res)
	}

	row, _ := recs.GetByMovie(context.Background(), nil, 1)
	if row == nil {
		t.Fatalf("expected a row for the target")
	}
	if len(row.Recommendations) != 10 {
		t.Fatalf("expected top 10 truncation, got %d", len(row.Recommendations))
	}
	for i := 1; i < len(row.Recommendations); i++ {
		if row.Recommendations[i-1].Score < row.Recommendations[i].Score {
			t.Fatalf("recommendations not sorted by score descending: %+v", row.Recommendations)
		}
	}
}

func TestRecommendationsSingleMovieScope(t *testing.T) {
	db, log := newTestDB(t)
	movies := repos.NewMovieRepo(db, log)
	recs := repos.NewRecommendationRepo(db, log)
	job := NewRecommendationsJob(db, log, movies, recs)

	shared := genres(types.GenreRef{ID: 28, Name: "Action"})
	seedMovie(t, db, &types.Movie{ID: 1, Title: "A", Rating: f64(8.0), Genres: shared})
	seedMovie(t, db, &types.Movie{ID: 2, Title: "B", Rating: f64(7.5), Genres: shared})

	target := 1
	res := job.Run(context.Background(), &target)
	if res.Status != StatusSuccess || res.RecommendationsGenerated != 1 {
		t.Fatalf("expected exactly one row generated, got %+v", res)
	}

	rowA, _ := recs.GetByMovie(context.Background(), nil, 1)
	rowB, _ := recs.GetByMovie(context.Background(), nil, 2)
	if rowA == nil {
		t.Fatalf("expected row for targeted movie")
	}
	if rowB != nil {
		t.Fatalf("single-movie scope must not touch other movies")
	}
}

func TestRecommendationsSkipsTargetsWithoutGenresOrRating(t *testing.T) {
	db, log := newTestDB(t)
	movies := repos.NewMovieRepo(db, log)
	recs := repos.NewRecommendationRepo(db, log)
	job := NewRecommendationsJob(db, log, movies, recs)

	seedMovie(t, db, &types.Movie{ID: 1, Title: "NoGenres", Rating: f64(8.0), Genres: genres()})
	seedMovie(t, db, &types.Movie{ID: 2, Title: "NoRating", Genres: genres(types.GenreRef{ID: 28, Name: "Action"})})
	seedMovie(t, db, &types.Movie{ID: 3, Title: "Fine", Rating: f64(8.0), Genres: genres(types.GenreRef{ID: 28, Name: "Action"})})

	res := job.Run(context.Background(), nil)
	if res.Status != StatusSuccess {
		t.Fatalf("expected success, got %+v", res)
	}
	// Movie 3 has no qualifying neighbor (1 has no genres, 2 no rating), so
	// nothing at all is generated.
	if res.RecommendationsGenerated != 0 {
		t.Fatalf("expected zero rows, got %d", res.RecommendationsGenerated)
	}
}

func TestRecommendationsReplacesPriorRowForMovie(t *testing.T) {
	db, log := newTestDB(t)
	movies := repos.NewMovieRepo(db, log)
	recs := repos.NewRecommendationRepo(db, log)
	job := NewRecommendationsJob(db, log, movies, recs)

	shared := genres(types.GenreRef{ID: 28, Name: "Action"})
	seedMovie(t, db, &types.Movie{ID: 1, Title: "A", Rating: f64(8.0), Genres: shared})
	seedMovie(t, db, &types.Movie{ID: 2, Title: "B", Rating: f64(7.5), Genres: shared})

	if res := job.Run(context.Background(), nil); res.Status != StatusSuccess {
		t.Fatalf("first run failed: %+v", res)
	}
	if res := job.Run(context.Background(), nil); res.Status != StatusSuccess {
		t.Fatalf("second run failed: %+v", res)
	}

	var n int64
	if err := db.Model(&types.MovieRecommendations{}).Where("movie_id = ?", 1).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("reruns must replace, not accumulate: %d rows", n)
	}
}
