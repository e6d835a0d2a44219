package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/repos"
	"github.com/moviemetric/backend/internal/types"
)

func (f *fixture) movieService() MovieService {
	recs := repos.NewRecommendationRepo(f.db, f.log)
	return NewMovieService(f.db, f.log, f.movies, recs)
}

func TestListClampsLimitAndOffset(t *testing.T) {
	f := newFixture(t)
	for i := 1; i <= 30; i++ {
		f.seed(t, &types.Movie{ID: i, Title: fmt.Sprintf("Movie %d", i), Popularity: f64(float64(i))})
	}
	svc := f.movieService()
	ctx := context.Background()

	// Out-of-range limits fall back to a page of 20.
	for _, limit := range []int{0, -5, 101} {
		movies, err := svc.List(ctx, limit, 0)
		if err != nil {
			t.Fatalf("list limit=%d: %v", limit, err)
		}
		if len(movies) != 20 {
			t.Fatalf("limit=%d: expected 20 movies, got %d", limit, len(movies))
		}
	}

	// Negative offset resets to zero.
	withOffset, err := svc.List(ctx, 10, -3)
	if err != nil {
		t.Fatalf("list negative offset: %v", err)
	}
	fromStart, err := svc.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list zero offset: %v", err)
	}
	if len(withOffset) != len(fromStart) || withOffset[0].ID != fromStart[0].ID {
		t.Fatalf("negative offset should behave like zero offset")
	}
}

func TestGetMissingMovie(t *testing.T) {
	f := newFixture(t)
	svc := f.movieService()

	if _, err := svc.Get(context.Background(), 999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestRecommendationsRoundTrip(t *testing.T) {
	f := newFixture(t)
	svc := f.movieService()
	ctx := context.Background()

	f.seed(t, &types.Movie{ID: 603, Title: "The Matrix"})
	recs := repos.NewRecommendationRepo(f.db, f.log)
	stored := &types.MovieRecommendations{
		MovieID: 603,
		Recommendations: datatypes.NewJSONSlice([]types.RecommendedMovie{
			{MovieID: 604, Title: "The Matrix Reloaded", Score: 0.91},
		}),
		GeneratedAt: time.Now().UTC(),
	}
	if err := recs.Create(ctx, nil, stored); err != nil {
		t.Fatalf("store recommendations: %v", err)
	}

	got, err := svc.Recommendations(ctx, 603)
	if err != nil {
		t.Fatalf("recommendations: %v", err)
	}
	if len(got.Recommendations) != 1 || got.Recommendations[0].MovieID != 604 {
		t.Fatalf("unexpected recommendations: %+v", got.Recommendations)
	}
}
