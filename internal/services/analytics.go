package services

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/jobs/compute"
	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/repos"
	"github.com/moviemetric/backend/internal/scoring"
	"github.com/moviemetric/backend/internal/types"
)

const topGenresLimit = 20

// TopGenre is the read shape for genre popularity, whether it came from the
// precomputed artifact or the on-the-fly fallback.
type TopGenre struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	MovieCount int      `json:"movie_count"`
	AvgRating  *float64 `json:"avg_rating,omitempty"`
}

type DecadeStats struct {
	Decade     int      `json:"decade"`
	AvgRating  *float64 `json:"avg_rating,omitempty"`
	MovieCount int      `json:"movie_count"`
}

type TrendingMovie struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Popularity    *float64 `json:"popularity,omitempty"`
	VoteAverage   *float64 `json:"vote_average,omitempty"`
	VoteCount     int64    `json:"vote_count"`
	TrendingScore float64  `json:"trending_score"`
	Rank          int      `json:"rank,omitempty"`
}

type AnalyticsService interface {
	TopGenres(ctx context.Context) ([]TopGenre, error)
	GenreStatsForDate(ctx context.Context, date time.Time) ([]*types.GenreStatsDaily, error)
	RatingsByDecade(ctx context.Context) ([]DecadeStats, error)
	Trending(ctx context.Context, limit int) ([]TrendingMovie, error)
}

type analyticsService struct {
	db      *gorm.DB
	log     *logger.Logger
	movies  repos.MovieRepo
	stats   repos.GenreStatsRepo
	decades repos.RatingsByDecadeRepo
	trend   repos.TrendingRepo
}

func NewAnalyticsService(
	db *gorm.DB,
	baseLog *logger.Logger,
	movies repos.MovieRepo,
	stats repos.GenreStatsRepo,
	decades repos.RatingsByDecadeRepo,
	trend repos.TrendingRepo,
) AnalyticsService {
	return &analyticsService{
		db:      db,
		log:     baseLog.With("service", "AnalyticsService"),
		movies:  movies,
		stats:   stats,
		decades: decades,
		trend:   trend,
	}
}

// TopGenres serves the latest genre stats artifact when one exists and
// otherwise aggregates the catalog directly — the same grouping the batch job
// materializes, executed synchronously and not persisted.
func (s *analyticsService) TopGenres(ctx context.Context) ([]TopGenre, error) {
	latest, err := s.stats.LatestDate(ctx, nil)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		rows, err := s.stats.ListByDate(ctx, nil, *latest)
		if err != nil {
			return nil, err
		}
		out := make([]TopGenre, 0, len(rows))
		for _, row := range rows {
			if len(out) == topGenresLimit {
				break
			}
			out = append(out, TopGenre{
				ID:         row.GenreID,
				Name:       row.GenreName,
				MovieCount: row.Volume,
				AvgRating:  row.AvgRating,
			})
		}
		return out, nil
	}

	s.log.Debug("no genre stats artifact, falling back to catalog aggregation")
	movies, err := s.movies.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	aggregates := compute.AggregateGenres(movies)
	out := make([]TopGenre, 0, topGenresLimit)
	for _, agg := range aggregates {
		if len(out) == topGenresLimit {
			break
		}
		out = append(out, TopGenre{
			ID:         agg.GenreID,
			Name:       agg.GenreName,
			MovieCount: agg.Volume,
			AvgRating:  agg.AvgRating,
		})
	}
	return out, nil
}

func (s *analyticsService) GenreStatsForDate(ctx context.Context, date time.Time) ([]*types.GenreStatsDaily, error) {
	return s.stats.ListByDate(ctx, nil, date)
}

// RatingsByDecade serves the decade snapshot artifact, falling back to the
// batch job's aggregation over the live catalog when the table is empty.
func (s *analyticsService) RatingsByDecade(ctx context.Context) ([]DecadeStats, error) {
	rows, err := s.decades.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		out := make([]DecadeStats, 0, len(rows))
		for _, row := range rows {
			out = append(out, DecadeStats{
				Decade:     row.Decade,
				AvgRating:  row.AvgRating,
				MovieCount: row.MovieCount,
			})
		}
		return out, nil
	}

	s.log.Debug("no decade artifact, falling back to catalog aggregation")
	movies, err := s.movies.ListDatedAndRated(ctx, nil)
	if err != nil {
		return nil, err
	}
	buckets := compute.AggregateDecades(movies)
	out := make([]DecadeStats, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, DecadeStats{
			Decade:     b.Decade,
			AvgRating:  b.AvgRating,
			MovieCount: b.MovieCount,
		})
	}
	return out, nil
}

// Trending serves the latest trending artifact joined back to catalog titles;
// with no artifact yet it scores the catalog on the fly without persisting.
func (s *analyticsService) Trending(ctx context.Context, limit int) ([]TrendingMovie, error) {
	if limit <= 0 {
		limit = 20
	}
	latest, err := s.trend.LatestDate(ctx, nil)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		rows, err := s.trend.ListByDate(ctx, nil, *latest, limit)
		if err != nil {
			return nil, err
		}
		out := make([]TrendingMovie, 0, len(rows))
		for _, row := range rows {
			movie, err := s.movies.GetByID(ctx, nil, row.MovieID)
			if err != nil {
				return nil, err
			}
			if movie == nil {
				continue
			}
			out = append(out, TrendingMovie{
				ID:            movie.ID,
				Title:         movie.Title,
				Popularity:    movie.Popularity,
				VoteAverage:   movie.Rating,
				VoteCount:     movie.VoteCount,
				TrendingScore: row.Score,
				Rank:          row.Rank,
			})
		}
		return out, nil
	}

	s.log.Debug("no trending artifact, scoring catalog on the fly")
	movies, err := s.movies.ListScorable(ctx, nil)
	if err != nil {
		return nil, err
	}
	scored := make([]TrendingMovie, 0, len(movies))
	for _, movie := range movies {
		if movie.Popularity == nil || movie.Rating == nil {
			continue
		}
		scored = append(scored, TrendingMovie{
			ID:            movie.ID,
			Title:         movie.Title,
			Popularity:    movie.Popularity,
			VoteAverage:   movie.Rating,
			VoteCount:     movie.VoteCount,
			TrendingScore: scoring.TrendingScore(*movie.Popularity, *movie.Rating, movie.VoteCount),
		})
	}
	sortTrendingDesc(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored, nil
}

func sortTrendingDesc(entries []TrendingMovie) {
	// Stable sort keeps catalog iteration order among exact ties, matching
	// the batch job's ordering.
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].TrendingScore > entries[b].TrendingScore
	})
}
