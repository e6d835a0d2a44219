package compute

import (
	"sort"

	"github.com/moviemetric/backend/internal/types"
)

// GenreAggregate is the per-genre accumulation shared by the genre stats job
// and the read-path fallback, so both produce identical numbers for the same
// catalog.
type GenreAggregate struct {
	GenreID   int
	GenreName string
	AvgRating *float64
	Volume    int
}

type genreAccum struct {
	name    string
	ratings []float64
	count   int
}

// AggregateGenres scans the catalog and accumulates per-genre volume and
// ratings. A genre entry counts only when id and name co-occur on that entry;
// id-only partial records from list ingestion are never aggregated. The name
// stored is whichever movie record supplied it last. Output is sorted by
// volume descending, genre id ascending.
func AggregateGenres(movies []*types.Movie) []GenreAggregate {
	accum := map[int]*genreAccum{}
	for _, movie := range movies {
		for _, genre := range movie.Genres {
			if !genre.Complete() {
				continue
			}
			a, ok := accum[genre.ID]
			if !ok {
				a = &genreAccum{}
				accum[genre.ID] = a
			}
			a.name = genre.Name
			a.count++
			if movie.Rating != nil {
				a.ratings = append(a.ratings, *movie.Rating)
			}
		}
	}

	out := make([]GenreAggregate, 0, len(accum))
	for id, a := range accum {
		agg := GenreAggregate{
			GenreID:   id,
			GenreName: a.name,
			Volume:    a.count,
		}
		if len(a.ratings) > 0 {
			sum := 0.0
			for _, r := range a.ratings {
				sum += r
			}
			avg := sum / float64(len(a.ratings))
			agg.AvgRating = &avg
		}
		out = append(out, agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Volume != out[j].Volume {
			return out[i].Volume > out[j].Volume
		}
		return out[i].GenreID < out[j].GenreID
	})
	return out
}

// DecadeBucket is the per-decade accumulation shared by the decade job and
// the read-path fallback.
type DecadeBucket struct {
	Decade     int
	AvgRating  *float64
	MovieCount int
}

// AggregateDecades buckets rated, dated movies by floor(year/10)*10 and
// averages their ratings. Movies missing either field are skipped. Output is
// sorted by decade ascending.
func AggregateDecades(movies []*types.Movie) []DecadeBucket {
	type decadeAccum struct {
		sum   float64
		count int
	}
	accum := map[int]*decadeAccum{}
	for _, movie := range movies {
		if movie.ReleaseDate == nil || movie.Rating == nil {
			continue
		}
		decade := movie.ReleaseDate.Year() / 10 * 10
		a, ok := accum[decade]
		if !ok {
			a = &decadeAccum{}
			accum[decade] = a
		}
		a.sum += *movie.Rating
		a.count++
	}

	out := make([]DecadeBucket, 0, len(accum))
	for decade, a := range accum {
		avg := a.sum / float64(a.count)
		out = append(out, DecadeBucket{
			Decade:     decade,
			AvgRating:  &avg,
			MovieCount: a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Decade < out[j].Decade })
	return out
}
