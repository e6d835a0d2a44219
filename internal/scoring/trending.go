package scoring

import "math"

// Trending score weights. The score is absolute, not normalized against the
// rest of the catalog: identical inputs always produce bit-identical scores.
const (
	popularityWeight = 0.4
	ratingWeight     = 0.3
	voteWeight       = 0.3
)

// TrendingScore combines popularity, average rating and vote volume into one
// absolute score. The vote term uses ln(voteCount+1) so a movie with zero
// votes contributes zero instead of blowing up.
func TrendingScore(popularity, rating float64, voteCount int64) float64 {
	return popularity*popularityWeight +
		rating*20*ratingWeight +
		math.Log(float64(voteCount)+1)*10*voteWeight
}
