package scoring

// RecommendationThreshold is the minimum combined similarity (strictly
// greater than) for a pair to qualify as a recommendation candidate.
const RecommendationThreshold = 0.3

// Similarity scores how alike two movies are, in [0,1]. Half the weight is the
// Jaccard overlap of their genre id sets, half is rating proximity. The
// function is symmetric in its two movies. An empty genre union contributes
// zero rather than dividing by zero.
func Similarity(aGenres, bGenres map[int]struct{}, aRating, bRating float64) float64 {
	genreScore := jaccard(aGenres, bGenres)

	diff := aRating - bRating
	if diff < 0 {
		diff = -diff
	}
	ratingScore := 1 - diff/10
	if ratingScore < 0 {
		ratingScore = 0
	}

	return genreScore*0.5 + ratingScore*0.5
}

func jaccard(a, b map[int]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	overlap := 0
	for id := range a {
		if _, ok := b[id]; ok {
			overlap++
		}
	}
	union := len(a) + len(b) - overlap
	if union == 0 {
		return 0
	}
	return float64(overlap) / float64(union)
}
