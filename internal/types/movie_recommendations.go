package types

import (
	"time"

	"gorm.io/datatypes"
)

// RecommendedMovie is one entry of a movie's precomputed recommendation list.
type RecommendedMovie struct {
	MovieID int      `json:"movie_id"`
	Title   string   `json:"title"`
	Score   float64  `json:"score"`
	Rating  *float64 `json:"rating,omitempty"`
}

// MovieRecommendations holds the top-scored neighbors for one movie. A movie
// with no qualifying neighbor has no row at all; absence means "not computed"
// or "nothing confident enough", never a stored empty list.
type MovieRecommendations struct {
	ID              uint                                  `gorm:"primaryKey" json:"id"`
	MovieID         int                                   `gorm:"column:movie_id;not null;index" json:"movie_id"`
	Recommendations datatypes.JSONSlice[RecommendedMovie] `gorm:"column:recommendations;not null" json:"recommendations"`
	GeneratedAt     time.Time                             `gorm:"column:generated_at;not null;index" json:"generated_at"`
	CreatedAt       time.Time                             `gorm:"not null" json:"created_at"`
}

func (MovieRecommendations) TableName() string { return "movie_recommendations" }
