package types

import "time"

// RatingsByDecade is a single global snapshot, not a time series: every run of
// the decade job truncates the table and rebuilds it from the whole catalog.
type RatingsByDecade struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Decade     int       `gorm:"column:decade;not null;uniqueIndex" json:"decade"`
	AvgRating  *float64  `gorm:"column:avg_rating" json:"avg_rating,omitempty"`
	MovieCount int       `gorm:"column:movie_count;not null;default:0" json:"movie_count"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (RatingsByDecade) TableName() string { return "ratings_by_decade" }
