package types

import "time"

// MovieTrendingDaily holds one trending rank per movie per date. The trending
// job owns the table and fully replaces the rows for a date on every run.
type MovieTrendingDaily struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MovieID   int       `gorm:"column:movie_id;not null;uniqueIndex:uq_movie_trending_daily" json:"movie_id"`
	Date      time.Time `gorm:"column:date;type:date;not null;uniqueIndex:uq_movie_trending_daily;index" json:"date"`
	Score     float64   `gorm:"column:score;not null" json:"score"`
	Rank      int       `gorm:"column:rank;not null" json:"rank"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (MovieTrendingDaily) TableName() string { return "movie_trending_daily" }
