package types

import "time"

// GenreStatsDaily holds one aggregate row per genre per date. AvgRating is nil
// when no rated movie carried the genre that day; Volume still counts those.
type GenreStatsDaily struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GenreID   int       `gorm:"column:genre_id;not null;uniqueIndex:uq_genre_stats_daily" json:"genre_id"`
	GenreName string    `gorm:"column:genre_name;not null" json:"genre_name"`
	Date      time.Time `gorm:"column:date;type:date;not null;uniqueIndex:uq_genre_stats_daily;index" json:"date"`
	AvgRating *float64  `gorm:"column:avg_rating" json:"avg_rating,omitempty"`
	Volume    int       `gorm:"column:volume;not null;default:0" json:"volume"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (GenreStatsDaily) TableName() string { return "genre_stats_daily" }
