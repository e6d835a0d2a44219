package types

import (
	"time"

	"gorm.io/datatypes"
)

// GenreRef is one entry of a movie's genre list. List endpoints deliver id-only
// entries; the details fetch fills in the name. Aggregations that key on genre
// name must only consume entries where both fields are present.
type GenreRef struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// Complete reports whether the entry carries both the id and the name.
func (g GenreRef) Complete() bool {
	return g.ID != 0 && g.Name != ""
}

type Movie struct {
	ID           int                              `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title        string                           `gorm:"column:title;not null;index" json:"title"`
	Overview     string                           `gorm:"column:overview;type:text" json:"overview,omitempty"`
	ReleaseDate  *time.Time                       `gorm:"column:release_date;type:date;index" json:"release_date,omitempty"`
	Genres       datatypes.JSONSlice[GenreRef]    `gorm:"column:genres" json:"genres,omitempty"`
	Rating       *float64                         `gorm:"column:rating;index" json:"rating,omitempty"`
	VoteCount    int64                            `gorm:"column:vote_count;not null;default:0" json:"vote_count"`
	Popularity   *float64                         `gorm:"column:popularity;index" json:"popularity,omitempty"`
	PosterPath   string                           `gorm:"column:poster_path" json:"poster_path,omitempty"`
	BackdropPath string                           `gorm:"column:backdrop_path" json:"backdrop_path,omitempty"`
	Runtime      *int                             `gorm:"column:runtime" json:"runtime,omitempty"`
	Budget       *int64                           `gorm:"column:budget" json:"budget,omitempty"`
	Revenue      *int64                           `gorm:"column:revenue" json:"revenue,omitempty"`
	Tagline      string                           `gorm:"column:tagline" json:"tagline,omitempty"`
	Status       string                           `gorm:"column:status" json:"status,omitempty"`
	IsTrending   bool                             `gorm:"column:is_trending;not null;default:false;index" json:"is_trending"`
	IsUnderrated bool                             `gorm:"column:is_underrated;not null;default:false;index" json:"is_underrated"`
	CreatedAt    time.Time                        `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time                        `gorm:"not null" json:"updated_at"`
}

func (Movie) TableName() string { return "movies" }

// CompleteGenres returns only the entries with both id and name.
func (m *Movie) CompleteGenres() []GenreRef {
	out := make([]GenreRef, 0, len(m.Genres))
	for _, g := range m.Genres {
		if g.Complete() {
			out = append(out, g)
		}
	}
	return out
}

// GenreIDs returns the set of genre ids on the movie, complete or not.
func (m *Movie) GenreIDs() map[int]struct{} {
	ids := make(map[int]struct{}, len(m.Genres))
	for _, g := range m.Genres {
		if g.ID != 0 {
			ids[g.ID] = struct{}{}
		}
	}
	return ids
}
