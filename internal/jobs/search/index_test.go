package search

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/moviemetric/backend/internal/clients/meili"
	"github.com/moviemetric/backend/internal/jobs/compute"
	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/repos"
	"github.com/moviemetric/backend/internal/types"
)

type fakeSearch struct {
	ensured   bool
	batches   [][]Document
	documents int
}

func (f *fakeSearch) EnsureIndex(context.Context) error { f.ensured = true; return nil }

func (f *fakeSearch) AddDocuments(_ context.Context, docs any, count int) error {
	f.batches = append(f.batches, docs.([]Document))
	f.documents += count
	return nil
}

func (f *fakeSearch) Search(context.Context, string, int64) (*meili.SearchResult, error) {
	return &meili.SearchResult{}, nil
}

func (f *fakeSearch) DeleteAll(context.Context) error { return nil }
func (f *fakeSearch) Ping(context.Context) error      { return nil }

func f64(v float64) *float64 { return &v }

func TestDocumentFromMovie(t *testing.T) {
	released := time.Date(1999, 3, 30, 0, 0, 0, 0, time.UTC)
	m := &types.Movie{
		ID:          603,
		Title:       "The Matrix",
		Overview:    "A hacker learns the truth.",
		ReleaseDate: &released,
		Genres: datatypes.NewJSONSlice([]types.GenreRef{
			{ID: 28, Name: "Action"},
			{ID: 878, Name: "Science Fiction"},
			{ID: 12},
		}),
		Rating:     f64(8.2),
		Popularity: f64(85.3),
		PosterPath: "/poster.jpg",
	}

	doc := DocumentFromMovie(m)
	if doc.ID != 603 || doc.Title != "The Matrix" {
		t.Fatalf("identity fields wrong: %+v", doc)
	}
	if doc.ReleaseYear != 1999 {
		t.Fatalf("release year wrong: %d", doc.ReleaseYear)
	}
	if len(doc.Genres) != 2 || doc.Genres[0] != "Action" {
		t.Fatalf("nameless genres should be dropped: %+v", doc.Genres)
	}
	if doc.Rating == nil || *doc.Rating != 8.2 {
		t.Fatalf("rating wrong: %+v", doc.Rating)
	}
}

func TestDocumentFromMovieMissingOptionalFields(t *testing.T) {
	doc := DocumentFromMovie(&types.Movie{ID: 1, Title: "Bare"})
	if doc.ReleaseYear != 0 {
		t.Fatalf("missing date should leave year zero: %d", doc.ReleaseYear)
	}
	if len(doc.Genres) != 0 {
		t.Fatalf("expected no genres: %+v", doc.Genres)
	}
	if doc.Rating != nil {
		t.Fatalf("expected nil rating: %+v", doc.Rating)
	}
}

func TestRunIndexesWholeCatalogInBatches(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&types.Movie{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	for i := 1; i <= 3; i++ {
		if err := db.Create(&types.Movie{ID: i, Title: "Movie"}).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	fake := &fakeSearch{}
	job := NewIndexJob(log, repos.NewMovieRepo(db, log), fake, nil)

	res := job.Run(context.Background())
	if res.Status != compute.StatusSuccess {
		t.Fatalf("run failed: %+v", res)
	}
	if !fake.ensured {
		t.Fatal("index settings not ensured before indexing")
	}
	if fake.documents != 3 || res.MoviesProcessed != 3 {
		t.Fatalf("expected 3 indexed documents, got fake=%d result=%d", fake.documents, res.MoviesProcessed)
	}
	if len(fake.batches) != 1 {
		t.Fatalf("3 docs should fit one batch, got %d", len(fake.batches))
	}
}
