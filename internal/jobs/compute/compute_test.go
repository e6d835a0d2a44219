package compute

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/types"
)

func newTestDB(t *testing.T) (*gorm.DB, *logger.Logger) {
	t.Helper()
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
	// Single connection keeps the :memory: database alive across sessions.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&types.Movie{},
		&types.MovieTrendingDaily{},
		&types.GenreStatsDaily{},
		&types.RatingsByDecade{},
		&types.MovieRecommendations{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return db, log
}

func f64(v float64) *float64 { return &v }

func dateOf(t *testing.T, raw string) *time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		t.Fatalf("parse date %q: %v", raw, err)
	}
	return &d
}

func seedMovie(t *testing.T, db *gorm.DB, movie *types.Movie) {
	t.Helper()
	if err := db.Create(movie).Error; err != nil {
		t.Fatalf("seed movie %d: %v", movie.ID, err)
	}
}

func TestTargetDateDefaultsToToday(t *testing.T) {
	got, err := TargetDate("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(Today()) {
		t.Fatalf("expected today, got %v", got)
	}
	if got.Hour() != 0 || got.Minute() != 0 {
		t.Fatalf("expected midnight UTC, got %v", got)
	}
}

func TestTargetDateParses(t *testing.T) {
	got, err := TargetDate("2024-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 15 {
		t.Fatalf("unexpected date: %v", got)
	}
}

func TestTargetDateRejectsGarbage(t *testing.T) {
	if _, err := TargetDate("15/03/2024"); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}
