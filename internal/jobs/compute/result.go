package compute

import (
	"fmt"
	"time"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the record every job invocation returns to its trigger, whether
// that trigger is the scheduler, an admin endpoint, or a direct call.
type Result struct {
	Status                   string `json:"status"`
	Message                  string `json:"message,omitempty"`
	Date                     string `json:"date,omitempty"`
	MoviesProcessed          int    `json:"movies_processed,omitempty"`
	GenresProcessed          int    `json:"genres_processed,omitempty"`
	DecadesProcessed         int    `json:"decades_processed,omitempty"`
	RecommendationsGenerated int    `json:"recommendations_generated,omitempty"`
	GeneratedAt              string `json:"generated_at,omitempty"`
}

func errorResult(err error) Result {
	return Result{Status: StatusError, Message: err.Error()}
}

// TargetDate resolves an optional YYYY-MM-DD string to a UTC-midnight date,
// defaulting to today. Artifact partitions compare dates by equality, so every
// writer and reader has to normalize through this.
func TargetDate(raw string) (time.Time, error) {
	if raw == "" {
		return Today(), nil
	}
	d, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid target date %q: %w", raw, err)
	}
	return d, nil
}

func Today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}
