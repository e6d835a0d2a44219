package jobrun

// JobRequest is the single argument every scheduled or admin-triggered job
// workflow receives. Fields beyond Type are optional and job-specific.
type JobRequest struct {
	// Type selects the registered job handler.
	Type string `json:"type"`

	// Date partitions compute_trending and compute_genre_stats (YYYY-MM-DD,
	// empty means today UTC).
	Date string `json:"date,omitempty"`

	// MovieID scopes compute_recommendations to a single movie.
	MovieID *int `json:"movie_id,omitempty"`

	// Ingestion controls.
	Categories []string `json:"categories,omitempty"`
	Pages      int      `json:"pages,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

const (
	WorkflowName   = "run-job"
	ActivityRunJob = "run-job-activity"
)
