package temporalx

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/moviemetric/backend/internal/jobs/compute"
	"github.com/moviemetric/backend/internal/jobs/ingest"
	"github.com/moviemetric/backend/internal/jobs/search"
	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/temporalx/jobrun"
)

type scheduleSpec struct {
	id   string
	cron string
	req  jobrun.JobRequest
}

// The nightly pipeline. Ingestion lands first, every analytics artifact is
// rebuilt from the fresh catalog, then the search index picks up the result.
var nightlySchedules = []scheduleSpec{
	{id: "nightly-ingest", cron: "0 2 * * *", req: jobrun.JobRequest{Type: ingest.TypeIngest}},
	{id: "nightly-trending", cron: "0 3 * * *", req: jobrun.JobRequest{Type: compute.TypeTrending}},
	{id: "nightly-genre-stats", cron: "30 3 * * *", req: jobrun.JobRequest{Type: compute.TypeGenreStats}},
	{id: "nightly-ratings-by-decade", cron: "0 4 * * *", req: jobrun.JobRequest{Type: compute.TypeRatingsByDecade}},
	{id: "nightly-recommendations", cron: "30 4 * * *", req: jobrun.JobRequest{Type: compute.TypeRecommendations}},
	{id: "nightly-search-index", cron: "0 5 * * *", req: jobrun.JobRequest{Type: search.TypeSearchIndex}},
}

// EnsureSchedules registers the nightly cron schedules, skipping any that
// already exist. All crons run in UTC.
func EnsureSchedules(ctx context.Context, tc temporalsdkclient.Client, log *logger.Logger) error {
	if tc == nil {
		return nil
	}
	cfg := LoadConfig()

	for _, s := range nightlySchedules {
		_, err := tc.ScheduleClient().Create(ctx, temporalsdkclient.ScheduleOptions{
			ID: s.id,
			Spec: temporalsdkclient.ScheduleSpec{
				CronExpressions: []string{s.cron},
			},
			Action: &temporalsdkclient.ScheduleWorkflowAction{
				ID:        s.id + "-run",
				Workflow:  jobrun.WorkflowName,
				TaskQueue: cfg.TaskQueue,
				Args:      []interface{}{s.req},
			},
		})
		if err != nil {
			var already *serviceerror.AlreadyExists
			if errors.As(err, &already) || errors.Is(err, temporal.ErrScheduleAlreadyRunning) {
				if log != nil {
					log.Debug("Schedule already registered", "schedule_id", s.id)
				}
				continue
			}
			return fmt.Errorf("create schedule %s: %w", s.id, err)
		}
		if log != nil {
			log.Info("Registered schedule", "schedule_id", s.id, "cron", s.cron, "job_type", s.req.Type)
		}
	}
	return nil
}
