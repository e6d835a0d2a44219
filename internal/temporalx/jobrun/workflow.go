package jobrun

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/moviemetric/backend/internal/jobs/compute"
)

// Workflow runs a single job request through the RunJob activity. The retry
// policy gives transient failures three attempts; jobs replace their artifact
// partitions atomically, so reruns cannot corrupt state.
func Workflow(ctx workflow.Context, req JobRequest) (compute.Result, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		HeartbeatTimeout:    time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    2 * time.Minute,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var res compute.Result
	err := workflow.ExecuteActivity(ctx, ActivityRunJob, req).Get(ctx, &res)
	return res, err
}
