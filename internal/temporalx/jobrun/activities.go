package jobrun

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/moviemetric/backend/internal/jobs/compute"
	"github.com/moviemetric/backend/internal/observability"
	"github.com/moviemetric/backend/internal/platform/logger"
)

type Activities struct {
	Log      *logger.Logger
	Registry *Registry
	Metrics  *observability.Metrics
}

// RunJob dispatches one job request to its handler. A failed job returns an
// error so the workflow retry policy re-runs it; every job is idempotent, so
// at-least-once execution is safe.
func (a *Activities) RunJob(ctx context.Context, req JobRequest) (compute.Result, error) {
	if a == nil || a.Registry == nil {
		return compute.Result{}, fmt.Errorf("jobrun: activity not configured")
	}

	jobType := strings.TrimSpace(req.Type)
	h, ok := a.Registry.Get(jobType)
	if !ok {
		// Unknown types never heal; fail without retry noise.
		return compute.Result{Status: compute.StatusError, Message: "unknown job type"},
			fmt.Errorf("jobrun: no handler registered for job_type=%s", jobType)
	}

	stopHB := a.startHeartbeat(ctx)
	defer stopHB()

	start := time.Now()
	var res compute.Result
	func() {
		defer func() {
			if r := recover(); r != nil {
				if a.Log != nil {
					a.Log.Error("Job handler panic", "job_type", jobType, "panic", r)
				}
				res = compute.Result{Status: compute.StatusError, Message: "panic: unexpected error"}
			}
		}()
		res = h(ctx, req)
	}()

	a.Metrics.ObserveJob(jobType, res.Status, time.Since(start))

	if res.Status != compute.StatusSuccess {
		return res, fmt.Errorf("jobrun: %s failed: %s", jobType, res.Message)
	}
	if a.Log != nil {
		a.Log.Info("Job finished", "job_type", jobType, "duration", time.Since(start).String())
	}
	return res, nil
}

func (a *Activities) startHeartbeat(ctx context.Context) func() {
	hbCtx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-hbCtx.Done():
				return
			case <-ticker.C:
				activity.RecordHeartbeat(ctx)
			}
		}
	}()
	return cancel
}
