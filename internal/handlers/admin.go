package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/moviemetric/backend/internal/clients/rediscache"
	"github.com/moviemetric/backend/internal/jobs/compute"
	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/temporalx/jobrun"
)

type triggerJobBody struct {
	Date       string   `json:"date,omitempty"`
	MovieID    *int     `json:"movie_id,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Pages      int      `json:"pages,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// AdminHandler triggers batch jobs on demand. Runs go through Temporal
// when a client is configured and inline through the registry otherwise.
type AdminHandler struct {
	log       *logger.Logger
	registry  *jobrun.Registry
	tc        temporalsdkclient.Client
	taskQueue string
	cache     rediscache.Cache
}

func NewAdminHandler(
	log *logger.Logger,
	registry *jobrun.Registry,
	tc temporalsdkclient.Client,
	taskQueue string,
	cache rediscache.Cache,
) *AdminHandler {
	return &AdminHandler{
		log:       log.With("handler", "AdminHandler"),
		registry:  registry,
		tc:        tc,
		taskQueue: taskQueue,
		cache:     cache,
	}
}

// POST /api/admin/jobs/:type
func (h *AdminHandler) TriggerJob(c *gin.Context) {
	jobType := c.Param("type")
	if _, ok := h.registry.Get(jobType); !ok {
		RespondError(c, http.StatusNotFound, "unknown_job_type",
			fmt.Errorf("unknown job type %q, known types: %v", jobType, h.registry.Types()))
		return
	}

	var body triggerJobBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
	}
	req := jobrun.JobRequest{
		Type:       jobType,
		Date:       body.Date,
		MovieID:    body.MovieID,
		Categories: body.Categories,
		Pages:      body.Pages,
		Limit:      body.Limit,
	}

	if h.tc != nil {
		h.startWorkflow(c, req)
		return
	}
	h.runInline(c, req)
}

// GET /api/admin/jobs
func (h *AdminHandler) ListJobTypes(c *gin.Context) {
	RespondOK(c, gin.H{"job_types": h.registry.Types()})
}

func (h *AdminHandler) startWorkflow(c *gin.Context, req jobrun.JobRequest) {
	workflowID := fmt.Sprintf("admin-%s-%s", req.Type, uuid.NewString())
	run, err := h.tc.ExecuteWorkflow(c.Request.Context(), temporalsdkclient.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: h.taskQueue,
	}, jobrun.WorkflowName, req)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "workflow_start_failed", err)
		return
	}

	h.log.Info("job workflow started", "job_type", req.Type, "workflow_id", workflowID, "run_id", run.GetRunID())
	c.JSON(http.StatusAccepted, gin.H{
		"job_type":    req.Type,
		"workflow_id": workflowID,
		"run_id":      run.GetRunID(),
	})
}

func (h *AdminHandler) runInline(c *gin.Context, req jobrun.JobRequest) {
	handler, _ := h.registry.Get(req.Type)
	res := handler(c.Request.Context(), req)
	if res.Status != compute.StatusSuccess {
		h.log.Error("inline job failed", "job_type", req.Type, "message", res.Message)
		c.JSON(http.StatusInternalServerError, gin.H{"result": res})
		return
	}

	h.invalidateReads(c)
	h.log.Info("inline job finished", "job_type", req.Type)
	RespondOK(c, gin.H{"result": res})
}

// Fresh artifacts make cached reads stale, so drop them after a successful run.
func (h *AdminHandler) invalidateReads(c *gin.Context) {
	if h.cache == nil {
		return
	}
	for _, prefix := range []string{
		rediscache.Key("analytics"),
		rediscache.Key("movies"),
		rediscache.Key("search"),
	} {
		if err := h.cache.InvalidatePrefix(c.Request.Context(), prefix); err != nil {
			h.log.Warn("cache invalidation failed", "prefix", prefix, "error", err)
		}
	}
}
