package controller

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rendis/resume-forge/internal/adapters/primary/http/dto"
	"github.com/rendis/resume-forge/internal/core/entity"
	"github.com/rendis/resume-forge/internal/core/service/job"
)

// JobController serves the async compilation endpoints.
type JobController struct {
	queue  *job.Queue
	store  *job.Store
	logger *slog.Logger
}

func NewJobController(queue *job.Queue, store *job.Store, logger *slog.Logger) *JobController {
	return &JobController{queue: queue, store: store, logger: logger}
}

func (ct *JobController) Register(r gin.IRouter) {
	r.POST("/generate/async", ct.submit)
	r.GET("/jobs/:id", ct.status)
	r.GET("/jobs/:id/download", ct.download)
	r.POST("/jobs/:id/cancel", ct.cancel)
}

func (ct *JobController) submit(c *gin.Context) {
	var body dto.GenerateRequest
	if err := bindJSON(c, &body); err != nil {
		handleError(c, ct.logger, err)
		return
	}
	req, err := body.ToEntity()
	if err != nil {
		handleError(c, ct.logger, err)
		return
	}

	created, err := ct.queue.Submit(c.Request.Context(), &req)
	if err != nil {
		handleError(c, ct.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.NewJobResponse(created))
}

func (ct *JobController) status(c *gin.Context) {
	found, err := ct.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, ct.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewJobResponse(found))
}

func (ct *JobController) download(c *gin.Context) {
	found, err := ct.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, ct.logger, err)
		return
	}

	switch found.State {
	case entity.JobPending, entity.JobRunning:
		c.JSON(http.StatusTooEarly, dto.NewJobResponse(found))
		return
	case entity.JobFailed:
		jobErr := found.Error
		if jobErr == nil {
			jobErr = entity.NewError(entity.CodeInternal, "job failed")
		}
		c.JSON(jobErr.HTTPStatus, dto.NewErrorBody(jobErr))
		return
	case entity.JobCancelled:
		c.JSON(http.StatusGone, dto.NewJobResponse(found))
		return
	}

	artifact, err := ct.store.GetResult(c.Request.Context(), found)
	if err != nil {
		handleError(c, ct.logger, err)
		return
	}
	writeArtifact(c, artifact, nil)
}

func (ct *JobController) cancel(c *gin.Context) {
	cancelled, err := ct.queue.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, ct.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewJobResponse(cancelled))
}
