package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rendis/resume-forge/internal/adapters/primary/http/dto"
	"github.com/rendis/resume-forge/internal/core/entity"
	"github.com/rendis/resume-forge/internal/core/service/document"
)

// RenderController serves the synchronous render endpoints.
type RenderController struct {
	orch    *document.Orchestrator
	timeout time.Duration
	logger  *slog.Logger
}

func NewRenderController(orch *document.Orchestrator, timeout time.Duration, logger *slog.Logger) *RenderController {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &RenderController{orch: orch, timeout: timeout, logger: logger}
}

func (ct *RenderController) Register(r gin.IRouter) {
	r.POST("/generate", ct.generate)
	r.POST("/generate-yaml", ct.generateYAML)
	r.POST("/validate", ct.validate)
}

func (ct *RenderController) generate(c *gin.Context) {
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
	ct.run(c, req)
}

func (ct *RenderController) generateYAML(c *gin.Context) {
	var body dto.GenerateYAMLRequest
	if err := bindJSON(c, &body); err != nil {
		handleError(c, ct.logger, err)
		return
	}
	req, err := body.ToEntity()
	if err != nil {
		handleError(c, ct.logger, err)
		return
	}
	ct.run(c, req)
}

func (ct *RenderController) run(c *gin.Context, req entity.DocumentRequest) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ct.timeout)
	defer cancel()

	res, err := ct.orch.Generate(ctx, req)
	if err != nil {
		handleError(c, ct.logger, err)
		return
	}
	writeArtifact(c, res.Artifact, res.Warnings)
}

func (ct *RenderController) validate(c *gin.Context) {
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

	data, warnings, err := ct.orch.Validate(req)
	if err != nil {
		handleError(c, ct.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ValidateResponse{
		Valid:    true,
		Warnings: dto.Warnings(warnings),
		Data:     data,
	})
}
