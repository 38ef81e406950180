package controller

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rendis/resume-forge/internal/adapters/primary/http/dto"
	"github.com/rendis/resume-forge/internal/core/service/document"
)

// AnalysisController serves the content-analysis endpoints.
type AnalysisController struct {
	orch   *document.Orchestrator
	logger *slog.Logger
}

func NewAnalysisController(orch *document.Orchestrator, logger *slog.Logger) *AnalysisController {
	return &AnalysisController{orch: orch, logger: logger}
}

func (ct *AnalysisController) Register(r gin.IRouter) {
	r.POST("/analyze", ct.analyze)
	r.POST("/analyze-pdf", ct.analyzeExtended)
}

func (ct *AnalysisController) analyze(c *gin.Context) {
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

	analysis, err := ct.orch.Analyze(req)
	if err != nil {
		handleError(c, ct.logger, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (ct *AnalysisController) analyzeExtended(c *gin.Context) {
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

	ext, err := ct.orch.AnalyzeExtended(req)
	if err != nil {
		handleError(c, ct.logger, err)
		return
	}
	c.JSON(http.StatusOK, ext)
}
