package controller

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rendis/resume-forge/internal/adapters/primary/http/dto"
	"github.com/rendis/resume-forge/internal/core/service/document"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// SystemController serves the banner, liveness and metrics endpoints.
type SystemController struct {
	orch   *document.Orchestrator
	logger *slog.Logger
}

func NewSystemController(orch *document.Orchestrator, logger *slog.Logger) *SystemController {
	return &SystemController{orch: orch, logger: logger}
}

func (ct *SystemController) Register(r gin.IRouter) {
	r.GET("/", ct.banner)
	r.GET("/health", ct.health)
	r.GET("/metrics", ct.metrics)
}

func (ct *SystemController) banner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "resume-forge",
		"version": Version,
		"endpoints": []string{
			"/health", "/metrics", "/templates", "/templates/{doc_type}",
			"/template-info/{doc_type}/{name}", "/schema/{doc_type}",
			"/validate", "/generate", "/generate-yaml", "/generate/async",
			"/jobs/{id}", "/jobs/{id}/download", "/jobs/{id}/cancel",
			"/analyze", "/analyze-pdf",
		},
	})
}

func (ct *SystemController) health(c *gin.Context) {
	cache := ct.orch.CacheMetrics(c.Request.Context())
	resp := dto.HealthResponse{
		Status:        "ok",
		CompilerReady: ct.orch.CompilerReady(),
		CacheBackend:  cache.Connected,
	}
	if !resp.CompilerReady {
		resp.Status = "degraded"
	}
	c.JSON(http.StatusOK, resp)
}

func (ct *SystemController) metrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"cache": ct.orch.CacheMetrics(c.Request.Context()),
	})
}
