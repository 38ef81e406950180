// Package controller implements the HTTP handlers of the service.
package controller

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rendis/resume-forge/internal/adapters/primary/http/dto"
	"github.com/rendis/resume-forge/internal/core/entity"
)

// handleError maps any error onto its HTTP status and wire body. Server-side
// failures are logged with their cause; the client sees only the typed error.
func handleError(c *gin.Context, logger *slog.Logger, err error) {
	svcErr := entity.AsServiceError(err)
	if svcErr.HTTPStatus >= http.StatusInternalServerError {
		logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("code", svcErr.Code),
			slog.Any("error", err))
	}
	c.JSON(svcErr.HTTPStatus, dto.NewErrorBody(svcErr))
}

// bindJSON decodes the body, converting gin's binding errors into the typed
// taxonomy.
func bindJSON(c *gin.Context, out any) error {
	if err := c.ShouldBindJSON(out); err != nil {
		return entity.NewError(entity.CodeInvalidJSON,
			"request body is not valid for this endpoint").WithCause(err)
	}
	return nil
}

// writeArtifact streams a render artifact with its cache marker, warnings
// count and attachment filename.
func writeArtifact(c *gin.Context, artifact *entity.RenderArtifact, warnings []*entity.ServiceError) {
	if artifact.Cached {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	if len(warnings) > 0 {
		c.Header("X-Validation-Warnings", strconv.Itoa(len(warnings)))
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))

	if artifact.Format == entity.FormatTypst {
		c.Data(http.StatusOK, artifact.ContentType(), []byte(artifact.Source))
		return
	}
	c.Data(http.StatusOK, artifact.ContentType(), artifact.Bytes)
}
