package controller

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rendis/resume-forge/internal/core/entity"
	"github.com/rendis/resume-forge/internal/core/template"
)

// TemplateController serves template discovery and schema endpoints.
type TemplateController struct {
	logger *slog.Logger
}

func NewTemplateController(logger *slog.Logger) *TemplateController {
	return &TemplateController{logger: logger}
}

func (ct *TemplateController) Register(r gin.IRouter) {
	r.GET("/templates", ct.listAll)
	r.GET("/templates/:docType", ct.listByType)
	r.GET("/template-info/:docType/:name", ct.info)
	r.GET("/schema/:docType", ct.schema)
}

func (ct *TemplateController) listAll(c *gin.Context) {
	infos := template.List("")
	c.JSON(http.StatusOK, gin.H{"templates": infos, "count": len(infos)})
}

func (ct *TemplateController) listByType(c *gin.Context) {
	docType, err := entity.ParseDocumentType(c.Param("docType"))
	if err != nil {
		handleError(c, ct.logger, err)
		return
	}
	infos := template.List(docType)
	c.JSON(http.StatusOK, gin.H{"templates": infos, "count": len(infos)})
}

func (ct *TemplateController) info(c *gin.Context) {
	docType, err := entity.ParseDocumentType(c.Param("docType"))
	if err != nil {
		handleError(c, ct.logger, err)
		return
	}
	info, err := template.Get(docType, c.Param("name"))
	if err != nil {
		handleError(c, ct.logger, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (ct *TemplateController) schema(c *gin.Context) {
	docType, err := entity.ParseDocumentType(c.Param("docType"))
	if err != nil {
		handleError(c, ct.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"document_type":   docType,
		"required_fields": requiredFieldsFor(docType),
		"example":         template.ExampleDocument(docType),
	})
}

func requiredFieldsFor(docType entity.DocumentType) []string {
	if docType == entity.DocumentTypeCoverLetter {
		return []string{"personalInfo.name", "personalInfo.email", "body"}
	}
	return []string{"personalInfo.name", "personalInfo.email"}
}
