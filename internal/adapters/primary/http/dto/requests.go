// Package dto defines the wire shapes of the HTTP surface.
package dto

import (
	"gopkg.in/yaml.v3"

	"github.com/rendis/resume-forge/internal/core/entity"
)

// GenerateRequest is the JSON body of /generate, /generate/async, /validate
// and /analyze.
type GenerateRequest struct {
	DocumentType    string         `json:"document_type" binding:"required"`
	Template        string         `json:"template" binding:"required"`
	Format          string         `json:"format"`
	Data            map[string]any `json:"data" binding:"required"`
	UltraValidation bool           `json:"ultra_validation"`
	SpacingMode     string         `json:"spacing_mode"`
}

// ToEntity validates the enums and builds the core request.
func (r *GenerateRequest) ToEntity() (entity.DocumentRequest, error) {
	docType, err := entity.ParseDocumentType(r.DocumentType)
	if err != nil {
		return entity.DocumentRequest{}, err
	}
	format, err := entity.ParseOutputFormat(r.Format)
	if err != nil {
		return entity.DocumentRequest{}, err
	}
	spacing, err := entity.ParseSpacingMode(r.SpacingMode)
	if err != nil {
		return entity.DocumentRequest{}, err
	}
	return entity.DocumentRequest{
		DocumentType:    docType,
		Template:        r.Template,
		Format:          format,
		Data:            r.Data,
		UltraValidation: r.UltraValidation,
		SpacingMode:     spacing,
	}, nil
}

// GenerateYAMLRequest is the /generate-yaml body: identical to
// GenerateRequest except data arrives as YAML text.
type GenerateYAMLRequest struct {
	DocumentType    string `json:"document_type" binding:"required"`
	Template        string `json:"template" binding:"required"`
	Format          string `json:"format"`
	Data            string `json:"data" binding:"required"`
	UltraValidation bool   `json:"ultra_validation"`
	SpacingMode     string `json:"spacing_mode"`
}

// ToEntity decodes the YAML payload (yaml.v3 never executes code) and
// delegates to the JSON request conversion.
func (r *GenerateYAMLRequest) ToEntity() (entity.DocumentRequest, error) {
	var data map[string]any
	if err := yaml.Unmarshal([]byte(r.Data), &data); err != nil {
		return entity.DocumentRequest{}, entity.NewError(entity.CodeInvalidYAML,
			"data field is not valid YAML").WithCause(err)
	}
	jsonReq := GenerateRequest{
		DocumentType:    r.DocumentType,
		Template:        r.Template,
		Format:          r.Format,
		Data:            data,
		UltraValidation: r.UltraValidation,
		SpacingMode:     r.SpacingMode,
	}
	return jsonReq.ToEntity()
}
