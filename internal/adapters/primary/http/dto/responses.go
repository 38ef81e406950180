package dto

import (
	"time"

	"github.com/rendis/resume-forge/internal/core/entity"
)

// ErrorPayload is the body of every error response.
type ErrorPayload struct {
	Code         string               `json:"code"`
	Category     entity.ErrorCategory `json:"category"`
	Severity     entity.ErrorSeverity `json:"severity"`
	Title        string               `json:"title"`
	Message      string               `json:"message"`
	SuggestedFix string               `json:"suggestedFix,omitempty"`
	Timestamp    time.Time            `json:"timestamp"`
	Context      map[string]any       `json:"context,omitempty"`
}

// ErrorBody wraps the payload under the error key.
type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

// NewErrorBody stamps the error with the current time.
func NewErrorBody(err *entity.ServiceError) ErrorBody {
	return ErrorBody{Error: ErrorPayload{
		Code:         err.Code,
		Category:     err.Category,
		Severity:     err.Severity,
		Title:        err.Title,
		Message:      err.Message,
		SuggestedFix: err.SuggestedFix,
		Timestamp:    time.Now().UTC(),
		Context:      err.Context,
	}}
}

// Warning is the advisory issue shape in validation responses.
type Warning struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// Warnings converts service warnings to their wire shape.
func Warnings(issues []*entity.ServiceError) []Warning {
	out := make([]Warning, 0, len(issues))
	for _, issue := range issues {
		out = append(out, Warning{
			Code:    issue.Code,
			Message: issue.Message,
			Context: issue.Context,
		})
	}
	return out
}

// ValidateResponse is the /validate payload.
type ValidateResponse struct {
	Valid    bool           `json:"valid"`
	Warnings []Warning      `json:"warnings"`
	Data     map[string]any `json:"data"`
}

// JobResponse is the job status payload.
type JobResponse struct {
	JobID      string        `json:"job_id"`
	State      string        `json:"state"`
	CreatedAt  time.Time     `json:"created_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Error      *ErrorPayload `json:"error,omitempty"`
}

// NewJobResponse projects a job snapshot onto the wire.
func NewJobResponse(j *entity.Job) JobResponse {
	resp := JobResponse{
		JobID:      j.ID,
		State:      string(j.State),
		CreatedAt:  j.CreatedAt,
		FinishedAt: j.FinishedAt,
	}
	if j.Error != nil {
		body := NewErrorBody(j.Error)
		resp.Error = &body.Error
	}
	return resp
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status        string `json:"status"`
	CompilerReady bool   `json:"compiler_ready"`
	CacheBackend  bool   `json:"cache_backend"`
}
