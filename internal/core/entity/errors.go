package entity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCategory groups error codes for HTTP mapping and the response body.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryTemplate   ErrorCategory = "template"
	CategoryAPI        ErrorCategory = "api"
	CategorySystem     ErrorCategory = "system"
	CategorySecurity   ErrorCategory = "security"
)

// ErrorSeverity distinguishes blocking errors from advisory warnings.
type ErrorSeverity string

const (
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
)

// Stable error codes. Codes are part of the public API contract and must not
// be renumbered.
const (
	CodeMissingRequiredField = "VAL001"
	CodeInvalidFieldType     = "VAL002"
	CodeInvalidEmail         = "VAL003"
	CodeInvalidPhone         = "VAL004"
	CodeInvalidURL           = "VAL005"
	CodeInvalidDate          = "VAL006"
	CodeSchemaValidation     = "VAL010"
	CodeNormalizationFailed  = "VAL011"
	CodeMarkupInjection      = "VAL012"
	CodeInvalidJSON          = "VAL013"
	CodeInvalidYAML          = "VAL014"

	CodeTemplateNotFound  = "TPL001"
	CodeCompilationFailed = "TPL002"
	CodeRenderingFailed   = "TPL003"
	CodeDependencyMissing = "TPL006"
	CodePDFGeneration     = "TPL008"
	CodeUnsupportedFormat = "TPL011"

	CodeMalformedRequest   = "API001"
	CodeInvalidParameter   = "API003"
	CodeRequestTimeout     = "API004"
	CodeRateLimitExceeded  = "API005"
	CodeRequestTooLarge    = "API007"
	CodeResourceNotFound   = "API011"
	CodeServiceUnavailable = "API013"

	CodeInternal          = "SYS001"
	CodeDependencyLookup  = "SYS006"
	CodeResourceExhausted = "SYS009"

	CodeMaliciousInput = "SEC001"
	CodePathTraversal  = "SEC002"
	CodeOversizedInput = "SEC006"
)

type errorDef struct {
	category ErrorCategory
	title    string
	fix      string
	status   int
}

var errorDefs = map[string]errorDef{
	CodeMissingRequiredField: {CategoryValidation, "Required Field Missing", "Add the required field to your data", http.StatusBadRequest},
	CodeInvalidFieldType:     {CategoryValidation, "Invalid Field Type", "Change the field to the correct data type", http.StatusBadRequest},
	CodeInvalidEmail:         {CategoryValidation, "Invalid Email Format", "Provide a valid email address", http.StatusBadRequest},
	CodeInvalidPhone:         {CategoryValidation, "Invalid Phone Format", "Provide a phone number using digits, spaces and '+' only", http.StatusBadRequest},
	CodeInvalidURL:           {CategoryValidation, "Invalid URL Format", "Provide an absolute http(s) URL", http.StatusBadRequest},
	CodeInvalidDate:          {CategoryValidation, "Invalid Date Format", "Use YYYY-MM, YYYY-MM-DD, MM-YYYY, MM-DD-YYYY or 'Present'", http.StatusBadRequest},
	CodeSchemaValidation:     {CategoryValidation, "Schema Validation Failed", "Check the document schema via /schema/{doc_type}", http.StatusBadRequest},
	CodeNormalizationFailed:  {CategoryValidation, "Data Normalization Failed", "Check the reported field and retry", http.StatusBadRequest},
	CodeMarkupInjection:      {CategoryValidation, "Markup Injection Detected", "Remove markup control sequences from text fields", http.StatusBadRequest},
	CodeInvalidJSON:          {CategoryValidation, "Invalid JSON Structure", "Submit a well-formed JSON body", http.StatusBadRequest},
	CodeInvalidYAML:          {CategoryValidation, "Invalid YAML Structure", "Submit well-formed YAML in the data field", http.StatusBadRequest},

	CodeTemplateNotFound:  {CategoryTemplate, "Template Not Found", "Use one of the available templates", http.StatusNotFound},
	CodeCompilationFailed: {CategoryTemplate, "Compilation Failed", "Check the diagnostic for the offending markup", http.StatusInternalServerError},
	CodeRenderingFailed:   {CategoryTemplate, "Rendering Failed", "Check the template data for the reported section", http.StatusInternalServerError},
	CodeDependencyMissing: {CategoryTemplate, "Template Dependency Missing", "Install the compiler and font catalog", http.StatusInternalServerError},
	CodePDFGeneration:     {CategoryTemplate, "PDF Generation Failed", "Retry; if persistent, contact the operator", http.StatusInternalServerError},
	CodeUnsupportedFormat: {CategoryTemplate, "Unsupported Output Format", "Use one of: pdf, typst, docx", http.StatusBadRequest},

	CodeMalformedRequest:   {CategoryAPI, "Malformed Request", "Check the request body shape", http.StatusBadRequest},
	CodeInvalidParameter:   {CategoryAPI, "Invalid Request Parameter", "Check path and query parameters", http.StatusBadRequest},
	CodeRequestTimeout:     {CategoryAPI, "Request Timeout", "Retry with smaller input or use the async endpoint", http.StatusGatewayTimeout},
	CodeRateLimitExceeded:  {CategoryAPI, "Rate Limit Exceeded", "Back off and retry after the indicated delay", http.StatusTooManyRequests},
	CodeRequestTooLarge:    {CategoryAPI, "Request Too Large", "Reduce the payload size", http.StatusRequestEntityTooLarge},
	CodeResourceNotFound:   {CategoryAPI, "Resource Not Found", "Check the identifier", http.StatusNotFound},
	CodeServiceUnavailable: {CategoryAPI, "Service Unavailable", "Retry later", http.StatusServiceUnavailable},

	CodeInternal:          {CategorySystem, "Internal Server Error", "Retry; if persistent, contact the operator", http.StatusInternalServerError},
	CodeDependencyLookup:  {CategorySystem, "Dependency Not Found", "Check service installation", http.StatusInternalServerError},
	CodeResourceExhausted: {CategorySystem, "Resource Exhausted", "Retry later", http.StatusServiceUnavailable},

	CodeMaliciousInput: {CategorySecurity, "Malicious Input Detected", "Remove control sequences from the input", http.StatusBadRequest},
	CodePathTraversal:  {CategorySecurity, "Path Traversal Detected", "Remove path separators from the input", http.StatusBadRequest},
	CodeOversizedInput: {CategorySecurity, "Oversized Input", "Reduce the input size", http.StatusBadRequest},
}

// ServiceError is the typed error carried across every layer. It marshals
// into the wire error body (minus the timestamp, which the HTTP layer adds).
type ServiceError struct {
	Code         string         `json:"code"`
	Category     ErrorCategory  `json:"category"`
	Severity     ErrorSeverity  `json:"severity"`
	Title        string         `json:"title"`
	Message      string         `json:"message"`
	SuggestedFix string         `json:"suggestedFix,omitempty"`
	HTTPStatus   int            `json:"-"`
	Context      map[string]any `json:"context,omitempty"`

	cause error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.cause }

// WithContext attaches a key/value pair to the error's context map.
func (e *ServiceError) WithContext(key string, value any) *ServiceError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithCause records the underlying error for logging; it is never surfaced.
func (e *ServiceError) WithCause(err error) *ServiceError {
	e.cause = err
	return e
}

// NewError builds a ServiceError from a registered code. Unregistered codes
// fall back to SYS001 semantics.
func NewError(code, message string) *ServiceError {
	def, ok := errorDefs[code]
	if !ok {
		def = errorDefs[CodeInternal]
	}
	return &ServiceError{
		Code:         code,
		Category:     def.category,
		Severity:     SeverityError,
		Title:        def.title,
		Message:      message,
		SuggestedFix: def.fix,
		HTTPStatus:   def.status,
	}
}

// NewWarning builds a warning-severity issue for collecting validators.
func NewWarning(code, message string) *ServiceError {
	e := NewError(code, message)
	e.Severity = SeverityWarning
	return e
}

// MissingFieldError reports a required field absent at the given dotted path.
func MissingFieldError(path string) *ServiceError {
	return NewError(CodeMissingRequiredField,
		fmt.Sprintf("required field %q is missing", path)).
		WithContext("field", path)
}

// WrongTypeError reports a field present with an unexpected shape.
func WrongTypeError(path, expected string) *ServiceError {
	return NewError(CodeInvalidFieldType,
		fmt.Sprintf("field %q must be a %s", path, expected)).
		WithContext("field", path)
}

// InvalidDateError reports a date-shaped field that matches no accepted layout.
func InvalidDateError(path, value string) *ServiceError {
	return NewError(CodeInvalidDate,
		fmt.Sprintf("invalid date %q at %q", value, path)).
		WithContext("field", path).
		WithContext("value", value)
}

// TemplateNotFoundError carries the available-template hint list.
func TemplateNotFoundError(docType, name string, available []string) *ServiceError {
	return NewError(CodeTemplateNotFound,
		fmt.Sprintf("template %q not found for %s", name, docType)).
		WithContext("document_type", docType).
		WithContext("template", name).
		WithContext("available_templates", strings.Join(available, ", "))
}

// CompilationError wraps a compiler diagnostic, truncated so raw compiler
// output is never surfaced wholesale.
func CompilationError(diagnostic string) *ServiceError {
	const maxDiagnostic = 500
	if len(diagnostic) > maxDiagnostic {
		diagnostic = diagnostic[:maxDiagnostic]
	}
	return NewError(CodeCompilationFailed, "document compilation failed").
		WithContext("diagnostic", diagnostic)
}

// RateLimitError carries the retry hint in seconds.
func RateLimitError(retryAfter int) *ServiceError {
	return NewError(CodeRateLimitExceeded,
		fmt.Sprintf("rate limit exceeded, retry after %d seconds", retryAfter)).
		WithContext("retry_after", retryAfter)
}

// AsServiceError extracts a ServiceError from an error chain, or wraps the
// error as SYS001 with a generic message (detail goes to logs only).
func AsServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return NewError(CodeInternal, "an unexpected error occurred").WithCause(err)
}
