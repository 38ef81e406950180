package document

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rendis/resume-forge/internal/core/entity"
	"github.com/rendis/resume-forge/internal/core/port"
	"github.com/rendis/resume-forge/internal/core/service/docx"
	"github.com/rendis/resume-forge/internal/core/template"
	"github.com/rendis/resume-forge/internal/core/validation"
)

// OrchestratorOptions tunes the render pipeline.
type OrchestratorOptions struct {
	// MaxArtifactBytes rejects pathological compiler outputs.
	MaxArtifactBytes int
}

func (o *OrchestratorOptions) withDefaults() {
	if o.MaxArtifactBytes <= 0 {
		o.MaxArtifactBytes = 25 << 20
	}
}

// Orchestrator drives a request through validation, template rendering,
// caching and compilation. One instance serves the whole process; the
// single-flight group guarantees at most one compilation per cache key at a
// time.
type Orchestrator struct {
	cache    *Cache
	compiler port.PDFCompiler
	docx     *docx.Generator
	opts     OrchestratorOptions
	logger   *slog.Logger

	flight singleflight.Group
}

func NewOrchestrator(cache *Cache, compiler port.PDFCompiler, gen *docx.Generator, opts OrchestratorOptions, logger *slog.Logger) *Orchestrator {
	opts.withDefaults()
	return &Orchestrator{
		cache:    cache,
		compiler: compiler,
		docx:     gen,
		opts:     opts,
		logger:   logger,
	}
}

// GenerateResult pairs the artifact with any advisory validation warnings.
type GenerateResult struct {
	Artifact *entity.RenderArtifact
	Warnings []*entity.ServiceError
}

// Generate runs the full pipeline for a synchronous request.
func (o *Orchestrator) Generate(ctx context.Context, req entity.DocumentRequest) (*GenerateResult, error) {
	if _, err := template.Get(req.DocumentType, req.Template); err != nil {
		return nil, err
	}

	data, warnings, err := o.validate(req)
	if err != nil {
		return nil, err
	}

	// DOCX bypasses the typesetting pipeline and its caches entirely.
	if req.Format == entity.FormatDOCX {
		artifact, err := o.docx.Generate(req.DocumentType, data)
		if err != nil {
			return nil, err
		}
		return &GenerateResult{Artifact: artifact, Warnings: warnings}, nil
	}

	cfg := template.Config{SpacingMode: req.SpacingMode}
	key := CacheKey(req.DocumentType, req.Template, data, req.Format)
	filename := entity.OutputFilename(req.DocumentType, data, req.Format)

	if req.Format == entity.FormatTypst {
		artifact, err := o.typstArtifact(req, data, cfg, key, filename)
		if err != nil {
			return nil, err
		}
		return &GenerateResult{Artifact: artifact, Warnings: warnings}, nil
	}

	if pdf, ok := o.cache.GetPDF(ctx, key); ok {
		return &GenerateResult{
			Artifact: &entity.RenderArtifact{
				Format:   entity.FormatPDF,
				Filename: filename,
				Bytes:    pdf,
				Cached:   true,
			},
			Warnings: warnings,
		}, nil
	}

	pdf, err := o.compileShared(ctx, req, data, cfg, key)
	if err != nil {
		return nil, err
	}
	return &GenerateResult{
		Artifact: &entity.RenderArtifact{
			Format:   entity.FormatPDF,
			Filename: filename,
			Bytes:    pdf,
		},
		Warnings: warnings,
	}, nil
}

// compileShared collapses concurrent equal requests onto one compilation.
// When the shared attempt failed in the compiler, each follower retries once
// on its own so a leader's transient failure is not latched onto the burst.
func (o *Orchestrator) compileShared(ctx context.Context, req entity.DocumentRequest, data map[string]any, cfg template.Config, key string) ([]byte, error) {
	var leader bool
	v, err, shared := o.flight.Do(key, func() (any, error) {
		leader = true
		return o.renderAndCompile(ctx, req, data, cfg, key)
	})
	if err != nil && shared && !leader && isCompilerError(err) {
		o.logger.InfoContext(ctx, "shared compilation failed, retrying independently",
			slog.String("key", key))
		return o.renderAndCompile(ctx, req, data, cfg, key)
	}
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (o *Orchestrator) renderAndCompile(ctx context.Context, req entity.DocumentRequest, data map[string]any, cfg template.Config, key string) ([]byte, error) {
	source, err := o.renderSource(req, data, cfg)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	pdf, err := o.compiler.Compile(ctx, source)
	if err != nil {
		return nil, err
	}
	if len(pdf) > o.opts.MaxArtifactBytes {
		return nil, entity.NewError(entity.CodePDFGeneration,
			"compiled artifact exceeds the size ceiling").
			WithContext("artifact_bytes", len(pdf)).
			WithContext("max_bytes", o.opts.MaxArtifactBytes)
	}

	o.logger.InfoContext(ctx, "document compiled",
		slog.String("document_type", string(req.DocumentType)),
		slog.String("template", req.Template),
		slog.Int("pdf_bytes", len(pdf)),
		slog.Duration("took", time.Since(started)))

	// Store after responding; the write must not extend the request.
	go o.cache.StorePDF(context.WithoutCancel(ctx), key, pdf)
	return pdf, nil
}

func (o *Orchestrator) typstArtifact(req entity.DocumentRequest, data map[string]any, cfg template.Config, key, filename string) (*entity.RenderArtifact, error) {
	if source, ok := o.cache.GetSource(key); ok {
		return &entity.RenderArtifact{
			Format:   entity.FormatTypst,
			Filename: filename,
			Source:   source,
			Cached:   true,
		}, nil
	}
	source, err := o.renderSource(req, data, cfg)
	if err != nil {
		return nil, err
	}
	o.cache.StoreSource(key, source)
	return &entity.RenderArtifact{Format: entity.FormatTypst, Filename: filename, Source: source}, nil
}

func (o *Orchestrator) renderSource(req entity.DocumentRequest, data map[string]any, cfg template.Config) (string, error) {
	helper, err := template.New(req.DocumentType, req.Template, data, cfg)
	if err != nil {
		return "", err
	}
	if err := helper.ValidateData(); err != nil {
		return "", err
	}
	return helper.Render()
}

// Validate runs the requested validation level and reports normalized data
// plus warnings without rendering anything.
func (o *Orchestrator) Validate(req entity.DocumentRequest) (map[string]any, []*entity.ServiceError, error) {
	return o.validate(req)
}

func (o *Orchestrator) validate(req entity.DocumentRequest) (map[string]any, []*entity.ServiceError, error) {
	if req.UltraValidation {
		result, err := validation.Ultra(req.DocumentType, req.Data, false)
		if err != nil {
			return nil, nil, err
		}
		return result.Data, result.Warnings, nil
	}
	data, err := validation.Standard(req.DocumentType, req.Data)
	if err != nil {
		return nil, nil, err
	}
	return data, nil, nil
}

// Analyze returns the helper's content metrics for the request.
func (o *Orchestrator) Analyze(req entity.DocumentRequest) (*template.ContentAnalysis, error) {
	data, _, err := o.validate(req)
	if err != nil {
		return nil, err
	}
	helper, err := template.New(req.DocumentType, req.Template, data, template.Config{SpacingMode: req.SpacingMode})
	if err != nil {
		return nil, err
	}
	analyzer, ok := helper.(template.Analyzer)
	if !ok {
		return nil, entity.NewError(entity.CodeInvalidParameter,
			"template does not support content analysis")
	}
	return analyzer.AnalyzeDocument(), nil
}

// SectionDensity extends a section's metrics with fill ratios.
type SectionDensity struct {
	SectionMetrics  template.SectionMetrics `json:"metrics"`
	DensityRatio    float64                 `json:"density_ratio"`
	WhitespaceRatio float64                 `json:"whitespace_ratio"`
}

// ExtendedAnalysis is the /analyze-pdf payload: base metrics plus
// whitespace and page-utilization ratios.
type ExtendedAnalysis struct {
	Analysis        *template.ContentAnalysis `json:"analysis"`
	Sections        []SectionDensity          `json:"section_density"`
	PageUtilization float64                   `json:"page_utilization"`
}

// AnalyzeExtended computes density ratios on top of the base analysis.
func (o *Orchestrator) AnalyzeExtended(req entity.DocumentRequest) (*ExtendedAnalysis, error) {
	analysis, err := o.Analyze(req)
	if err != nil {
		return nil, err
	}

	out := &ExtendedAnalysis{Analysis: analysis}
	for _, section := range analysis.Sections {
		capacity := float64(section.EstimatedLines * 75)
		density := 0.0
		if capacity > 0 {
			density = math.Min(1, float64(section.CharCount)/capacity)
		}
		out.Sections = append(out.Sections, SectionDensity{
			SectionMetrics:  section,
			DensityRatio:    round2(density),
			WhitespaceRatio: round2(1 - density),
		})
	}
	if pages := math.Ceil(analysis.EstimatedPages); pages > 0 {
		out.PageUtilization = round2(float64(analysis.TotalLines) / (pages * float64(analysis.LinesPerPage)))
	}
	return out, nil
}

// CacheMetrics exposes the cache counters for /metrics.
func (o *Orchestrator) CacheMetrics(ctx context.Context) CacheMetrics {
	return o.cache.Metrics(ctx)
}

// CompilerReady reports warmup state for /health.
func (o *Orchestrator) CompilerReady() bool { return o.compiler.Ready() }

func isCompilerError(err error) bool {
	var svcErr *entity.ServiceError
	if !errors.As(err, &svcErr) {
		return false
	}
	switch svcErr.Code {
	case entity.CodeCompilationFailed, entity.CodePDFGeneration, entity.CodeRequestTimeout:
		return true
	}
	return false
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
