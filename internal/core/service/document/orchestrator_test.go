package document

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/resume-forge/internal/adapters/secondary/keyvalue"
	"github.com/rendis/resume-forge/internal/core/entity"
	"github.com/rendis/resume-forge/internal/core/service/docx"
)

// fakeCompiler counts invocations and optionally gates or fails them.
type fakeCompiler struct {
	mu      sync.Mutex
	calls   int
	failAll bool

	entered chan struct{} // signalled once per Compile, if set
	release chan struct{} // Compile blocks until closed, if set
}

func (f *fakeCompiler) Warmup(context.Context) error { return nil }
func (f *fakeCompiler) Ready() bool                  { return true }

func (f *fakeCompiler) Compile(_ context.Context, source string) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.failAll {
		return nil, entity.CompilationError("fake diagnostic")
	}
	return append([]byte("%PDF-"), source[:min(8, len(source))]...), nil
}

func (f *fakeCompiler) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestOrchestrator(t *testing.T, compiler *fakeCompiler) *Orchestrator {
	t.Helper()
	cache, err := NewCache(keyvalue.NewMemory(), CacheOptions{Enabled: true}, slog.Default())
	require.NoError(t, err)
	return NewOrchestrator(cache, compiler, docx.NewGenerator(), OrchestratorOptions{}, slog.Default())
}

func resumeRequest() entity.DocumentRequest {
	return entity.DocumentRequest{
		DocumentType: entity.DocumentTypeResume,
		Template:     "classic",
		Format:       entity.FormatPDF,
		Data: map[string]any{
			"personalInfo": map[string]any{
				"name":  "Ada Lovelace",
				"email": "ada@example.com",
			},
			"professionalSummary": "Engineer.",
		},
	}
}

func TestGeneratePDFAndCacheHit(t *testing.T) {
	ctx := context.Background()
	compiler := &fakeCompiler{}
	o := newTestOrchestrator(t, compiler)

	res, err := o.Generate(ctx, resumeRequest())
	require.NoError(t, err)
	assert.False(t, res.Artifact.Cached)
	assert.Equal(t, "resume_Ada_Lovelace.pdf", res.Artifact.Filename)
	assert.Equal(t, 1, compiler.count())

	// The cache write is asynchronous; give it a moment.
	require.Eventually(t, func() bool {
		res, err := o.Generate(ctx, resumeRequest())
		return err == nil && res.Artifact.Cached
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, compiler.count(), "cache hit must not recompile")
}

func TestGenerateUnknownTemplate(t *testing.T) {
	req := resumeRequest()
	req.Template = "nope"

	_, err := newTestOrchestrator(t, &fakeCompiler{}).Generate(context.Background(), req)
	var svcErr *entity.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, entity.CodeTemplateNotFound, svcErr.Code)
}

func TestGenerateValidationFailure(t *testing.T) {
	req := resumeRequest()
	delete(req.Data["personalInfo"].(map[string]any), "email")

	compiler := &fakeCompiler{}
	_, err := newTestOrchestrator(t, compiler).Generate(context.Background(), req)
	var svcErr *entity.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, entity.CodeMissingRequiredField, svcErr.Code)
	assert.Zero(t, compiler.count(), "invalid requests never reach the compiler")
}

func TestGenerateDOCXBypassesCompiler(t *testing.T) {
	req := resumeRequest()
	req.Format = entity.FormatDOCX

	compiler := &fakeCompiler{}
	res, err := newTestOrchestrator(t, compiler).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, entity.FormatDOCX, res.Artifact.Format)
	assert.Equal(t, "resume_Ada_Lovelace.docx", res.Artifact.Filename)
	assert.Zero(t, compiler.count())
}

func TestGenerateTypstCachesSource(t *testing.T) {
	req := resumeRequest()
	req.Format = entity.FormatTypst

	compiler := &fakeCompiler{}
	o := newTestOrchestrator(t, compiler)

	res, err := o.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Artifact.Cached)
	assert.Contains(t, res.Artifact.Source, "== Professional Summary")
	assert.Equal(t, "resume_Ada_Lovelace.typ", res.Artifact.Filename)

	res, err = o.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Artifact.Cached)
	assert.Zero(t, compiler.count())
}

func TestGenerateUltraWarnings(t *testing.T) {
	req := resumeRequest()
	req.UltraValidation = true
	req.Data["personalInfo"].(map[string]any)["github"] = "github.com/ada"

	res, err := newTestOrchestrator(t, &fakeCompiler{}).Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, entity.CodeInvalidURL, res.Warnings[0].Code)
}

func TestSingleFlightCollapsesBurst(t *testing.T) {
	const burst = 8
	compiler := &fakeCompiler{
		entered: make(chan struct{}, burst),
		release: make(chan struct{}),
	}
	o := newTestOrchestrator(t, compiler)

	var wg sync.WaitGroup
	results := make([]*GenerateResult, burst)
	errs := make([]error, burst)
	for i := 0; i < burst; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = o.Generate(context.Background(), resumeRequest())
		}(i)
	}

	// Wait for the leader to enter the compiler, let the followers pile onto
	// the in-flight key, then release.
	<-compiler.entered
	time.Sleep(50 * time.Millisecond)
	close(compiler.release)
	wg.Wait()

	assert.Equal(t, 1, compiler.count(), "burst of equal requests compiles once")
	for i := 0; i < burst; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Artifact.Bytes, results[i].Artifact.Bytes)
	}
}

func TestFollowersRetryAfterSharedFailure(t *testing.T) {
	compiler := &fakeCompiler{
		failAll: true,
		entered: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
	o := newTestOrchestrator(t, compiler)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = o.Generate(context.Background(), resumeRequest())
		}(i)
	}

	<-compiler.entered
	time.Sleep(50 * time.Millisecond)
	close(compiler.release)
	wg.Wait()

	for _, err := range errs {
		var svcErr *entity.ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, entity.CodeCompilationFailed, svcErr.Code)
	}
	assert.Equal(t, 2, compiler.count(),
		"the follower retries the failed shared attempt independently")
}

func TestAnalyzeExtended(t *testing.T) {
	req := resumeRequest()
	o := newTestOrchestrator(t, &fakeCompiler{})

	ext, err := o.AnalyzeExtended(req)
	require.NoError(t, err)
	require.NotEmpty(t, ext.Sections)
	for _, s := range ext.Sections {
		assert.InDelta(t, 1.0, s.DensityRatio+s.WhitespaceRatio, 0.011)
	}
	assert.GreaterOrEqual(t, ext.PageUtilization, 0.0)
	assert.LessOrEqual(t, ext.PageUtilization, 1.0)
}
