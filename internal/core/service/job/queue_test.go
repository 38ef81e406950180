package job

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
	"github.com/rendis/resume-forge/internal/core/service/document"
)

// fakeGenerator simulates the render pipeline with configurable latency and
// failure.
type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	delay time.Duration
	err   error
}

func (f *fakeGenerator) Generate(ctx context.Context, req entity.DocumentRequest) (*document.GenerateResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &document.GenerateResult{
		Artifact: &entity.RenderArtifact{
			Format:   entity.FormatPDF,
			Filename: entity.OutputFilename(req.DocumentType, req.Data, entity.FormatPDF),
			Bytes:    []byte("%PDF-fake"),
		},
	}, nil
}

func newTestQueue(t *testing.T, gen Generator, opts QueueOptions) (*Queue, *Store) {
	t.Helper()
	store := NewStore(keyvalue.NewMemory(), StoreOptions{})
	q := NewQueue(store, gen, opts, slog.Default())
	return q, store
}

func waitForState(t *testing.T, store *Store, id string, want entity.JobState) *entity.Job {
	t.Helper()
	var job *entity.Job
	require.Eventually(t, func() bool {
		var err error
		job, err = store.Get(context.Background(), id)
		return err == nil && job.State == want
	}, 2*time.Second, 10*time.Millisecond, "job never reached %s", want)
	return job
}

func TestQueueRunsJobToSuccess(t *testing.T) {
	gen := &fakeGenerator{}
	q, store := newTestQueue(t, gen, QueueOptions{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	job, err := q.Submit(context.Background(), testRequest())
	require.NoError(t, err)

	done := waitForState(t, store, job.ID, entity.JobSuccess)
	assert.NotEmpty(t, done.ResultRef)
	assert.NotNil(t, done.FinishedAt)

	artifact, err := store.GetResult(context.Background(), done)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), artifact.Bytes)
}

func TestQueueRecordsFailure(t *testing.T) {
	gen := &fakeGenerator{err: entity.CompilationError("bad markup")}
	q, store := newTestQueue(t, gen, QueueOptions{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	job, err := q.Submit(context.Background(), testRequest())
	require.NoError(t, err)

	failed := waitForState(t, store, job.ID, entity.JobFailed)
	require.NotNil(t, failed.Error)
	assert.Equal(t, entity.CodeCompilationFailed, failed.Error.Code)
	assert.Empty(t, failed.ResultRef)
}

func TestQueueJobDeadline(t *testing.T) {
	gen := &fakeGenerator{delay: 500 * time.Millisecond}
	q, store := newTestQueue(t, gen, QueueOptions{Workers: 1, JobTimeout: 20 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	job, err := q.Submit(context.Background(), testRequest())
	require.NoError(t, err)

	failed := waitForState(t, store, job.ID, entity.JobFailed)
	require.NotNil(t, failed.Error)
	assert.Equal(t, entity.CodeRequestTimeout, failed.Error.Code)
}

func TestQueueFullRejectsSubmission(t *testing.T) {
	// No workers started: the channel fills and stays full.
	gen := &fakeGenerator{}
	q, _ := newTestQueue(t, gen, QueueOptions{Workers: 1, Capacity: 1})

	_, err := q.Submit(context.Background(), testRequest())
	require.NoError(t, err)

	rejected, err := q.Submit(context.Background(), testRequest())
	assert.Nil(t, rejected)
	var svcErr *entity.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, entity.CodeServiceUnavailable, svcErr.Code)
}

func TestQueueCancelPendingSkipsExecution(t *testing.T) {
	gen := &fakeGenerator{}
	q, store := newTestQueue(t, gen, QueueOptions{Workers: 1})

	job, err := q.Submit(context.Background(), testRequest())
	require.NoError(t, err)

	cancelled, err := q.Cancel(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobCancelled, cancelled.State)

	// Start the workers after cancellation; the queued task must be skipped.
	q.Start(context.Background())
	defer q.Stop()

	time.Sleep(100 * time.Millisecond)
	got, err := store.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobCancelled, got.State)
	gen.mu.Lock()
	defer gen.mu.Unlock()
	assert.Zero(t, gen.calls)
}

func TestQueueCancelRunningRejected(t *testing.T) {
	gen := &fakeGenerator{delay: 300 * time.Millisecond}
	q, store := newTestQueue(t, gen, QueueOptions{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	job, err := q.Submit(context.Background(), testRequest())
	require.NoError(t, err)
	waitForState(t, store, job.ID, entity.JobRunning)

	_, err = q.Cancel(context.Background(), job.ID)
	var svcErr *entity.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, entity.CodeInvalidParameter, svcErr.Code)
	assert.Equal(t, "running", svcErr.Context["state"])
}
