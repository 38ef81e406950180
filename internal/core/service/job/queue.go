package job

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rendis/resume-forge/internal/core/entity"
	"github.com/rendis/resume-forge/internal/core/service/document"
)

// Generator is the slice of the orchestrator the queue needs.
type Generator interface {
	Generate(ctx context.Context, req entity.DocumentRequest) (*document.GenerateResult, error)
}

// QueueOptions tunes the worker pool.
type QueueOptions struct {
	Workers    int
	Capacity   int
	JobTimeout time.Duration
}

func (o *QueueOptions) withDefaults() {
	if o.Workers <= 0 {
		o.Workers = 32
	}
	if o.Capacity <= 0 {
		o.Capacity = 256
	}
	if o.JobTimeout <= 0 {
		o.JobTimeout = 5 * time.Minute
	}
}

// Queue accepts render requests, persists them as pending jobs and drains
// them with a fixed pool of workers. A full queue rejects the submission
// rather than dropping it silently.
type Queue struct {
	store  *Store
	gen    Generator
	opts   QueueOptions
	logger *slog.Logger

	tasks  chan string
	group  *errgroup.Group
	cancel context.CancelFunc
}

func NewQueue(store *Store, gen Generator, opts QueueOptions, logger *slog.Logger) *Queue {
	opts.withDefaults()
	return &Queue{
		store:  store,
		gen:    gen,
		opts:   opts,
		logger: logger,
		tasks:  make(chan string, opts.Capacity),
	}
}

// Start launches the worker pool. Workers run until Stop.
func (q *Queue) Start(ctx context.Context) {
	ctx, q.cancel = context.WithCancel(ctx)
	q.group, ctx = errgroup.WithContext(ctx)

	for i := 0; i < q.opts.Workers; i++ {
		q.group.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case id := <-q.tasks:
					q.process(ctx, id)
				}
			}
		})
	}
	q.logger.InfoContext(ctx, "job queue started",
		slog.Int("workers", q.opts.Workers),
		slog.Int("capacity", q.opts.Capacity))
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (q *Queue) Stop() {
	if q.cancel == nil {
		return
	}
	q.cancel()
	_ = q.group.Wait()
}

// Submit persists a pending job and enqueues it. When the queue is full the
// job is rolled back and the caller receives a service-unavailable error.
func (q *Queue) Submit(ctx context.Context, req *entity.DocumentRequest) (*entity.Job, error) {
	job, err := q.store.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	select {
	case q.tasks <- job.ID:
		return job, nil
	default:
		_ = q.store.Delete(ctx, job.ID)
		return nil, entity.NewError(entity.CodeServiceUnavailable,
			"job queue is full, retry later").
			WithContext("capacity", q.opts.Capacity)
	}
}

// Cancel moves a pending job to cancelled. Running jobs are not preemptible;
// the transition check rejects them with the current state.
func (q *Queue) Cancel(ctx context.Context, id string) (*entity.Job, error) {
	return q.store.Transition(ctx, id, entity.JobCancelled, nil)
}

// process runs one job end to end. A job cancelled while still pending loses
// the pending → running transition and is skipped.
func (q *Queue) process(ctx context.Context, id string) {
	job, err := q.store.Transition(ctx, id, entity.JobRunning, nil)
	if err != nil {
		q.logger.InfoContext(ctx, "job skipped",
			slog.String("job_id", id), slog.Any("reason", err))
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, q.opts.JobTimeout)
	defer cancel()

	res, err := q.gen.Generate(jobCtx, *job.Request)
	if err != nil {
		q.fail(ctx, id, err)
		return
	}

	ref, err := q.store.StoreResult(ctx, id, res.Artifact)
	if err != nil {
		q.fail(ctx, id, err)
		return
	}
	if _, err := q.store.Transition(ctx, id, entity.JobSuccess, func(j *entity.Job) {
		j.ResultRef = ref
	}); err != nil {
		q.logger.ErrorContext(ctx, "job result discarded",
			slog.String("job_id", id), slog.Any("error", err))
	}
}

func (q *Queue) fail(ctx context.Context, id string, cause error) {
	svcErr := entity.AsServiceError(cause)
	if errors.Is(cause, context.DeadlineExceeded) {
		svcErr = entity.NewError(entity.CodeRequestTimeout, "job exceeded its deadline").
			WithContext("timeout", q.opts.JobTimeout.String())
	}

	q.logger.ErrorContext(ctx, "job failed",
		slog.String("job_id", id),
		slog.String("code", svcErr.Code),
		slog.Any("error", cause))

	if _, err := q.store.Transition(ctx, id, entity.JobFailed, func(j *entity.Job) {
		j.Error = svcErr
	}); err != nil {
		q.logger.ErrorContext(ctx, "job failure not recorded",
			slog.String("job_id", id), slog.Any("error", err))
	}
}
