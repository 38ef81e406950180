// Package job implements the async compilation facility: a KV-backed job
// store with compare-and-set state transitions and a fixed worker pool
// draining a bounded queue.
package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rendis/resume-forge/internal/core/entity"
	"github.com/rendis/resume-forge/internal/core/port"
)

const (
	jobKeyPrefix    = "job:"
	resultKeyPrefix = "jobresult:"
)

// StoreOptions tunes job persistence.
type StoreOptions struct {
	// PendingTTL bounds how long a non-terminal job may live; a safety net
	// against jobs orphaned by a crash.
	PendingTTL time.Duration
	// TerminalTTL keeps finished jobs and their artifacts visible for
	// download before expiry.
	TerminalTTL time.Duration
}

func (o *StoreOptions) withDefaults() {
	if o.PendingTTL <= 0 {
		o.PendingTTL = 24 * time.Hour
	}
	if o.TerminalTTL <= 0 {
		o.TerminalTTL = time.Hour
	}
}

// Store persists jobs and their artifacts in the KV backend. State changes
// go through optimistic transactions so concurrent transitions cannot race.
type Store struct {
	kv   port.KeyValueStore
	opts StoreOptions
}

func NewStore(kv port.KeyValueStore, opts StoreOptions) *Store {
	opts.withDefaults()
	return &Store{kv: kv, opts: opts}
}

// Create persists a new pending job for the request and returns it.
func (s *Store) Create(ctx context.Context, req *entity.DocumentRequest) (*entity.Job, error) {
	job := &entity.Job{
		ID:        uuid.NewString(),
		State:     entity.JobPending,
		Request:   req,
		CreatedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return nil, entity.NewError(entity.CodeInternal, "job encoding failed").WithCause(err)
	}
	if err := s.kv.Set(ctx, jobKeyPrefix+job.ID, raw, s.opts.PendingTTL); err != nil {
		return nil, entity.NewError(entity.CodeServiceUnavailable,
			"job store is unreachable").WithCause(err)
	}
	return job, nil
}

// Get fetches a job snapshot.
func (s *Store) Get(ctx context.Context, id string) (*entity.Job, error) {
	raw, err := s.kv.Get(ctx, jobKeyPrefix+id)
	if errors.Is(err, port.ErrKeyNotFound) {
		return nil, entity.NewError(entity.CodeResourceNotFound,
			fmt.Sprintf("job %q not found", id)).WithContext("job_id", id)
	}
	if err != nil {
		return nil, entity.NewError(entity.CodeServiceUnavailable,
			"job store is unreachable").WithCause(err)
	}

	var job entity.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, entity.NewError(entity.CodeInternal, "job decoding failed").WithCause(err)
	}
	return &job, nil
}

// Transition moves a job to the target state under an optimistic lock,
// applying mutate to the job before it is written back. Illegal transitions
// fail without writing.
func (s *Store) Transition(ctx context.Context, id string, to entity.JobState, mutate func(*entity.Job)) (*entity.Job, error) {
	var updated entity.Job

	err := s.kv.Update(ctx, jobKeyPrefix+id, func(current []byte) ([]byte, time.Duration, error) {
		if current == nil {
			return nil, 0, entity.NewError(entity.CodeResourceNotFound,
				fmt.Sprintf("job %q not found", id)).WithContext("job_id", id)
		}
		var job entity.Job
		if err := json.Unmarshal(current, &job); err != nil {
			return nil, 0, entity.NewError(entity.CodeInternal, "job decoding failed").WithCause(err)
		}
		if !entity.CanTransition(job.State, to) {
			return nil, 0, entity.NewError(entity.CodeInvalidParameter,
				fmt.Sprintf("job %q cannot move from %s to %s", id, job.State, to)).
				WithContext("job_id", id).
				WithContext("state", string(job.State))
		}

		job.State = to
		if to.Terminal() {
			now := time.Now().UTC()
			job.FinishedAt = &now
		}
		if mutate != nil {
			mutate(&job)
		}

		raw, err := json.Marshal(&job)
		if err != nil {
			return nil, 0, entity.NewError(entity.CodeInternal, "job encoding failed").WithCause(err)
		}
		updated = job

		ttl := s.opts.PendingTTL
		if to.Terminal() {
			ttl = s.opts.TerminalTTL
		}
		return raw, ttl, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// storedResult is the artifact envelope persisted beside a successful job.
type storedResult struct {
	Filename string              `json:"filename"`
	Format   entity.OutputFormat `json:"format"`
	Data     []byte              `json:"data"`
	Source   string              `json:"source,omitempty"`
}

// StoreResult persists the artifact and returns the reference to record on
// the job.
func (s *Store) StoreResult(ctx context.Context, id string, artifact *entity.RenderArtifact) (string, error) {
	raw, err := json.Marshal(storedResult{
		Filename: artifact.Filename,
		Format:   artifact.Format,
		Data:     artifact.Bytes,
		Source:   artifact.Source,
	})
	if err != nil {
		return "", entity.NewError(entity.CodeInternal, "result encoding failed").WithCause(err)
	}
	key := resultKeyPrefix + id
	if err := s.kv.Set(ctx, key, raw, s.opts.TerminalTTL); err != nil {
		return "", entity.NewError(entity.CodeServiceUnavailable,
			"job store is unreachable").WithCause(err)
	}
	return key, nil
}

// GetResult loads the artifact a successful job points to.
func (s *Store) GetResult(ctx context.Context, job *entity.Job) (*entity.RenderArtifact, error) {
	if job.State != entity.JobSuccess || job.ResultRef == "" {
		return nil, entity.NewError(entity.CodeResourceNotFound,
			fmt.Sprintf("job %q has no result", job.ID)).WithContext("job_id", job.ID)
	}
	raw, err := s.kv.Get(ctx, job.ResultRef)
	if errors.Is(err, port.ErrKeyNotFound) {
		return nil, entity.NewError(entity.CodeResourceNotFound,
			fmt.Sprintf("result of job %q has expired", job.ID)).WithContext("job_id", job.ID)
	}
	if err != nil {
		return nil, entity.NewError(entity.CodeServiceUnavailable,
			"job store is unreachable").WithCause(err)
	}

	var result storedResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, entity.NewError(entity.CodeInternal, "result decoding failed").WithCause(err)
	}
	return &entity.RenderArtifact{
		Format:   result.Format,
		Filename: result.Filename,
		Bytes:    result.Data,
		Source:   result.Source,
	}, nil
}

// Delete removes a job and its artifact.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.kv.Delete(ctx, resultKeyPrefix+id); err != nil {
		return err
	}
	return s.kv.Delete(ctx, jobKeyPrefix+id)
}
