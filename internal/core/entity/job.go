package entity

import "time"

// JobState is the lifecycle state of an async compilation job.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobSuccess   JobState = "success"
	JobFailed    JobState = "failed"
	JobCancelled JobState = "cancelled"
)

// Terminal reports whether the state admits no further transitions.
func (s JobState) Terminal() bool {
	switch s {
	case JobSuccess, JobFailed, JobCancelled:
		return true
	}
	return false
}

// Job is the persisted snapshot of an async compilation unit.
// Invariant: ResultRef is non-empty iff State == success; Error is non-nil
// iff State == failed.
type Job struct {
	ID         string           `json:"id"`
	State      JobState         `json:"state"`
	Request    *DocumentRequest `json:"request"`
	CreatedAt  time.Time        `json:"created_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	ResultRef  string           `json:"result_ref,omitempty"`
	Error      *ServiceError    `json:"error,omitempty"`
}

// CanTransition reports whether from → to is a legal state transition.
// Transitions are monotonic: pending → running → success|failed, with
// cancellation allowed from pending only.
func CanTransition(from, to JobState) bool {
	switch from {
	case JobPending:
		return to == JobRunning || to == JobCancelled
	case JobRunning:
		return to == JobSuccess || to == JobFailed
	}
	return false
}
