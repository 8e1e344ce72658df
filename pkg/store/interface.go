package store

import (
	"context"

	"armada/pkg/model"
)

type JobEventType int

const (
	JobPut JobEventType = iota
	JobDelete
)

// JobEvent is one observed change to a stored job. Creates and updates
// both surface as JobPut (the backing store does not distinguish them).
type JobEvent struct {
	Type JobEventType
	Job  *model.Job
}

// Store is everything the system needs from its backing store. The
// scheduler, the worker agent and the runtime all depend on this
// interface, never on a concrete backend.
type Store interface {
	// CreateJob persists a newly submitted job.
	CreateJob(ctx context.Context, job *model.Job) error

	// GetJob fetches one job by ID.
	GetJob(ctx context.Context, id string) (*model.Job, error)

	// UpdateJob overwrites a job's stored state (bind, run, finish).
	UpdateJob(ctx context.Context, job *model.Job) error

	// WatchJobs streams every job change until ctx is cancelled.
	WatchJobs(ctx context.Context) <-chan JobEvent

	// WatchJob streams changes to a single job until ctx is cancelled.
	WatchJob(ctx context.Context, id string) <-chan JobEvent

	// SaveJobOutput stores the captured output of a finished job.
	SaveJobOutput(ctx context.Context, jobID, output string) error

	// GetJobOutput returns stored output, or ErrNoOutput if none exists.
	GetJobOutput(ctx context.Context, jobID string) (string, error)

	// RegisterNode upserts a node record (worker heartbeat).
	RegisterNode(ctx context.Context, node *model.Node) error

	// ListNodes returns every registered node in store order.
	ListNodes(ctx context.Context) ([]*model.Node, error)
}
