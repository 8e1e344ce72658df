// Package runtime is the submission side of the execution layer: turn
// a job into a pending handle, and resolve handles into results.
package runtime

import (
	"context"

	"armada/pkg/model"
)

// Handle is an unresolved reference to the eventual result of one
// submitted job. Submitting never blocks; all waiting happens in Wait.
type Handle interface {
	JobID() string

	// Wait blocks until the job reaches a terminal state. A failed job
	// comes back as a non-nil error; the zero Result is returned with it.
	Wait(ctx context.Context) (model.Result, error)
}

// Runtime places and runs submitted jobs. Placement honors
// job.Placement when set and falls back to resource-aware scheduling
// otherwise; execution is asynchronous and never awaited at submit time.
type Runtime interface {
	Submit(ctx context.Context, job *model.Job) (Handle, error)
}
