package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"armada/pkg/model"
	"armada/pkg/store"
)

// EtcdRuntime submits jobs through the shared store and resolves
// handles by watching each job's key until the scheduler and a worker
// have driven it to a terminal state.
type EtcdRuntime struct {
	store store.Store
	log   *zap.Logger
}

func NewEtcdRuntime(s store.Store, log *zap.Logger) *EtcdRuntime {
	if log == nil {
		log = zap.NewNop()
	}
	return &EtcdRuntime{store: s, log: log}
}

func (r *EtcdRuntime) Submit(ctx context.Context, job *model.Job) (Handle, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	job.Status.State = model.JobPending

	if err := r.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("submit job %s: %w", job.ID, err)
	}

	r.log.Debug("job submitted",
		zap.String("job", job.ID),
		zap.String("type", string(job.Type)),
		zap.String("target", job.Placement.TargetAddress))

	return &jobHandle{store: r.store, jobID: job.ID}, nil
}

type jobHandle struct {
	store store.Store
	jobID string
}

func (h *jobHandle) JobID() string { return h.jobID }

// Wait watches the job key until a terminal state appears. The watch
// is opened before the initial read so a transition between the two
// cannot be missed.
func (h *jobHandle) Wait(ctx context.Context) (model.Result, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := h.store.WatchJob(watchCtx, h.jobID)

	job, err := h.store.GetJob(ctx, h.jobID)
	if err != nil {
		return model.Result{}, err
	}
	for !job.Status.State.Terminal() {
		select {
		case ev, ok := <-events:
			if !ok {
				return model.Result{}, fmt.Errorf("watch on job %s closed: %w", h.jobID, ctx.Err())
			}
			if ev.Type == store.JobDelete {
				return model.Result{}, fmt.Errorf("job %s deleted before completion", h.jobID)
			}
			job = ev.Job
		case <-ctx.Done():
			return model.Result{}, ctx.Err()
		}
	}

	if job.Status.State == model.JobFailed {
		return model.Result{}, fmt.Errorf("job %s failed on %s (exit %d): %s",
			h.jobID, job.Status.NodeAddress, job.Status.ExitCode, job.Status.Error)
	}

	output, err := h.store.GetJobOutput(ctx, h.jobID)
	if err != nil && !errors.Is(err, store.ErrNoOutput) {
		return model.Result{}, err
	}

	return model.Result{
		JobID:       h.jobID,
		NodeAddress: job.Status.NodeAddress,
		ExitCode:    job.Status.ExitCode,
		Output:      output,
	}, nil
}
