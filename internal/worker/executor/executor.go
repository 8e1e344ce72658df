// Package executor runs one job on the local node. Each job type has
// its own executor; the registry dispatches on the type.
package executor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"armada/pkg/model"
)

// Executor runs a job to completion and reports its captured output
// and exit code. A non-nil error marks the job failed.
type Executor interface {
	Run(ctx context.Context, job *model.Job) (output string, exitCode int, err error)
}

type Registry struct {
	byType map[model.JobType]Executor
}

// NewRegistry wires the built-in executors. Docker is optional: when
// no daemon is reachable the node still serves SHELL and FILE jobs.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{byType: map[model.JobType]Executor{
		model.JobShell: &ShellExecutor{},
		model.JobFile:  &FileExecutor{},
	}}

	docker, err := NewDockerExecutor(log)
	if err != nil {
		log.Warn("docker unavailable, DOCKER jobs will fail on this node", zap.Error(err))
	} else {
		r.byType[model.JobDocker] = docker
	}
	return r
}

func (r *Registry) Run(ctx context.Context, job *model.Job) (string, int, error) {
	exec, ok := r.byType[job.Type]
	if !ok {
		return "", -1, fmt.Errorf("no executor for job type %q", job.Type)
	}
	return exec.Run(ctx, job)
}
