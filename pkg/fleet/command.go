package fleet

import (
	"context"

	"armada/pkg/model"
	"armada/pkg/runtime"
)

// RunOnAllNodes executes command through the shell on every live node,
// the coordinator included, and returns the results in node order. A
// non-zero exit on any node fails the whole call per AwaitAll.
func (f *Fleet) RunOnAllNodes(ctx context.Context, command string) ([]model.Result, error) {
	job := &model.Job{
		Name: "exec:" + command,
		Type: model.JobShell,
		Spec: model.JobSpec{Command: command},
	}

	handles, err := f.Broadcast(ctx, job, false)
	if err != nil {
		return nil, err
	}
	return AwaitAll(ctx, handles)
}

// RunWithResources submits each command as an independent untargeted
// job carrying the given resource request ("CPU" defaults to 1, "GPU"
// to 0, other names pass through as custom resources) and waits for
// all of them. Placement is left entirely to the scheduler; this form
// deliberately has no node targeting.
func (f *Fleet) RunWithResources(ctx context.Context, commands []string, resources map[string]float64) ([]model.Result, error) {
	req := model.ResourcesFromSpec(resources)

	handles := make([]runtime.Handle, 0, len(commands))
	for _, command := range commands {
		job := &model.Job{
			Name:   "run:" + command,
			Type:   model.JobShell,
			Spec:   model.JobSpec{Command: command},
			ResReq: req,
		}
		h, err := f.rt.Submit(ctx, job)
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	return AwaitAll(ctx, handles)
}
