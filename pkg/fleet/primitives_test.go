package fleet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"armada/internal/worker/executor"
	"armada/pkg/model"
)

// fileExecRuntime executes FILE jobs inline, rebasing the destination
// under a per-node root to stand in for each node's own filesystem.
func fileExecRuntime(t *testing.T, roots map[string]string) *fakeRuntime {
	t.Helper()
	fileExec := &executor.FileExecutor{}
	return &fakeRuntime{exec: func(job *model.Job) (model.Result, error) {
		target := job.Placement.TargetAddress
		root, ok := roots[target]
		if !ok {
			return model.Result{}, fmt.Errorf("job targeted unknown node %s", target)
		}
		rebased := job.Clone()
		rebased.Spec.Path = filepath.Join(root, job.Spec.Path)
		if _, _, err := fileExec.Run(context.Background(), rebased); err != nil {
			return model.Result{}, err
		}
		return model.Result{JobID: job.ID, NodeAddress: target}, nil
	}}
}

func TestDistributeFileRoundTrip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "nested", "payload.bin")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	content := []byte("fleet payload \x00\x01\x02")
	require.NoError(t, os.WriteFile(src, content, 0o644))

	roots := map[string]string{
		"10.0.0.2": t.TempDir(),
		"10.0.0.3": t.TempDir(),
	}
	rt := fileExecRuntime(t, roots)
	dir := &fakeDirectory{live: liveNodes("10.0.0.1", "10.0.0.2", "10.0.0.3"), self: "10.0.0.1"}
	fl := New(dir, rt, nil)

	require.NoError(t, fl.DistributeFile(context.Background(), src))

	// The head never receives its own file.
	for _, job := range rt.jobs() {
		require.Equal(t, model.JobFile, job.Type)
		require.NotEqual(t, "10.0.0.1", job.Placement.TargetAddress)
	}

	// Byte-identical content at the same absolute path on every node,
	// parent directories created on the way.
	abs, err := filepath.Abs(src)
	require.NoError(t, err)
	for addr, root := range roots {
		got, err := os.ReadFile(filepath.Join(root, abs))
		require.NoError(t, err, "node %s", addr)
		require.Equal(t, content, got, "node %s", addr)
	}
}

func TestDistributeFileMissingLocalFileFailsBeforeBroadcast(t *testing.T) {
	rt := &fakeRuntime{}
	dir := &fakeDirectory{live: liveNodes("10.0.0.2"), self: "10.0.0.1"}
	fl := New(dir, rt, nil)

	err := fl.DistributeFile(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	require.Empty(t, rt.jobs(), "nothing may be submitted after a local read failure")
}

func TestDistributeFileRemoteWriteFailureSurfaces(t *testing.T) {
	src := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	boom := errors.New("disk full")
	rt := &fakeRuntime{exec: func(job *model.Job) (model.Result, error) {
		if job.Placement.TargetAddress == "10.0.0.3" {
			return model.Result{}, boom
		}
		return model.Result{JobID: job.ID}, nil
	}}
	dir := &fakeDirectory{live: liveNodes("10.0.0.2", "10.0.0.3"), self: "10.0.0.1"}
	fl := New(dir, rt, nil)

	require.ErrorIs(t, fl.DistributeFile(context.Background(), src), boom)
}

func TestRunOnAllNodesIncludesHead(t *testing.T) {
	rt := &fakeRuntime{exec: func(job *model.Job) (model.Result, error) {
		return model.Result{JobID: job.ID, NodeAddress: job.Placement.TargetAddress, ExitCode: 0}, nil
	}}
	dir := &fakeDirectory{live: liveNodes("10.0.0.1", "10.0.0.2", "10.0.0.3"), self: "10.0.0.1"}
	fl := New(dir, rt, nil)

	results, err := fl.RunOnAllNodes(context.Background(), "true")
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, job := range rt.jobs() {
		require.Equal(t, model.JobShell, job.Type)
		require.Equal(t, "true", job.Spec.Command)
	}
}

func TestRunOnAllNodesFailsOnAnyNonZeroExit(t *testing.T) {
	rt := &fakeRuntime{exec: func(job *model.Job) (model.Result, error) {
		if job.Placement.TargetAddress == "10.0.0.2" {
			return model.Result{}, errors.New("command exited 1")
		}
		return model.Result{JobID: job.ID}, nil
	}}
	dir := &fakeDirectory{live: liveNodes("10.0.0.1", "10.0.0.2", "10.0.0.3"), self: "10.0.0.1"}
	fl := New(dir, rt, nil)

	_, err := fl.RunOnAllNodes(context.Background(), "false")
	require.Error(t, err)
}

func TestRunWithResourcesExtractsDefaultsAndCustom(t *testing.T) {
	rt := &fakeRuntime{exec: func(job *model.Job) (model.Result, error) {
		return model.Result{JobID: job.ID}, nil
	}}
	fl := New(&fakeDirectory{}, rt, nil)

	_, err := fl.RunWithResources(context.Background(),
		[]string{"train --shard 0", "train --shard 1"},
		map[string]float64{"CPU": 2, "custom_tag": 1})
	require.NoError(t, err)

	jobs := rt.jobs()
	require.Len(t, jobs, 2)
	for _, job := range jobs {
		require.Equal(t, 2.0, job.ResReq.CPU)
		require.Equal(t, 0.0, job.ResReq.GPU)
		require.Equal(t, map[string]float64{"custom_tag": 1}, job.ResReq.Custom)
		// This form never pins a node; placement is the scheduler's call.
		require.Empty(t, job.Placement.TargetAddress)
	}
	require.Equal(t, "train --shard 0", jobs[0].Spec.Command)
	require.Equal(t, "train --shard 1", jobs[1].Spec.Command)
}

func TestRunWithResourcesEmptySpecUsesDefaults(t *testing.T) {
	rt := &fakeRuntime{exec: func(job *model.Job) (model.Result, error) {
		return model.Result{JobID: job.ID}, nil
	}}
	fl := New(&fakeDirectory{}, rt, nil)

	results, err := fl.RunWithResources(context.Background(), []string{"true"}, map[string]float64{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	job := rt.jobs()[0]
	require.Equal(t, 1.0, job.ResReq.CPU)
	require.Equal(t, 0.0, job.ResReq.GPU)
	require.Empty(t, job.ResReq.Custom)
}
