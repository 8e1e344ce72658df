package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"armada/pkg/model"
	"armada/pkg/store"
)

type fakeStore struct {
	mu      sync.Mutex
	jobs    map[string]*model.Job
	outputs map[string]string
	nodes   []*model.Node
	events  chan store.JobEvent
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:    map[string]*model.Job{},
		outputs: map[string]string{},
		events:  make(chan store.JobEvent, 16),
	}
}

func (f *fakeStore) CreateJob(ctx context.Context, job *model.Job) error {
	return f.UpdateJob(ctx, job)
}

func (f *fakeStore) UpdateJob(_ context.Context, job *model.Job) error {
	f.mu.Lock()
	f.jobs[job.ID] = job.Clone()
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) GetJob(_ context.Context, id string) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return job.Clone(), nil
}

func (f *fakeStore) WatchJobs(_ context.Context) <-chan store.JobEvent { return f.events }

func (f *fakeStore) WatchJob(_ context.Context, _ string) <-chan store.JobEvent {
	return make(chan store.JobEvent)
}

func (f *fakeStore) SaveJobOutput(_ context.Context, jobID, output string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[jobID] = output
	return nil
}

func (f *fakeStore) GetJobOutput(_ context.Context, jobID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out, ok := f.outputs[jobID]
	if !ok {
		return "", store.ErrNoOutput
	}
	return out, nil
}

func (f *fakeStore) RegisterNode(_ context.Context, node *model.Node) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nodes = append(f.nodes, node)
	return nil
}

func (f *fakeStore) ListNodes(_ context.Context) ([]*model.Node, error) { return nil, nil }

func (f *fakeStore) awaitTerminal(t *testing.T, id string) *model.Job {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		f.mu.Lock()
		job := f.jobs[id]
		f.mu.Unlock()
		if job != nil && job.Status.State.Terminal() {
			return job
		}
		select {
		case <-deadline:
			t.Fatalf("job %s never reached a terminal state", id)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func scheduledJob(id, addr, command string) *model.Job {
	job := &model.Job{
		ID:   id,
		Type: model.JobShell,
		Spec: model.JobSpec{Command: command},
	}
	job.Status.State = model.JobScheduled
	job.Status.NodeAddress = addr
	return job
}

func startAgent(t *testing.T, fs *fakeStore, addr string) *Agent {
	t.Helper()
	agent := NewAgent(Config{
		Address:           addr,
		Capacity:          model.Resources{CPU: 4},
		HeartbeatInterval: 50 * time.Millisecond,
	}, fs, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go agent.Run(ctx)
	return agent
}

func TestAgentExecutesBoundShellJob(t *testing.T) {
	fs := newFakeStore()
	startAgent(t, fs, "10.0.0.1")

	fs.events <- store.JobEvent{Type: store.JobPut, Job: scheduledJob("j1", "10.0.0.1", "echo done")}

	job := fs.awaitTerminal(t, "j1")
	require.Equal(t, model.JobSucceeded, job.Status.State)
	require.Equal(t, 0, job.Status.ExitCode)

	out, err := fs.GetJobOutput(context.Background(), "j1")
	require.NoError(t, err)
	require.Equal(t, "done\n", out)
}

func TestAgentReportsFailure(t *testing.T) {
	fs := newFakeStore()
	startAgent(t, fs, "10.0.0.1")

	fs.events <- store.JobEvent{Type: store.JobPut, Job: scheduledJob("j1", "10.0.0.1", "exit 7")}

	job := fs.awaitTerminal(t, "j1")
	require.Equal(t, model.JobFailed, job.Status.State)
	require.Equal(t, 7, job.Status.ExitCode)
	require.NotEmpty(t, job.Status.Error)
}

func TestAgentIgnoresJobsForOtherNodes(t *testing.T) {
	fs := newFakeStore()
	startAgent(t, fs, "10.0.0.1")

	fs.events <- store.JobEvent{Type: store.JobPut, Job: scheduledJob("other", "10.0.0.2", "echo nope")}
	fs.events <- store.JobEvent{Type: store.JobPut, Job: scheduledJob("mine", "10.0.0.1", "true")}

	fs.awaitTerminal(t, "mine")
	fs.mu.Lock()
	other := fs.jobs["other"]
	fs.mu.Unlock()
	require.Nil(t, other, "job bound elsewhere must never be touched")
}

func TestAgentHeartbeatsCapacity(t *testing.T) {
	fs := newFakeStore()
	startAgent(t, fs, "10.0.0.1")

	require.Eventually(t, func() bool {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		return len(fs.nodes) > 0
	}, 2*time.Second, 20*time.Millisecond)

	fs.mu.Lock()
	node := fs.nodes[0]
	fs.mu.Unlock()
	require.Equal(t, "10.0.0.1", node.Address)
	require.Equal(t, 4.0, node.Capacity.CPU)
	require.NotZero(t, node.LastHeartbeat)
}
