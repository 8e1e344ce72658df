// Package worker runs the node-side agent: heartbeat the node record,
// watch for jobs bound to this node, execute them, report results.
package worker

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"armada/internal/worker/executor"
	"armada/pkg/model"
	"armada/pkg/store"
)

type Config struct {
	Address           string // advertised node address
	Capacity          model.Resources
	HeartbeatInterval time.Duration
}

type Agent struct {
	cfg      Config
	hostname string
	store    store.Store
	execs    *executor.Registry
	log      *zap.Logger

	mu      sync.Mutex
	running map[string]model.Resources // jobID -> reserved resources
}

func NewAgent(cfg Config, s store.Store, log *zap.Logger) *Agent {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 3 * time.Second
	}
	hostname, _ := os.Hostname()

	return &Agent{
		cfg:      cfg,
		hostname: hostname,
		store:    s,
		execs:    executor.NewRegistry(log),
		log:      log,
		running:  map[string]model.Resources{},
	}
}

// Run heartbeats and serves jobs until ctx is cancelled.
func (a *Agent) Run(ctx context.Context) {
	go a.heartbeatLoop(ctx)

	a.log.Info("agent started", zap.String("address", a.cfg.Address))
	a.watchJobs(ctx)
}

func (a *Agent) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.HeartbeatInterval)
	defer ticker.Stop()

	a.register(ctx)
	for {
		select {
		case <-ticker.C:
			a.register(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *Agent) register(ctx context.Context) {
	node := &model.Node{
		Address:       a.cfg.Address,
		Hostname:      a.hostname,
		Version:       "v1.0",
		Capacity:      a.cfg.Capacity,
		Allocated:     a.allocated(),
		LastHeartbeat: time.Now().Unix(),
	}
	if err := a.store.RegisterNode(ctx, node); err != nil {
		a.log.Warn("heartbeat failed", zap.Error(err))
	}
}

func (a *Agent) allocated() model.Resources {
	a.mu.Lock()
	defer a.mu.Unlock()
	var total model.Resources
	for _, res := range a.running {
		total = total.Add(res)
	}
	return total
}

func (a *Agent) watchJobs(ctx context.Context) {
	events := a.store.WatchJobs(ctx)

	for event := range events {
		job := event.Job
		if event.Type != store.JobPut {
			continue
		}
		if job.Status.NodeAddress != a.cfg.Address || job.Status.State != model.JobScheduled {
			continue
		}
		a.log.Info("job received", zap.String("job", job.ID), zap.String("type", string(job.Type)))
		go a.executeJob(ctx, job)
	}
}

func (a *Agent) executeJob(ctx context.Context, job *model.Job) {
	a.mu.Lock()
	a.running[job.ID] = job.ResReq
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		delete(a.running, job.ID)
		a.mu.Unlock()
	}()

	job.Status.State = model.JobRunning
	if err := a.store.UpdateJob(ctx, job); err != nil {
		a.log.Warn("mark running failed", zap.String("job", job.ID), zap.Error(err))
	}

	output, exitCode, err := a.execs.Run(ctx, job)

	// Output is saved before the terminal status so a waiter observing
	// the terminal state always finds the output already stored.
	if output != "" {
		if err := a.store.SaveJobOutput(ctx, job.ID, output); err != nil {
			a.log.Warn("save output failed", zap.String("job", job.ID), zap.Error(err))
		}
	}

	job.Status.ExitCode = exitCode
	if err != nil {
		job.Status.State = model.JobFailed
		job.Status.Error = err.Error()
		a.log.Warn("job failed", zap.String("job", job.ID), zap.Int("exit", exitCode), zap.Error(err))
	} else {
		job.Status.State = model.JobSucceeded
		a.log.Info("job finished", zap.String("job", job.ID))
	}
	job.Status.EndTime = time.Now()

	if err := a.store.UpdateJob(ctx, job); err != nil {
		a.log.Error("report job status failed", zap.String("job", job.ID), zap.Error(err))
	}
}
