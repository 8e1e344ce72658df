// Package scheduler binds pending jobs to nodes: targeted jobs go to
// exactly their target, untargeted ones to the best-scoring node with
// room for them.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"armada/pkg/model"
	"armada/pkg/store"
)

type Scheduler struct {
	store store.Store
	ttl   time.Duration // heartbeat age beyond which a node is dead
	log   *zap.Logger
}

func New(s store.Store, heartbeatTTL time.Duration, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{store: s, ttl: heartbeatTTL, log: log}
}

// Run watches for job changes and places every Pending job it sees.
// Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	events := s.store.WatchJobs(ctx)
	s.log.Info("scheduler started")

	for {
		select {
		case event, ok := <-events:
			if !ok {
				s.log.Info("scheduler stopped: watch closed")
				return
			}
			if event.Type != store.JobPut || event.Job.Status.State != model.JobPending {
				continue
			}
			// Placement per job in its own goroutine so a slow node
			// listing never stalls the watch loop.
			go s.scheduleOne(ctx, event.Job)
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		}
	}
}

func (s *Scheduler) scheduleOne(ctx context.Context, job *model.Job) {
	nodes, err := s.store.ListNodes(ctx)
	if err != nil {
		s.log.Error("list nodes failed", zap.String("job", job.ID), zap.Error(err))
		return
	}

	candidates := s.filterNodes(job, nodes)
	if len(candidates) == 0 {
		// Stays Pending; re-evaluated on the job's next store event.
		s.log.Warn("no suitable node",
			zap.String("job", job.ID),
			zap.String("target", job.Placement.TargetAddress))
		return
	}

	best := s.scoreNodes(job, candidates)

	if err := s.bind(ctx, job, best.Address); err != nil {
		s.log.Error("bind failed", zap.String("job", job.ID), zap.String("node", best.Address), zap.Error(err))
		return
	}
	s.log.Info("job scheduled", zap.String("job", job.ID), zap.String("node", best.Address))
}

func (s *Scheduler) bind(ctx context.Context, job *model.Job, address string) error {
	job.Status.State = model.JobScheduled
	job.Status.NodeAddress = address
	job.Status.StartTime = time.Now()
	return s.store.UpdateJob(ctx, job)
}
