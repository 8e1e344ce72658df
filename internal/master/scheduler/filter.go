package scheduler

import (
	"time"

	"go.uber.org/zap"

	"armada/pkg/model"
)

// filterNodes returns the nodes job may legally run on.
func (s *Scheduler) filterNodes(job *model.Job, nodes []*model.Node) []*model.Node {
	now := time.Now()
	candidates := make([]*model.Node, 0, len(nodes))

	for _, node := range nodes {
		if s.checkNode(job, node, now) {
			candidates = append(candidates, node)
		}
	}
	return candidates
}

func (s *Scheduler) checkNode(job *model.Job, node *model.Node, now time.Time) bool {
	if !node.Alive(now, s.ttl) {
		return false
	}

	// A targeted job matches on address alone. Pinned broadcast work is
	// lightweight by contract and must not lose its slot to resource
	// accounting on a busy node.
	if target := job.Placement.TargetAddress; target != "" {
		return node.Address == target
	}

	if !job.ResReq.Fits(node.Free()) {
		s.log.Debug("node filtered: insufficient resources",
			zap.String("job", job.ID),
			zap.String("node", node.Address),
			zap.Float64("free_cpu", node.Free().CPU),
			zap.Float64("need_cpu", job.ResReq.CPU))
		return false
	}
	return true
}
