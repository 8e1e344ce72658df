package scheduler

import "armada/pkg/model"

// scoreNodes picks the highest-scoring candidate (greedy).
func (s *Scheduler) scoreNodes(job *model.Job, nodes []*model.Node) *model.Node {
	var best *model.Node
	maxScore := -1

	for _, node := range nodes {
		score := s.calculateScore(job, node)
		if score > maxScore {
			maxScore = score
			best = node
		}
	}
	return best
}

// calculateScore rates a node for the job on a 0-20 scale.
// Strategy is bin-packing: the fuller the node would be after
// placement, the higher the score, keeping large contiguous capacity
// free for future big requests.
func (s *Scheduler) calculateScore(job *model.Job, node *model.Node) int {
	newCPU := node.Allocated.CPU + job.ResReq.CPU
	newGPU := node.Allocated.GPU + job.ResReq.GPU

	cpuScore := 0
	if node.Capacity.CPU > 0 {
		cpuScore = int(newCPU / node.Capacity.CPU * 10)
	}

	gpuScore := 0
	if node.Capacity.GPU > 0 {
		gpuScore = int(newGPU / node.Capacity.GPU * 10)
	}

	return cpuScore + gpuScore
}
