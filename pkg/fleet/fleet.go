// Package fleet is the broadcast layer: pin a job to one node, fan a
// job out to every live node, and gather the results.
package fleet

import (
	"context"

	"go.uber.org/zap"

	"armada/pkg/model"
	"armada/pkg/runtime"
)

// Directory answers the two membership questions the fleet layer asks.
// cluster.Directory satisfies it.
type Directory interface {
	ListLive(ctx context.Context) ([]*model.Node, error)
	SelfAddress() (string, error)
}

type Fleet struct {
	dir Directory
	rt  runtime.Runtime
	log *zap.Logger
}

func New(dir Directory, rt runtime.Runtime, log *zap.Logger) *Fleet {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fleet{dir: dir, rt: rt, log: log}
}

// PlaceOn submits job pinned to the node at address and returns the
// pending handle. Submission is non-blocking; liveness is not
// re-checked here, so a node that died since the directory listing
// fails at the runtime's discretion, surfacing at aggregation time.
func (f *Fleet) PlaceOn(ctx context.Context, address string, job *model.Job) (runtime.Handle, error) {
	j := job.Clone()
	j.Placement = model.Placement{TargetAddress: address}
	return f.rt.Submit(ctx, j)
}

// Broadcast submits an independent copy of job to every live node and
// returns the handles in directory order. With excludeSelf the
// coordinator's own node is skipped. An empty cluster (or a single-node
// cluster excluding self) yields no handles and no error.
func (f *Fleet) Broadcast(ctx context.Context, job *model.Job, excludeSelf bool) ([]runtime.Handle, error) {
	self, err := f.dir.SelfAddress()
	if err != nil {
		return nil, err
	}

	nodes, err := f.dir.ListLive(ctx)
	if err != nil {
		return nil, err
	}

	handles := make([]runtime.Handle, 0, len(nodes))
	for _, node := range nodes {
		if excludeSelf && node.Address == self {
			continue
		}
		h, err := f.PlaceOn(ctx, node.Address, job)
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}

	f.log.Debug("broadcast issued",
		zap.String("job", job.Name),
		zap.Int("targets", len(handles)),
		zap.Bool("exclude_self", excludeSelf))
	return handles, nil
}
