package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"armada/pkg/model"
)

const (
	jobKeyPrefix  = "/armada/jobs/"
	nodeKeyPrefix = "/armada/nodes/"
	logKeyPrefix  = "/armada/logs/"
)

// ErrNotFound is returned by GetJob for an unknown job ID.
var ErrNotFound = errors.New("job not found")

// ErrNoOutput is returned by GetJobOutput when a job produced none.
var ErrNoOutput = errors.New("no output stored for job")

type EtcdManager struct {
	client *clientv3.Client
	log    *zap.Logger
}

func NewEtcdManager(endpoints []string, log *zap.Logger) (*EtcdManager, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("etcd dial: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EtcdManager{client: cli, log: log}, nil
}

func (e *EtcdManager) Close() error {
	return e.client.Close()
}

func (e *EtcdManager) CreateJob(ctx context.Context, job *model.Job) error {
	return e.putValue(ctx, jobKeyPrefix+job.ID, job)
}

func (e *EtcdManager) GetJob(ctx context.Context, id string) (*model.Job, error) {
	resp, err := e.client.Get(ctx, jobKeyPrefix+id)
	if err != nil {
		return nil, err
	}
	if len(resp.Kvs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	var job model.Job
	if err := json.Unmarshal(resp.Kvs[0].Value, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job %s: %w", id, err)
	}
	return &job, nil
}

func (e *EtcdManager) UpdateJob(ctx context.Context, job *model.Job) error {
	return e.putValue(ctx, jobKeyPrefix+job.ID, job)
}

// WatchJobs adapts the etcd watch stream on the job prefix into a
// channel of decoded events. The channel closes when ctx ends.
func (e *EtcdManager) WatchJobs(ctx context.Context) <-chan JobEvent {
	return e.watch(ctx, jobKeyPrefix, clientv3.WithPrefix())
}

func (e *EtcdManager) WatchJob(ctx context.Context, id string) <-chan JobEvent {
	return e.watch(ctx, jobKeyPrefix+id)
}

func (e *EtcdManager) watch(ctx context.Context, key string, opts ...clientv3.OpOption) <-chan JobEvent {
	eventChan := make(chan JobEvent)

	go func() {
		defer close(eventChan)
		watchChan := e.client.Watch(ctx, key, opts...)

		for watchResp := range watchChan {
			for _, ev := range watchResp.Events {
				eventType := JobPut
				if ev.Type == clientv3.EventTypeDelete {
					eventType = JobDelete
				}

				var job model.Job
				if eventType == JobPut {
					if err := json.Unmarshal(ev.Kv.Value, &job); err != nil {
						e.log.Warn("skipping undecodable job event", zap.String("key", string(ev.Kv.Key)), zap.Error(err))
						continue
					}
				}

				select {
				case eventChan <- JobEvent{Type: eventType, Job: &job}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return eventChan
}

func (e *EtcdManager) RegisterNode(ctx context.Context, node *model.Node) error {
	return e.putValue(ctx, nodeKeyPrefix+node.Address, node)
}

func (e *EtcdManager) ListNodes(ctx context.Context) ([]*model.Node, error) {
	resp, err := e.client.Get(ctx, nodeKeyPrefix, clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}

	nodes := make([]*model.Node, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var node model.Node
		if err := json.Unmarshal(kv.Value, &node); err != nil {
			e.log.Warn("skipping undecodable node record", zap.String("key", string(kv.Key)), zap.Error(err))
			continue
		}
		nodes = append(nodes, &node)
	}
	return nodes, nil
}

func (e *EtcdManager) SaveJobOutput(ctx context.Context, jobID, output string) error {
	data := map[string]string{
		"job_id":  jobID,
		"content": output,
	}
	return e.putValue(ctx, logKeyPrefix+jobID, data)
}

func (e *EtcdManager) GetJobOutput(ctx context.Context, jobID string) (string, error) {
	resp, err := e.client.Get(ctx, logKeyPrefix+jobID)
	if err != nil {
		return "", err
	}
	if len(resp.Kvs) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoOutput, jobID)
	}

	var data map[string]string
	if err := json.Unmarshal(resp.Kvs[0].Value, &data); err != nil {
		return "", fmt.Errorf("unmarshal output for %s: %w", jobID, err)
	}
	return data["content"], nil
}

// putValue is the shared JSON-marshal-then-Put path.
func (e *EtcdManager) putValue(ctx context.Context, key string, val interface{}) error {
	bytes, err := json.Marshal(val)
	if err != nil {
		return err
	}
	_, err = e.client.Put(ctx, key, string(bytes))
	return err
}
