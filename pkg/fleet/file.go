package fleet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"armada/pkg/model"
)

// DistributeFile reads the file at localPath fully into memory and
// writes it to the same absolute path on every other live node,
// creating parent directories as needed and overwriting any existing
// file. The coordinator is excluded; it already has the file. A local
// read error is fatal before anything is broadcast, and any remote
// write failure surfaces through AwaitAll's fail-fast rule.
func (f *Fleet) DistributeFile(ctx context.Context, localPath string) error {
	abs, err := filepath.Abs(localPath)
	if err != nil {
		return err
	}

	payload, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("read %s: %w", abs, err)
	}

	job := &model.Job{
		Name: "push:" + filepath.Base(abs),
		Type: model.JobFile,
		Spec: model.JobSpec{Path: abs, Payload: payload},
	}

	handles, err := f.Broadcast(ctx, job, true)
	if err != nil {
		return err
	}

	f.log.Info("distributing file",
		zap.String("path", abs),
		zap.Int("bytes", len(payload)),
		zap.Int("targets", len(handles)))

	_, err = AwaitAll(ctx, handles)
	return err
}
