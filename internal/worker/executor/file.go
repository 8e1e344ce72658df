package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"armada/pkg/model"
)

// FileExecutor materializes a distributed file on the local disk:
// parent directories are created as needed and an existing file at the
// destination is overwritten.
type FileExecutor struct{}

func (e *FileExecutor) Run(_ context.Context, job *model.Job) (string, int, error) {
	path := job.Spec.Path
	if !filepath.IsAbs(path) {
		return "", -1, fmt.Errorf("file job path must be absolute, got %q", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", -1, fmt.Errorf("create parent dirs for %s: %w", path, err)
	}
	if err := os.WriteFile(path, job.Spec.Payload, 0o644); err != nil {
		return "", -1, fmt.Errorf("write %s: %w", path, err)
	}
	return "", 0, nil
}
