package executor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"armada/pkg/model"
)

// ShellExecutor runs a job's command through `sh -c` and captures its
// combined output. A non-zero exit fails the job.
type ShellExecutor struct{}

func (e *ShellExecutor) Run(ctx context.Context, job *model.Job) (string, int, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", job.Spec.Command)
	if len(job.Spec.Env) > 0 {
		cmd.Env = append(cmd.Environ(), job.Spec.Env...)
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), exitErr.ExitCode(), fmt.Errorf("command exited %d: %w", exitErr.ExitCode(), err)
		}
		return string(out), -1, err
	}
	return string(out), 0, nil
}
