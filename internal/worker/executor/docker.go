package executor

import (
	"bytes"
	"context"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"go.uber.org/zap"

	"armada/pkg/model"
)

const defaultImage = "alpine:latest"

// DockerExecutor runs a job's command inside a throwaway container.
type DockerExecutor struct {
	cli *client.Client
	log *zap.Logger
}

func NewDockerExecutor(log *zap.Logger) (*DockerExecutor, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithVersion("1.44"))
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DockerExecutor{cli: cli, log: log}, nil
}

func (e *DockerExecutor) Run(ctx context.Context, job *model.Job) (string, int, error) {
	image := job.Spec.Image
	if image == "" {
		image = defaultImage
	}

	resp, err := e.cli.ContainerCreate(ctx, &container.Config{
		Image: image,
		Cmd:   []string{"sh", "-c", job.Spec.Command},
		Env:   job.Spec.Env,
		Tty:   false,
	}, nil, nil, nil, "")
	if err != nil {
		return "", -1, fmt.Errorf("create container: %w", err)
	}
	containerID := resp.ID

	if err := e.cli.ContainerStart(ctx, containerID, types.ContainerStartOptions{}); err != nil {
		return "", -1, fmt.Errorf("start container: %w", err)
	}
	e.log.Debug("container started", zap.String("job", job.ID), zap.String("container", containerID[:12]))

	exitCode := 0
	statusCh, errCh := e.cli.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return "", -1, fmt.Errorf("wait for container: %w", err)
		}
	case status := <-statusCh:
		exitCode = int(status.StatusCode)
	}

	outReader, err := e.cli.ContainerLogs(ctx, containerID, types.ContainerLogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", exitCode, fmt.Errorf("container logs: %w", err)
	}
	defer outReader.Close()

	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, outReader); err != nil {
		return "", exitCode, err
	}

	e.cli.ContainerRemove(ctx, containerID, types.ContainerRemoveOptions{})

	if exitCode != 0 {
		return buf.String(), exitCode, fmt.Errorf("container exited %d", exitCode)
	}
	return buf.String(), 0, nil
}
