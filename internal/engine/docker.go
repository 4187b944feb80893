package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
	"github.com/rs/zerolog/log"
)

const (
	// containerName names the single benchmark engine container; reusing
	// a fixed name makes stale containers easy to find and replace.
	containerName = "hle-engine"

	// enginePort is the port the engine listens on inside the container,
	// published to the same host port.
	enginePort = "8000/tcp"

	// hfCacheDir is where the engine expects its model cache inside the
	// container; the host download dir is mounted there.
	hfCacheDir = "/root/.cache/huggingface"

	// stopTimeoutSeconds is how long a container gets to shut down
	// before being killed.
	stopTimeoutSeconds = 60
)

// DockerEngine runs the inference engine inside a Docker container.
//
// This is the containerized counterpart of Launch: the same engine command
// line, executed in an image that bundles the engine and its accelerator
// stack instead of relying on a host install.
type DockerEngine struct {
	cli   *client.Client
	image string
}

// NewDockerEngine creates a Docker-backed engine launcher.
//
// The Docker client is configured from the environment (DOCKER_HOST etc.)
// with API version negotiation, and daemon connectivity is verified before
// returning.
func NewDockerEngine(image string) (*DockerEngine, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := cli.Ping(ctx); err != nil {
		return nil, fmt.Errorf("Docker daemon is not accessible: %w", err)
	}

	return &DockerEngine{cli: cli, image: image}, nil
}

// Close releases the Docker client.
func (d *DockerEngine) Close() error {
	return d.cli.Close()
}

// Launch creates and starts the engine container, then streams its logs
// to stdout until the container stops or ctx is cancelled.
//
// A previous benchmark container with the same name is removed first so a
// re-run always starts from the requested parameters. On cancellation the
// container is stopped and removed.
func (d *DockerEngine) Launch(ctx context.Context, params ServeParams) error {
	if err := d.removeStale(ctx); err != nil {
		return err
	}

	containerPort := nat.Port(enginePort)

	cfg := &container.Config{
		Image: d.image,
		Cmd:   params.CommandLine(),
		ExposedPorts: nat.PortSet{
			containerPort: struct{}{},
		},
		Labels: map[string]string{
			"hle.component": "engine",
			"hle.model":     params.Model,
		},
	}

	hostCfg := &container.HostConfig{
		PortBindings: nat.PortMap{
			containerPort: []nat.PortBinding{
				{HostIP: "0.0.0.0", HostPort: "8000"},
			},
		},
		Mounts: []mount.Mount{
			{
				Type:   mount.TypeBind,
				Source: params.DownloadDir,
				Target: hfCacheDir,
			},
		},
		NetworkMode: "bridge",
		IpcMode:     "host",
		Init:        boolPtr(true),
	}

	resp, err := d.cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, containerName)
	if err != nil {
		return fmt.Errorf("failed to create engine container: %w", err)
	}

	log.Info().Str("container", resp.ID[:12]).Str("image", d.image).Msg("Engine container created")

	if err := d.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start engine container: %w", err)
	}

	defer func() {
		// Cleanup runs with a fresh context because ctx is usually
		// already cancelled when we get here.
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		d.stopAndRemove(cleanupCtx, resp.ID)
	}()

	return d.streamLogs(ctx, resp.ID)
}

// streamLogs follows the container log stream, demultiplexing stdout and
// stderr onto the process's own streams.
func (d *DockerEngine) streamLogs(ctx context.Context, containerID string) error {
	reader, err := d.cli.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
		Tail:       "all",
	})
	if err != nil {
		return fmt.Errorf("failed to get container logs: %w", err)
	}
	defer reader.Close()

	if _, err := stdcopy.StdCopy(os.Stdout, os.Stderr, reader); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != io.EOF {
			return fmt.Errorf("error reading container logs: %w", err)
		}
	}
	return nil
}

// removeStale removes any leftover engine container from a previous run.
func (d *DockerEngine) removeStale(ctx context.Context) error {
	containers, err := d.cli.ContainerList(ctx, container.ListOptions{
		All: true,
		Filters: filters.NewArgs(
			filters.Arg("label", "hle.component=engine"),
			filters.Arg("name", containerName),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}

	for _, c := range containers {
		log.Info().Str("container", c.ID[:12]).Msg("Removing stale engine container")
		d.stopAndRemove(ctx, c.ID)
	}
	return nil
}

// stopAndRemove stops and removes a container, logging failures as
// warnings since cleanup is best effort.
func (d *DockerEngine) stopAndRemove(ctx context.Context, containerID string) {
	timeout := stopTimeoutSeconds
	if err := d.cli.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout}); err != nil {
		log.Warn().Err(err).Str("container", containerID[:12]).Msg("Failed to stop engine container")
	}
	if err := d.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true}); err != nil {
		log.Warn().Err(err).Str("container", containerID[:12]).Msg("Failed to remove engine container")
	}
}

func boolPtr(b bool) *bool {
	return &b
}
