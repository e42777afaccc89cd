// Package docker implements the container runtime ports on the Docker
// Engine API.
package docker

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"fleetd"
	"fleetd/internal/discovery"
	"fleetd/internal/orchestrator"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

var (
	_ orchestrator.Runtime = (*Runtime)(nil)
	_ discovery.Runtime    = (*Runtime)(nil)
)

// Runtime implements the container runtime ports using the Docker Engine API.
// Errors from the engine are returned wrapped so errdefs classification
// still applies.
type Runtime struct {
	cli *client.Client
}

// NewRuntime creates a Runtime with a Docker client from the environment.
// A non-empty host overrides DOCKER_HOST.
func NewRuntime(host string) (*Runtime, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Runtime{cli: cli}, nil
}

// NewRuntimeFromClient wraps an existing Docker client.
func NewRuntimeFromClient(cli *client.Client) *Runtime {
	return &Runtime{cli: cli}
}

func (r *Runtime) WaitReady(ctx context.Context) error {
	return WaitReady(ctx, r.cli)
}

func (r *Runtime) Create(ctx context.Context, spec fleetd.ContainerSpec) (fleetd.Container, error) {
	cc := &container.Config{
		Image: spec.Image,
		Cmd:   spec.Cmd,
		Env:   spec.Env,
	}
	resp, err := r.cli.ContainerCreate(ctx, cc, &container.HostConfig{}, nil, nil, spec.Name)
	if err != nil {
		return fleetd.Container{}, fmt.Errorf("create container from %q: %w", spec.Image, err)
	}
	c := fleetd.Container{ID: resp.ID, Name: spec.Name}
	if c.Name == "" {
		// The engine picked the name; read it back so callers can log it.
		if info, err := r.Inspect(ctx, resp.ID); err == nil {
			c.Name = info.Name
		}
	}
	return c, nil
}

func (r *Runtime) List(ctx context.Context, all bool) ([]fleetd.ContainerSummary, error) {
	containers, err := r.cli.ContainerList(ctx, container.ListOptions{All: all})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	out := make([]fleetd.ContainerSummary, 0, len(containers))
	for _, c := range containers {
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}
		out = append(out, fleetd.ContainerSummary{
			Container: fleetd.Container{ID: c.ID, Name: name},
			State:     string(c.State),
		})
	}
	return out, nil
}

func (r *Runtime) Inspect(ctx context.Context, ref string) (fleetd.ContainerInfo, error) {
	resp, err := r.cli.ContainerInspect(ctx, ref)
	if err != nil {
		return fleetd.ContainerInfo{}, fmt.Errorf("inspect container %q: %w", ref, err)
	}

	var info fleetd.ContainerInfo
	if base := resp.ContainerJSONBase; base != nil {
		info.ID = base.ID
		info.Name = strings.TrimPrefix(base.Name, "/")
		if base.State != nil {
			info.Status = string(base.State.Status)
		}
	}
	if ns := resp.NetworkSettings; ns != nil {
		for name := range ns.Networks {
			info.Networks = append(info.Networks, name)
		}
		slices.Sort(info.Networks)
		for _, name := range info.Networks {
			if ep := ns.Networks[name]; ep != nil && ep.IPAddress != "" {
				info.Address = ep.IPAddress
				break
			}
		}
	}
	return info, nil
}

func (r *Runtime) Start(ctx context.Context, ref string) error {
	if err := r.cli.ContainerStart(ctx, ref, container.StartOptions{}); err != nil {
		return fmt.Errorf("start container %q: %w", ref, err)
	}
	return nil
}

func (r *Runtime) Restart(ctx context.Context, ref string) error {
	if err := r.cli.ContainerRestart(ctx, ref, container.StopOptions{}); err != nil {
		return fmt.Errorf("restart container %q: %w", ref, err)
	}
	return nil
}

func (r *Runtime) ConnectNetwork(ctx context.Context, ref, network string) error {
	if err := r.cli.NetworkConnect(ctx, network, ref, nil); err != nil {
		return fmt.Errorf("connect container %q to network %q: %w", ref, network, err)
	}
	return nil
}

func (r *Runtime) Close() error {
	return r.cli.Close()
}
