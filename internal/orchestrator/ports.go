package orchestrator

import (
	"context"

	"fleetd"
	"fleetd/internal/directive"

	"github.com/google/uuid"
)

// Runtime is the container engine. In production this is Docker; in tests
// it is fake.ContainerRuntime. Refs are container IDs or names.
type Runtime interface {
	Create(ctx context.Context, spec fleetd.ContainerSpec) (fleetd.Container, error)
	List(ctx context.Context, all bool) ([]fleetd.ContainerSummary, error)
	Inspect(ctx context.Context, ref string) (fleetd.ContainerInfo, error)
	Start(ctx context.Context, ref string) error
	Restart(ctx context.Context, ref string) error
	ConnectNetwork(ctx context.Context, ref, network string) error
}

// Resolver finds the container backing a device when the registry misses.
// It returns discovery.ErrNotFound when no container reports the device.
type Resolver interface {
	Resolve(ctx context.Context, device uuid.UUID, q directive.Query) (fleetd.Container, error)
}

// Pusher forwards a reconfiguration request to a device and returns the
// device's status code.
type Pusher interface {
	Push(ctx context.Context, method, url string, payload []byte) (int, error)
}
