package discovery

import (
	"context"

	"fleetd"

	"github.com/google/uuid"
)

// Runtime is the container runtime surface discovery needs.
type Runtime interface {
	List(ctx context.Context, all bool) ([]fleetd.ContainerSummary, error)
	Inspect(ctx context.Context, ref string) (fleetd.ContainerInfo, error)
}

// Prober asks a device endpoint which device it is.
type Prober interface {
	DeviceUUID(ctx context.Context, url string) (uuid.UUID, error)
}
