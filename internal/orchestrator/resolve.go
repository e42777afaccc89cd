package orchestrator

import (
	"context"
	"errors"

	"fleetd"
	"fleetd/internal/directive"
	"fleetd/internal/discovery"
	"fleetd/internal/metrics"
	"fleetd/internal/telemetry"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"
)

// resolved is a container located for a device, along with the inspect
// result used to decide what to do with it.
type resolved struct {
	container fleetd.Container
	info      fleetd.ContainerInfo
}

// locate resolves device to a container and inspects it.
//
// A registry hit skips discovery. On a miss discovery runs and its result
// is recorded; a failed discovery leaves the registry unchanged. When a
// registry hit points at a container the runtime no longer has, the entry
// is stale: discovery runs once more and overwrites it.
func (o *Orchestrator) locate(ctx context.Context, op *telemetry.Operation, device uuid.UUID, q directive.Query) (resolved, *Outcome) {
	c, cached := o.registry.Lookup(device)
	if cached {
		metrics.RegistryLookupsTotal.WithLabelValues("hit").Inc()
	} else {
		metrics.RegistryLookupsTotal.WithLabelValues("miss").Inc()
		var out *Outcome
		if c, out = o.discover(ctx, op, device, q); out != nil {
			return resolved{}, out
		}
	}

	info, err := o.inspect(ctx, op, c)
	if err != nil && cached && errdefs.IsNotFound(err) && !q.IsZero() {
		o.log.Info("Registry entry is stale, rediscovering.", "device", device, "container", c)
		var out *Outcome
		if c, out = o.discover(ctx, op, device, q); out != nil {
			return resolved{}, out
		}
		info, err = o.inspect(ctx, op, c)
	}
	if err != nil {
		out := runtimeFault(stepInspect, err)
		out.Container = c
		return resolved{}, &out
	}
	return resolved{container: c, info: info}, nil
}

func (o *Orchestrator) discover(ctx context.Context, op *telemetry.Operation, device uuid.UUID, q directive.Query) (fleetd.Container, *Outcome) {
	var c fleetd.Container
	err := op.RunStep(ctx, stepResolve, func(ctx context.Context) error {
		var err error
		c, err = o.resolver.Resolve(ctx, device, q)
		return err
	})
	if err != nil {
		var verr *directive.ValidationError
		switch {
		case errors.Is(err, discovery.ErrNotFound):
			return fleetd.Container{}, &Outcome{Kind: OutcomeNotFound, Err: err}
		case errors.As(err, &verr):
			return fleetd.Container{}, &Outcome{Kind: OutcomeInvalidInput, Err: err}
		default:
			out := runtimeFault("list", err)
			return fleetd.Container{}, &out
		}
	}
	o.registry.Record(device, c)
	return c, nil
}

func (o *Orchestrator) inspect(ctx context.Context, op *telemetry.Operation, c fleetd.Container) (fleetd.ContainerInfo, error) {
	var info fleetd.ContainerInfo
	err := o.step(ctx, op, stepInspect, func(ctx context.Context) error {
		var err error
		info, err = o.runtime.Inspect(ctx, c.Ref())
		return err
	})
	return info, err
}
