package orchestrator

import (
	"context"

	"fleetd"
	"fleetd/internal/directive"
	"fleetd/internal/telemetry"
)

// add runs create → record → connect → start. The device is recorded as
// soon as the runtime returns an identity, so a later failure still leaves
// the registry pointing at the partially set up container.
func (o *Orchestrator) add(ctx context.Context, op *telemetry.Operation, d directive.Addition) Outcome {
	spec := fleetd.ContainerSpec{
		Name:  d.Name,
		Image: d.Image,
		Cmd:   d.Args,
		Env:   d.EnvList(),
	}

	var c fleetd.Container
	err := o.step(ctx, op, stepCreate, func(ctx context.Context) error {
		var err error
		c, err = o.runtime.Create(ctx, spec)
		return err
	})
	if err != nil {
		return runtimeFault(stepCreate, err)
	}
	o.registry.Record(d.UUID, c)

	err = o.step(ctx, op, stepConnect, func(ctx context.Context) error {
		return o.runtime.ConnectNetwork(ctx, c.Ref(), d.Network)
	})
	if err != nil {
		out := runtimeFault(stepConnect, err)
		out.Container = c
		return out
	}

	err = o.step(ctx, op, stepStart, func(ctx context.Context) error {
		return o.runtime.Start(ctx, c.Ref())
	})
	if err != nil {
		out := runtimeFault(stepStart, err)
		out.Container = c
		return out
	}

	return Outcome{Kind: OutcomeSuccess, Container: c, Action: ActionCreated}
}
