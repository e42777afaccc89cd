package orchestrator

import (
	"context"
	"fmt"

	"fleetd"
	"fleetd/internal/directive"
	"fleetd/internal/telemetry"
)

// restart starts a stopped container or restarts a running one. A container
// with no reported status is left alone: guessing could start a device
// process twice or fail to revive a dead one.
func (o *Orchestrator) restart(ctx context.Context, op *telemetry.Operation, d directive.Restart) Outcome {
	r, out := o.locate(ctx, op, d.UUID, d.Query)
	if out != nil {
		return *out
	}
	c := r.container

	switch r.info.RunState() {
	case fleetd.RunStateRunning:
		err := o.step(ctx, op, stepRestart, func(ctx context.Context) error {
			return o.runtime.Restart(ctx, c.Ref())
		})
		if err != nil {
			out := runtimeFault(stepRestart, err)
			out.Container = c
			return out
		}
		return Outcome{Kind: OutcomeSuccess, Container: c, Action: ActionRestarted}

	case fleetd.RunStateStopped:
		err := o.step(ctx, op, stepStart, func(ctx context.Context) error {
			return o.runtime.Start(ctx, c.Ref())
		})
		if err != nil {
			out := runtimeFault(stepStart, err)
			out.Container = c
			return out
		}
		return Outcome{Kind: OutcomeSuccess, Container: c, Action: ActionStarted}

	default:
		return Outcome{
			Kind:      OutcomeAmbiguousState,
			Container: c,
			Err:       fmt.Errorf("container %s reported no status", c),
		}
	}
}
