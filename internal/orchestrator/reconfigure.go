package orchestrator

import (
	"context"
	"fmt"
	"net/http"

	"fleetd/internal/directive"
	"fleetd/internal/telemetry"
)

// reconfigure forwards the directive payload to the device without touching
// its run state. The device's status code is reported as is; the payload is
// never interpreted.
func (o *Orchestrator) reconfigure(ctx context.Context, op *telemetry.Operation, d directive.Reconfigure) Outcome {
	r, out := o.locate(ctx, op, d.UUID, d.Query)
	if out != nil {
		return *out
	}
	c := r.container

	host := r.info.Host()
	if host == "" {
		return Outcome{
			Kind:      OutcomeForwardFault,
			Container: c,
			Err:       fmt.Errorf("container %s has no name or network address", c),
		}
	}
	url, err := d.Query.URL(host, d.PushPath())
	if err != nil {
		return Outcome{Kind: OutcomeInvalidInput, Container: c, Err: err}
	}

	var status int
	err = o.step(ctx, op, stepPush, func(ctx context.Context) error {
		var err error
		status, err = o.pusher.Push(ctx, http.MethodPut, url, d.Payload)
		return err
	})
	if err != nil {
		return Outcome{
			Kind:      OutcomeForwardFault,
			Container: c,
			Err:       fmt.Errorf("push %s: %w", url, err),
		}
	}
	return Outcome{Kind: OutcomeSuccess, Container: c, Action: ActionReconfigured, RemoteStatus: status}
}
