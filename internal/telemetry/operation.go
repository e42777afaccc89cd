// Package telemetry traces directive pipelines: one root span per directive
// and one child span per step.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	PlanEventName = "fleetd.plan"
	PlanStepsKey  = "fleetd.plan.steps"
	DirectiveKey  = "fleetd.directive"
	DeviceKey     = "fleetd.device"
	ContainerKey  = "fleetd.container"
)

// Operation is a traced directive execution. A nil Operation runs steps
// untraced.
type Operation struct {
	ctx    context.Context
	tracer trace.Tracer
	span   trace.Span
}

// Begin starts the root span for a directive and records its planned steps
// as an event, so a trace shows which steps never ran after a failure.
func Begin(ctx context.Context, tracer trace.Tracer, directive, device string, steps []string) (*Operation, error) {
	if tracer == nil {
		return nil, fmt.Errorf("begin operation: tracer is required")
	}
	if err := validateSteps(steps); err != nil {
		return nil, fmt.Errorf("begin operation: %w", err)
	}

	planJSON, err := json.Marshal(steps)
	if err != nil {
		return nil, fmt.Errorf("begin operation: marshal steps: %w", err)
	}

	spanCtx, span := tracer.Start(ctx, "directive."+directive, trace.WithAttributes(
		attribute.String(DirectiveKey, directive),
		attribute.String(DeviceKey, device),
	))
	span.AddEvent(PlanEventName, trace.WithAttributes(
		attribute.String(PlanStepsKey, string(planJSON)),
	))
	return &Operation{ctx: spanCtx, tracer: tracer, span: span}, nil
}

func (o *Operation) Context() context.Context {
	if o == nil {
		return context.Background()
	}
	return o.ctx
}

// RunStep runs fn inside a child span named id. The span records fn's error.
func (o *Operation) RunStep(ctx context.Context, id string, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	stepID := strings.TrimSpace(id)
	if stepID == "" {
		return fmt.Errorf("run step: step id is required")
	}
	if o == nil || o.tracer == nil {
		return fn(ctx)
	}
	if ctx == nil {
		ctx = o.ctx
	}

	stepCtx, span := o.tracer.Start(ctx, stepID)
	defer span.End()

	if err := fn(stepCtx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, strings.TrimSpace(err.Error()))
		return err
	}
	return nil
}

// SetContainer tags the root span with the container the directive acts on.
func (o *Operation) SetContainer(ref string) {
	if o == nil || o.span == nil {
		return
	}
	o.span.SetAttributes(attribute.String(ContainerKey, ref))
}

// End closes the root span with outcome as its final attribute.
func (o *Operation) End(outcome string, err error) {
	if o == nil || o.span == nil {
		return
	}
	o.span.SetAttributes(attribute.String("fleetd.outcome", outcome))
	if err != nil {
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, strings.TrimSpace(err.Error()))
	}
	o.span.End()
}

func validateSteps(steps []string) error {
	seen := make(map[string]struct{}, len(steps))
	for i, step := range steps {
		id := strings.TrimSpace(step)
		if id == "" {
			return fmt.Errorf("step %d has empty id", i)
		}
		if _, exists := seen[id]; exists {
			return fmt.Errorf("duplicate step id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
