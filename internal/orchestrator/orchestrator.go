// Package orchestrator executes directives against the container runtime.
//
// Execute is the single dispatch point. Each directive variant has its own
// pipeline; steps within a pipeline run strictly in order and the first
// failing step ends the directive. Nothing is retried and nothing is rolled
// back: a container created by a failed Addition stays as it was left.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fleetd/internal/check"
	"fleetd/internal/directive"
	"fleetd/internal/metrics"
	"fleetd/internal/registry"
	"fleetd/internal/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// defaultCallTimeout bounds each runtime call and reconfiguration push.
const defaultCallTimeout = 10 * time.Second

// Orchestrator runs directives. It is safe for concurrent use; the registry
// is the only state shared between directives.
type Orchestrator struct {
	runtime     Runtime
	registry    *registry.Registry
	resolver    Resolver
	pusher      Pusher
	tracer      trace.Tracer
	callTimeout time.Duration
	log         *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCallTimeout bounds every runtime call and push. Zero disables the
// per-call bound; the caller context still applies.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.callTimeout = d
	}
}

// WithTracer sets the tracer for directive spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = t
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

func New(rt Runtime, reg *registry.Registry, resolver Resolver, pusher Pusher, opts ...Option) *Orchestrator {
	check.Assert(rt != nil, "orchestrator.New: runtime must not be nil")
	check.Assert(reg != nil, "orchestrator.New: registry must not be nil")
	check.Assert(resolver != nil, "orchestrator.New: resolver must not be nil")
	check.Assert(pusher != nil, "orchestrator.New: pusher must not be nil")
	o := &Orchestrator{
		runtime:     rt,
		registry:    reg,
		resolver:    resolver,
		pusher:      pusher,
		callTimeout: defaultCallTimeout,
		log:         slog.With("component", "orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer("fleetd/orchestrator")
	}
	return o
}

// Execute validates d and runs its pipeline. It never panics on collaborator
// failures; every failure comes back as a typed Outcome.
func (o *Orchestrator) Execute(ctx context.Context, d directive.Directive) Outcome {
	if d == nil {
		return Outcome{Kind: OutcomeInternal, Err: errors.New("nil directive")}
	}
	start := time.Now()
	kind := d.Kind()
	log := o.log.With("directive", kind, "device", d.Device())

	if err := d.Validate(); err != nil {
		out := Outcome{Kind: OutcomeInvalidInput, Directive: kind, Device: d.Device(), Err: err}
		o.observe(log, out, start)
		return out
	}

	op, err := telemetry.Begin(ctx, o.tracer, string(kind), d.Device().String(), plannedSteps(d))
	if err != nil {
		out := Outcome{Kind: OutcomeInternal, Directive: kind, Device: d.Device(), Err: err}
		o.observe(log, out, start)
		return out
	}
	ctx = op.Context()

	var out Outcome
	switch d := d.(type) {
	case directive.Addition:
		out = o.add(ctx, op, d)
	case directive.Restart:
		out = o.restart(ctx, op, d)
	case directive.Reconfigure:
		out = o.reconfigure(ctx, op, d)
	default:
		out = Outcome{Kind: OutcomeInternal, Err: fmt.Errorf("unsupported directive %T", d)}
	}
	out.Directive = kind
	out.Device = d.Device()

	if !out.Container.IsZero() {
		op.SetContainer(out.Container.Ref())
	}
	op.End(out.Kind.String(), out.Err)
	o.observe(log, out, start)
	return out
}

func (o *Orchestrator) observe(log *slog.Logger, out Outcome, start time.Time) {
	elapsed := time.Since(start)
	metrics.DirectivesTotal.WithLabelValues(string(out.Directive), out.Kind.String()).Inc()
	metrics.DirectiveDurationSeconds.WithLabelValues(string(out.Directive)).Observe(elapsed.Seconds())

	attrs := []any{"outcome", out.Kind.String(), "elapsed", elapsed}
	if !out.Container.IsZero() {
		attrs = append(attrs, "container", out.Container)
	}
	switch out.Kind {
	case OutcomeSuccess:
		if out.Action != "" {
			attrs = append(attrs, "action", out.Action)
		}
		if out.RemoteStatus != 0 {
			attrs = append(attrs, "remote_status", out.RemoteStatus)
		}
		log.Info("Directive completed.", attrs...)
	case OutcomeInvalidInput, OutcomeNotFound, OutcomeAmbiguousState:
		log.Warn("Directive rejected.", append(attrs, "err", out.Err)...)
	default:
		log.Error("Directive failed.", append(attrs, "err", out.Err)...)
	}
}

// step runs fn as a traced step bounded by the call timeout.
func (o *Orchestrator) step(ctx context.Context, op *telemetry.Operation, id string, fn func(context.Context) error) error {
	return op.RunStep(ctx, id, func(ctx context.Context) error {
		if o.callTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, o.callTimeout)
			defer cancel()
		}
		return fn(ctx)
	})
}

func runtimeFault(op string, err error) Outcome {
	return Outcome{Kind: OutcomeRuntimeFault, Err: newFault(op, err)}
}

func plannedSteps(d directive.Directive) []string {
	switch d.(type) {
	case directive.Addition:
		return []string{stepCreate, stepConnect, stepStart}
	case directive.Restart:
		return []string{stepResolve, stepInspect, stepStart, stepRestart}
	case directive.Reconfigure:
		return []string{stepResolve, stepInspect, stepPush}
	default:
		return nil
	}
}

const (
	stepCreate  = "create"
	stepConnect = "connect"
	stepStart   = "start"
	stepRestart = "restart"
	stepResolve = "resolve"
	stepInspect = "inspect"
	stepPush    = "push"
)
