// Package discovery finds the container that backs a device UUID by asking
// every container's device endpoint which device it is.
//
// There is no durable link between a device and its container, so discovery
// probes the whole fleet linearly. A cold resolution costs one inspect and
// one probe per container; callers cache the result in the registry and
// only come here on a miss.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fleetd"
	"fleetd/internal/check"
	"fleetd/internal/directive"
	"fleetd/internal/metrics"

	"github.com/google/uuid"
)

// ErrNotFound means no container reported the requested device UUID.
var ErrNotFound = errors.New("device not found")

const (
	// defaultProbeTimeout is 2s: device endpoints answer from memory, so a
	// slow probe is a dead probe.
	defaultProbeTimeout = 2 * time.Second
	// defaultCallTimeout bounds the list and per-candidate inspect calls.
	defaultCallTimeout = 10 * time.Second
)

// Resolver implements fleet-wide discovery.
type Resolver struct {
	runtime      Runtime
	prober       Prober
	probeTimeout time.Duration
	callTimeout  time.Duration
	log          *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithProbeTimeout bounds each device probe. A timed-out probe is skipped
// like any other failed probe.
func WithProbeTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.probeTimeout = d
	}
}

// WithCallTimeout bounds each runtime call made during discovery.
func WithCallTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.callTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

func New(rt Runtime, prober Prober, opts ...Option) *Resolver {
	check.Assert(rt != nil, "discovery.New: runtime must not be nil")
	check.Assert(prober != nil, "discovery.New: prober must not be nil")
	r := &Resolver{
		runtime:      rt,
		prober:       prober,
		probeTimeout: defaultProbeTimeout,
		callTimeout:  defaultCallTimeout,
		log:          slog.With("component", "discovery"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the first container, in runtime listing order, whose
// device endpoint reports device. Candidates that cannot be inspected,
// have no reachable name or address, or fail the probe are skipped. It
// returns ErrNotFound when the list is exhausted, and a wrapped runtime
// error when the listing itself fails.
func (r *Resolver) Resolve(ctx context.Context, device uuid.UUID, q directive.Query) (fleetd.Container, error) {
	log := r.log.With("device", device)
	if q.IsZero() {
		log.Debug("No query descriptor, discovery cannot probe.")
		metrics.DiscoveryResolutionsTotal.WithLabelValues("not_found").Inc()
		return fleetd.Container{}, ErrNotFound
	}
	if _, err := q.PortNumber(); err != nil {
		return fleetd.Container{}, err
	}

	candidates, err := r.list(ctx)
	if err != nil {
		metrics.DiscoveryResolutionsTotal.WithLabelValues("error").Inc()
		return fleetd.Container{}, fmt.Errorf("list containers: %w", err)
	}
	log.Debug("Probing containers.", "candidates", len(candidates))

	probed := 0
	defer func() { metrics.DiscoveryCandidates.Observe(float64(probed)) }()

	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			metrics.DiscoveryResolutionsTotal.WithLabelValues("error").Inc()
			return fleetd.Container{}, err
		}

		probed++
		match, err := r.probe(ctx, cand.Container, device, q)
		if err != nil {
			log.Debug("Skipping candidate.", "container", cand.Container, "err", err)
			continue
		}
		if match.IsZero() {
			continue
		}
		log.Info("Resolved device.", "container", match, "probed", probed)
		metrics.DiscoveryResolutionsTotal.WithLabelValues("found").Inc()
		return match, nil
	}

	metrics.DiscoveryResolutionsTotal.WithLabelValues("not_found").Inc()
	return fleetd.Container{}, ErrNotFound
}

func (r *Resolver) list(ctx context.Context) ([]fleetd.ContainerSummary, error) {
	ctx, cancel := withTimeout(ctx, r.callTimeout)
	defer cancel()
	return r.runtime.List(ctx, true)
}

// probe returns the candidate's identity when it reports device, a zero
// Container on a mismatch, and an error when the candidate must be skipped.
func (r *Resolver) probe(ctx context.Context, cand fleetd.Container, device uuid.UUID, q directive.Query) (fleetd.Container, error) {
	inspectCtx, cancel := withTimeout(ctx, r.callTimeout)
	info, err := r.runtime.Inspect(inspectCtx, cand.Ref())
	cancel()
	if err != nil {
		metrics.DiscoveryProbesTotal.WithLabelValues(metrics.ProbeSkipped).Inc()
		return fleetd.Container{}, fmt.Errorf("inspect: %w", err)
	}

	host := info.Host()
	if host == "" {
		metrics.DiscoveryProbesTotal.WithLabelValues(metrics.ProbeSkipped).Inc()
		return fleetd.Container{}, errors.New("no name or network address")
	}
	url, err := q.URL(host, "")
	if err != nil {
		metrics.DiscoveryProbesTotal.WithLabelValues(metrics.ProbeSkipped).Inc()
		return fleetd.Container{}, err
	}

	probeCtx, cancel := withTimeout(ctx, r.probeTimeout)
	defer cancel()
	reported, err := r.prober.DeviceUUID(probeCtx, url)
	if err != nil {
		metrics.DiscoveryProbesTotal.WithLabelValues(metrics.ProbeFailed).Inc()
		return fleetd.Container{}, fmt.Errorf("probe %s: %w", url, err)
	}
	if reported != device {
		metrics.DiscoveryProbesTotal.WithLabelValues(metrics.ProbeMismatch).Inc()
		return fleetd.Container{}, nil
	}
	metrics.DiscoveryProbesTotal.WithLabelValues(metrics.ProbeMatch).Inc()

	id := info.Container
	if id.ID == "" {
		id.ID = cand.ID
	}
	if id.Name == "" {
		id.Name = cand.Name
	}
	return id, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
