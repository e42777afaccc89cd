// Package metrics holds the Prometheus collectors fleetd exports on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Directive metrics
var (
	DirectivesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetd_directives_total",
			Help: "Total number of directives executed",
		},
		[]string{"kind", "outcome"}, // addition|restart|reconfigure; success, not_found, ...
	)

	DirectiveDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleetd_directive_duration_seconds",
			Help:    "Duration of directive execution in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)
)

// Registry and discovery metrics
var (
	RegistryLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetd_registry_lookups_total",
			Help: "Total number of identity registry lookups",
		},
		[]string{"result"}, // hit, miss
	)

	DiscoveryResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetd_discovery_resolutions_total",
			Help: "Total number of discovery resolutions",
		},
		[]string{"result"}, // found, not_found, error
	)

	// DiscoveryCandidates observes how many candidates one resolution probed.
	// Cold resolution is linear in fleet size, so this tracks the cost.
	DiscoveryCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleetd_discovery_candidates",
			Help:    "Number of containers probed per discovery resolution",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	DiscoveryProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetd_discovery_probes_total",
			Help: "Total number of device identity probes",
		},
		[]string{"result"}, // match, mismatch, failed, skipped
	)
)

const (
	ProbeMatch    = "match"
	ProbeMismatch = "mismatch"
	ProbeFailed   = "failed"
	ProbeSkipped  = "skipped"
)
