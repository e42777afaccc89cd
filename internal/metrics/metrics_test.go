package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestProbeCounterLabels(t *testing.T) {
	for _, result := range []string{ProbeMatch, ProbeMismatch, ProbeFailed, ProbeSkipped} {
		c := DiscoveryProbesTotal.WithLabelValues(result)
		before := testutil.ToFloat64(c)
		c.Inc()
		if got := testutil.ToFloat64(c); got != before+1 {
			t.Fatalf("probes_total{result=%q} = %v, want %v", result, got, before+1)
		}
	}
}
