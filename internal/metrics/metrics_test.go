package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestListenerInvocations_Labels(t *testing.T) {
	counter := ListenerInvocations.WithLabelValues("test.capability", ResultOK)
	before := testutil.ToFloat64(counter)

	counter.Inc()

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("Expected %v, got %v", before+1, got)
	}
}

func TestListenerDuration_Observe(t *testing.T) {
	for _, d := range []float64{0.001, 0.01, 0.5} {
		ListenerDuration.WithLabelValues("test.capability").Observe(d)
	}
	if n := testutil.CollectAndCount(ListenerDuration); n == 0 {
		t.Error("Expected at least one histogram series")
	}
}

func TestCachedEntities_Gauge(t *testing.T) {
	gauge := CachedEntities.WithLabelValues("test-kind")
	gauge.Set(3)
	gauge.Dec()

	if got := testutil.ToFloat64(gauge); got != 2 {
		t.Errorf("Expected 2, got %v", got)
	}
}
