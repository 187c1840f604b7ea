package analyze

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetrics(t *testing.T) {
	t.Run("records runs by status", func(t *testing.T) {
		pm := NewPrometheusMetrics(prometheus.NewRegistry())
		pm.RecordRun("ok")
		pm.RecordRun("ok")
		pm.RecordRun("fault")

		if got := testutil.ToFloat64(pm.runs.WithLabelValues("ok")); got != 2 {
			t.Errorf("ok runs = %v, want 2", got)
		}
		if got := testutil.ToFloat64(pm.runs.WithLabelValues("fault")); got != 1 {
			t.Errorf("fault runs = %v, want 1", got)
		}
	})

	t.Run("records fallbacks and findings", func(t *testing.T) {
		pm := NewPrometheusMetrics(prometheus.NewRegistry())
		pm.IncrementFallbacks("duplicates", "timeout")
		pm.AddFindings("gaps", 3)
		pm.AddFindings("gaps", 0) // no-op

		if got := testutil.ToFloat64(pm.fallbacks.WithLabelValues("duplicates", "timeout")); got != 1 {
			t.Errorf("fallbacks = %v, want 1", got)
		}
		if got := testutil.ToFloat64(pm.findings.WithLabelValues("gaps")); got != 3 {
			t.Errorf("findings = %v, want 3", got)
		}
	})

	t.Run("latency histogram accepts observations", func(t *testing.T) {
		pm := NewPrometheusMetrics(prometheus.NewRegistry())
		pm.RecordAnalyzerLatency("risk", 12*time.Millisecond, "success")

		count := testutil.CollectAndCount(pm.analyzerLatency)
		if count != 1 {
			t.Errorf("histogram series = %d, want 1", count)
		}
	})

	t.Run("disable suppresses recording", func(t *testing.T) {
		pm := NewPrometheusMetrics(prometheus.NewRegistry())
		pm.Disable()
		pm.RecordRun("ok")
		if got := testutil.ToFloat64(pm.runs.WithLabelValues("ok")); got != 0 {
			t.Errorf("disabled metrics recorded %v runs", got)
		}

		pm.Enable()
		pm.RecordRun("ok")
		if got := testutil.ToFloat64(pm.runs.WithLabelValues("ok")); got != 1 {
			t.Errorf("re-enabled metrics recorded %v runs, want 1", got)
		}
	})

	t.Run("nil receiver is safe", func(t *testing.T) {
		var pm *PrometheusMetrics
		pm.RecordRun("ok")
		pm.RecordAnalyzerLatency("risk", time.Millisecond, "success")
		pm.IncrementFallbacks("duplicates", "timeout")
		pm.AddFindings("gaps", 1)
	})
}
