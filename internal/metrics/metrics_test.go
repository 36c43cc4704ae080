package metrics_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-gym-client/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RegistersAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveRequest("GET", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", 0, time.Millisecond)
	m.ObserveRefresh(metrics.RefreshSuccess)
	m.ObserveQueued()
	m.ObserveQueued()
	m.ObserveSignOut()

	require.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues(metrics.RefreshSuccess)))
	require.Equal(t, 2.0, testutil.ToFloat64(m.QueuedRequests))
	require.Equal(t, 1.0, testutil.ToFloat64(m.SignOuts))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.ObserveRequest("POST", 401, time.Millisecond)
		m.ObserveRefresh(metrics.RefreshFailure)
		m.ObserveQueued()
		m.ObserveSignOut()
	})
}
