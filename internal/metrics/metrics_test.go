package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg).(*prometheusMetrics)

	m.AddNotificationsCreated("info")
	m.AddNotificationsCreated("info")
	m.AddNotificationsCreated("system")
	require.Equal(t, 2.0, testutil.ToFloat64(m.created.WithLabelValues("info")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.created.WithLabelValues("system")))

	m.AddNotificationsPruned(3)
	m.AddNotificationsPruned(0)
	require.Equal(t, 3.0, testutil.ToFloat64(m.pruned))

	m.ObserveStoreOperation("create", true, 0.01)
	m.ObserveStoreOperation("create", false, 0.02)
	require.Equal(t, 2, testutil.CollectAndCount(m.storeDuration))

	m.ObserveHTTPRequestDuration("/notifications", "POST", "Created", 0.1)
	require.Equal(t, 1, testutil.CollectAndCount(m.httpDuration))
}

func TestNewPanicsOnDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	require.Panics(t, func() { New(reg) })
}
