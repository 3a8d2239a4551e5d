package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	// 各テストで新しいレジストリを使用
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.PaymentTransitionsTotal)
	assert.NotNil(t, m.AccountingActionsTotal)
	assert.NotNil(t, m.DistributedLockDuration)
}

func TestHTTPRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/events/:id", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/events", "201").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/events/:id/payments/apply", "409").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "http_requests_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "http_requests_total metric not found")
}

func TestPaymentTransitionsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	// 支払状態遷移をカウント
	m.PaymentTransitionsTotal.WithLabelValues("apply", "success").Inc()
	m.PaymentTransitionsTotal.WithLabelValues("apply", "success").Inc()
	m.PaymentTransitionsTotal.WithLabelValues("approve", "success").Inc()
	m.PaymentTransitionsTotal.WithLabelValues("approve", "conflict").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "payment_transitions_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "payment_transitions_total metric not found")
}

func TestAccountingActionsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.AccountingActionsTotal.WithLabelValues("confirm", "success").Inc()
	m.AccountingActionsTotal.WithLabelValues("confirm", "invalid").Inc()
	m.AccountingActionsTotal.WithLabelValues("reverse", "success").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "accounting_actions_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "accounting_actions_total metric not found")
}

func TestDistributedLockDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.DistributedLockDuration.WithLabelValues("acquire", "success").Observe(0.015)
	m.DistributedLockDuration.WithLabelValues("acquire", "failed").Observe(0.005)
	m.DistributedLockDuration.WithLabelValues("release", "success").Observe(0.002)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "distributed_lock_duration_seconds" {
			found = true
		}
	}
	assert.True(t, found, "distributed_lock_duration_seconds metric not found")
}

func TestGet_ReturnsDefaultMetrics(t *testing.T) {
	// Init が呼ばれていない場合は nil を返す
	m := Get()
	if m != nil {
		assert.NotNil(t, m.HTTPRequestsTotal)
	}
}

func TestInit_CreatesDefaultMetrics(t *testing.T) {
	// 既存のdefaultMetricsをバックアップ
	oldMetrics := defaultMetrics
	defer func() { defaultMetrics = oldMetrics }()

	// Initを呼ぶとデフォルトレジストリに登録してしまうため、テストでは直接セット
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)
	defaultMetrics = m

	got := Get()
	assert.NotNil(t, got)
	assert.Equal(t, m, got)
}
