// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Thread lifecycle metrics on a private Prometheus registry.

package control

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// ThreadMetrics counts thread lifecycle transitions.
type ThreadMetrics struct {
	registry *prometheus.Registry

	created  prometheus.Counter
	joined   prometheus.Counter
	detached prometheus.Counter
	failures *prometheus.CounterVec
	active   prometheus.Gauge
}

// NewThreadMetrics creates collectors registered on a fresh registry.
func NewThreadMetrics() *ThreadMetrics {
	m := &ThreadMetrics{
		registry: prometheus.NewRegistry(),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hiothread_threads_created_total",
			Help: "Total number of threads successfully created",
		}),
		joined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hiothread_threads_joined_total",
			Help: "Total number of threads joined",
		}),
		detached: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hiothread_threads_detached_total",
			Help: "Total number of threads detached",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hiothread_create_failures_total",
			Help: "Total number of failed thread creations by failing backend step",
		}, []string{"op"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hiothread_threads_active",
			Help: "Number of joinable threads currently owned",
		}),
	}
	m.registry.MustRegister(m.created, m.joined, m.detached, m.failures, m.active)
	return m
}

var (
	defaultMetricsOnce sync.Once
	defaultMetrics     *ThreadMetrics
)

// Metrics returns the process-wide thread metrics.
func Metrics() *ThreadMetrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = NewThreadMetrics()
	})
	return defaultMetrics
}

// Registry exposes the collectors, e.g. for promhttp.HandlerFor.
func (m *ThreadMetrics) Registry() *prometheus.Registry { return m.registry }

func (m *ThreadMetrics) Created() {
	m.created.Inc()
	m.active.Inc()
}

func (m *ThreadMetrics) Joined() {
	m.joined.Inc()
	m.active.Dec()
}

func (m *ThreadMetrics) Detached() {
	m.detached.Inc()
	m.active.Dec()
}

// CreateFailed records a creation failure at the given backend step.
func (m *ThreadMetrics) CreateFailed(op string) {
	m.failures.WithLabelValues(op).Inc()
}

// Active returns the current value of the active-threads gauge.
func (m *ThreadMetrics) Active() int64 {
	var out dto.Metric
	if err := m.active.Write(&out); err != nil {
		return 0
	}
	return int64(out.GetGauge().GetValue())
}

// GetSnapshot returns the counters as a flat map.
func (m *ThreadMetrics) GetSnapshot() map[string]any {
	out := make(map[string]any)
	families, err := m.registry.Gather()
	if err != nil {
		return out
	}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range metric.GetLabel() {
				key += "{" + lp.GetName() + "=" + lp.GetValue() + "}"
			}
			switch {
			case metric.GetCounter() != nil:
				out[key] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				out[key] = metric.GetGauge().GetValue()
			}
		}
	}
	return out
}
