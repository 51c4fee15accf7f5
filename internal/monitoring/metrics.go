package monitoring

import (
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	OperationsTotal *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
	BytesTotal      *prometheus.CounterVec

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for quick inspection without a registry
type Snapshot struct {
	Operations int64
	Errors     int64
	Bytes      int64
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dirstore_operations_total",
				Help: "Total number of storage operations",
			},
			[]string{"op"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dirstore_errors_total",
				Help: "Total number of failed storage operations",
			},
			[]string{"op"},
		),
		BytesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dirstore_bytes_total",
				Help: "Total number of bytes read or written",
			},
			[]string{"op"},
		),
	}
}

// Observe records one storage operation
func (m *Metrics) Observe(op string, bytes int64, err error) {
	m.OperationsTotal.WithLabelValues(op).Inc()
	if err != nil {
		m.ErrorsTotal.WithLabelValues(op).Inc()
	}
	if bytes > 0 {
		m.BytesTotal.WithLabelValues(op).Add(float64(bytes))
	}

	m.mu.Lock()
	m.snapshot.Operations++
	if err != nil {
		m.snapshot.Errors++
	}
	if bytes > 0 {
		m.snapshot.Bytes += bytes
	}
	m.mu.Unlock()
}

// Snapshot returns the running totals
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// WriteText writes every metric family gathered from g in the Prometheus
// text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}
