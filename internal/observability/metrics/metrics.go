// Package metrics exposes the engine's prometheus instruments. The
// registry is injected so tests can instantiate instruments without
// colliding on the default registerer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry *prometheus.Registry

	CheckoutsCompleted *prometheus.CounterVec
	CheckoutsRejected  *prometheus.CounterVec
	TransactionTotal   prometheus.Histogram
	CartLinesPerSale   prometheus.Histogram
}

func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		CheckoutsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kasira_checkouts_completed_total",
			Help: "Completed checkouts by payment method.",
		}, []string{"payment_method"}),
		CheckoutsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kasira_checkouts_rejected_total",
			Help: "Rejected checkouts by reason.",
		}, []string{"reason"}),
		TransactionTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kasira_transaction_total_units",
			Help:    "Distribution of transaction totals in currency units.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		CartLinesPerSale: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kasira_cart_lines_per_sale",
			Help:    "Number of distinct lines per completed sale.",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		}),
	}

	registry.MustRegister(
		m.CheckoutsCompleted,
		m.CheckoutsRejected,
		m.TransactionTotal,
		m.CartLinesPerSale,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
