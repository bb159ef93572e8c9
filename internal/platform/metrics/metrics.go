package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for menu synchronization.
type Metrics struct {
	SnapshotsDelivered  prometheus.Counter
	SeedingPasses       *prometheus.CounterVec
	SubscriptionErrors  prometheus.Counter
	ActiveSubscriptions prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		SnapshotsDelivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "pos_menu_snapshots_delivered_total",
			Help: "Total number of non-empty menu snapshots delivered to subscribers",
		}),
		SeedingPasses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_menu_seeding_passes_total",
			Help: "Total number of default catalog seeding passes by outcome",
		}, []string{"outcome"}),
		SubscriptionErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "pos_menu_subscription_errors_total",
			Help: "Total number of menu subscriptions terminated by an error",
		}),
		ActiveSubscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pos_menu_active_subscriptions",
			Help: "Current number of live menu subscriptions",
		}),
	}
}

func (m *Metrics) IncrementSnapshotsDelivered() {
	if m == nil {
		return
	}
	m.SnapshotsDelivered.Inc()
}

func (m *Metrics) RecordSeedingPass(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.SeedingPasses.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementSubscriptionErrors() {
	if m == nil {
		return
	}
	m.SubscriptionErrors.Inc()
}

func (m *Metrics) SubscriptionOpened() {
	if m == nil {
		return
	}
	m.ActiveSubscriptions.Inc()
}

func (m *Metrics) SubscriptionClosed() {
	if m == nil {
		return
	}
	m.ActiveSubscriptions.Dec()
}
