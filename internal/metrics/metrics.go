// Package metrics exposes Prometheus instrumentation for the server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "settleup"

// Metrics holds the server's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests         *prometheus.CounterVec
	rpcDuration         *prometheus.HistogramVec
	expensesCreated     *prometheus.CounterVec
	plansComputed       prometheus.Counter
	settlementsPerPlan  prometheus.Histogram
	imbalances          *prometheus.CounterVec
	remindersPublished  prometheus.Counter
	eventPublishFailure *prometheus.CounterVec
}

// New registers all collectors, plus the Go runtime and process collectors,
// on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Connect RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Connect RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		expensesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_created_total",
			Help:      "Expenses recorded, by category.",
		}, []string{"category"}),
		plansComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_plans_computed_total",
			Help:      "Settlement plans computed.",
		}),
		settlementsPerPlan: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlements_per_plan",
			Help:      "Number of transfers in each computed settlement plan.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		imbalances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_imbalances_total",
			Help:      "Groups whose balances did not net to zero, by handling policy.",
		}, []string{"policy"}),
		remindersPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_reminders_published_total",
			Help:      "Settlement reminder events published.",
		}),
		eventPublishFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Events that could not be published, by topic.",
		}, []string{"topic"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rpcRequests,
		m.rpcDuration,
		m.expensesCreated,
		m.plansComputed,
		m.settlementsPerPlan,
		m.imbalances,
		m.remindersPublished,
		m.eventPublishFailure,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRPC records one finished RPC. A nil receiver is a no-op so callers
// can run without metrics.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// ExpenseCreated counts a new expense.
func (m *Metrics) ExpenseCreated(categoryID string) {
	if m == nil {
		return
	}
	m.expensesCreated.WithLabelValues(categoryID).Inc()
}

// PlanComputed records the size of a settlement plan.
func (m *Metrics) PlanComputed(settlements int) {
	if m == nil {
		return
	}
	m.plansComputed.Inc()
	m.settlementsPerPlan.Observe(float64(settlements))
}

// Imbalance counts a group whose balances did not net to zero.
func (m *Metrics) Imbalance(policy string) {
	if m == nil {
		return
	}
	m.imbalances.WithLabelValues(policy).Inc()
}

// ReminderPublished counts a published settlement reminder.
func (m *Metrics) ReminderPublished() {
	if m == nil {
		return
	}
	m.remindersPublished.Inc()
}

// PublishFailed counts an event that could not be delivered.
func (m *Metrics) PublishFailed(topic string) {
	if m == nil {
		return
	}
	m.eventPublishFailure.WithLabelValues(topic).Inc()
}
