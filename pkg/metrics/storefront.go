package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records counters for the storefront flows.
type StorefrontMetrics struct {
	registrations   *prometheus.CounterVec
	logins          *prometheus.CounterVec
	ordersCompleted prometheus.Counter
	fetchFailures   prometheus.Counter
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	registrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registrations_total",
		Help: "Registration attempts by outcome.",
	}, []string{"outcome"})
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})
	ordersCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_completed_total",
		Help: "Confirmed checkouts.",
	})
	fetchFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "product_fetch_failures_total",
		Help: "Failed catalog fetches.",
	})
	reg.MustRegister(registrations, logins, ordersCompleted, fetchFailures)
	return &StorefrontMetrics{
		registrations:   registrations,
		logins:          logins,
		ordersCompleted: ordersCompleted,
		fetchFailures:   fetchFailures,
	}
}

// IncRegistration counts a registration attempt.
func (m *StorefrontMetrics) IncRegistration(outcome string) {
	if m == nil || m.registrations == nil {
		return
	}
	m.registrations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncLogin counts a login attempt.
func (m *StorefrontMetrics) IncLogin(outcome string) {
	if m == nil || m.logins == nil {
		return
	}
	m.logins.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncOrderCompleted counts a confirmed checkout.
func (m *StorefrontMetrics) IncOrderCompleted() {
	if m == nil || m.ordersCompleted == nil {
		return
	}
	m.ordersCompleted.Inc()
}

// IncFetchFailure counts a catalog fetch failure.
func (m *StorefrontMetrics) IncFetchFailure() {
	if m == nil || m.fetchFailures == nil {
		return
	}
	m.fetchFailures.Inc()
}

func normalizeLabel(outcome string) string {
	if outcome == "" {
		return "unknown"
	}
	return outcome
}
