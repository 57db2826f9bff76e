package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MarketplaceMetrics records counters for the core marketplace flows.
type MarketplaceMetrics struct {
	cartOps         *prometheus.CounterVec
	cartPersistFail prometheus.Counter
	publishes       *prometheus.CounterVec
	catalogLoads    *prometheus.HistogramVec
	logins          *prometheus.CounterVec
}

// NewMarketplaceMetrics registers the marketplace metrics on the provided registerer.
func NewMarketplaceMetrics(reg prometheus.Registerer) *MarketplaceMetrics {
	if reg == nil {
		return &MarketplaceMetrics{}
	}
	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart mutations by operation.",
	}, []string{"operation"})
	cartPersistFail := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Cart snapshot writes that did not reach the store.",
	})
	publishes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "product_publishes_total",
		Help: "Product publish attempts by outcome.",
	}, []string{"outcome"})
	catalogLoads := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_load_duration_seconds",
		Help:    "Duration of catalog loads in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"filtered"})
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "logins_total",
		Help: "Login attempts by result.",
	}, []string{"result"})
	reg.MustRegister(cartOps, cartPersistFail, publishes, catalogLoads, logins)
	return &MarketplaceMetrics{
		cartOps:         cartOps,
		cartPersistFail: cartPersistFail,
		publishes:       publishes,
		catalogLoads:    catalogLoads,
		logins:          logins,
	}
}

// IncCartOp increments the cart mutation counter for the named operation.
func (m *MarketplaceMetrics) IncCartOp(operation string) {
	if m == nil || m.cartOps == nil {
		return
	}
	m.cartOps.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncCartPersistFailure increments the failed-snapshot counter.
func (m *MarketplaceMetrics) IncCartPersistFailure() {
	if m == nil || m.cartPersistFail == nil {
		return
	}
	m.cartPersistFail.Inc()
}

// IncPublish increments the publish counter for the given outcome.
func (m *MarketplaceMetrics) IncPublish(outcome string) {
	if m == nil || m.publishes == nil {
		return
	}
	m.publishes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveCatalogLoad records the duration of a catalog load.
func (m *MarketplaceMetrics) ObserveCatalogLoad(filtered bool, duration time.Duration) {
	if m == nil || m.catalogLoads == nil {
		return
	}
	label := "no"
	if filtered {
		label = "yes"
	}
	m.catalogLoads.WithLabelValues(label).Observe(duration.Seconds())
}

// IncLogin increments the login counter for the given result.
func (m *MarketplaceMetrics) IncLogin(result string) {
	if m == nil || m.logins == nil {
		return
	}
	m.logins.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
