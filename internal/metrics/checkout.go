package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Checkout failure reasons.
const (
	ReasonInvalidInput = "invalid_input"
	ReasonNotFound     = "not_found"
	ReasonPersist      = "persist"
)

// CheckoutMetrics counts order-pipeline outcomes, including the failures that
// are tolerated without failing the request.
type CheckoutMetrics struct {
	ordersCreated    prometheus.Counter
	failures         *prometheus.CounterVec
	decrementMisses  prometheus.Counter
	profileFailures  prometheus.Counter
	ratingRecomputes *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_created_total",
		Help: "Orders persisted by checkout.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_failures_total",
		Help: "Checkouts that returned an error, by reason.",
	}, []string{"reason"})
	decrementMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_stock_decrement_misses_total",
		Help: "Best-effort stock decrements that did not apply.",
	})
	profileFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_profile_save_failures_total",
		Help: "Customer profile saves that failed after an order was created.",
	})
	ratingRecomputes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_rating_recomputes_total",
		Help: "Product rating recomputes, by result.",
	}, []string{"result"})
	reg.MustRegister(ordersCreated, failures, decrementMisses, profileFailures, ratingRecomputes)
	return &CheckoutMetrics{
		ordersCreated:    ordersCreated,
		failures:         failures,
		decrementMisses:  decrementMisses,
		profileFailures:  profileFailures,
		ratingRecomputes: ratingRecomputes,
	}
}

func (m *CheckoutMetrics) IncOrderCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

func (m *CheckoutMetrics) IncFailure(reason string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *CheckoutMetrics) IncDecrementMiss() {
	if m == nil || m.decrementMisses == nil {
		return
	}
	m.decrementMisses.Inc()
}

func (m *CheckoutMetrics) IncProfileFailure() {
	if m == nil || m.profileFailures == nil {
		return
	}
	m.profileFailures.Inc()
}

// ObserveRatingRecompute records whether a recompute after a review write
// succeeded.
func (m *CheckoutMetrics) ObserveRatingRecompute(err error) {
	if m == nil || m.ratingRecomputes == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ratingRecomputes.WithLabelValues(result).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
