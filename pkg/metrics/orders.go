package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records storefront checkout activity.
type OrderMetrics struct {
	placed      *prometheus.CounterVec
	failed      *prometheus.CounterVec
	redemptions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewOrderMetrics registers the checkout metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders accepted at checkout.",
	}, []string{"delivery_option"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Checkout attempts rejected before persistence.",
	}, []string{"reason"})
	redemptions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promo_redemptions_total",
		Help: "Promo codes redeemed on placed orders.",
	}, []string{"code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_place_duration_seconds",
		Help:    "Duration of the place-order pipeline in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(placed, failed, redemptions, duration)
	return &OrderMetrics{
		placed:      placed,
		failed:      failed,
		redemptions: redemptions,
		duration:    duration,
	}
}

// IncPlaced increments the accepted-order counter for the delivery option.
func (m *OrderMetrics) IncPlaced(deliveryOption string) {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.WithLabelValues(normalizeMetricLabel(deliveryOption)).Inc()
}

// IncRejected increments the rejection counter for the given reason.
func (m *OrderMetrics) IncRejected(reason string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeMetricLabel(reason)).Inc()
}

// IncRedemption increments the redemption counter for the promo code.
func (m *OrderMetrics) IncRedemption(code string) {
	if m == nil || m.redemptions == nil {
		return
	}
	m.redemptions.WithLabelValues(normalizeMetricLabel(code)).Inc()
}

// ObservePlaceDuration records how long one checkout took.
func (m *OrderMetrics) ObservePlaceDuration(outcome string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeMetricLabel(outcome)).Observe(duration.Seconds())
}

func normalizeMetricLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
