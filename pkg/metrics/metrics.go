package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ShopMetrics records the counters the storefront core exposes.
type ShopMetrics struct {
	ordersCreated     prometheus.Counter
	couponValidations *prometheus.CounterVec
	notifyFailures    prometheus.Counter
}

// NewShopMetrics registers the shop metrics on the provided registerer.
func NewShopMetrics(reg prometheus.Registerer) *ShopMetrics {
	if reg == nil {
		return &ShopMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders committed to the ledger.",
	})
	couponValidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_validations_total",
		Help: "Coupon validation outcomes by result.",
	}, []string{"result"})
	notifyFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_notify_failures_total",
		Help: "Failed outbound order notifications.",
	})
	reg.MustRegister(ordersCreated, couponValidations, notifyFailures)
	return &ShopMetrics{
		ordersCreated:     ordersCreated,
		couponValidations: couponValidations,
		notifyFailures:    notifyFailures,
	}
}

// IncOrdersCreated counts a committed order.
func (m *ShopMetrics) IncOrdersCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncCouponValidation counts a validation outcome ("ok" or a rejection reason).
func (m *ShopMetrics) IncCouponValidation(result string) {
	if m == nil || m.couponValidations == nil {
		return
	}
	if result == "" {
		result = "unknown"
	}
	m.couponValidations.WithLabelValues(result).Inc()
}

// IncNotifyFailure counts a failed order notification.
func (m *ShopMetrics) IncNotifyFailure() {
	if m == nil || m.notifyFailures == nil {
		return
	}
	m.notifyFailures.Inc()
}
