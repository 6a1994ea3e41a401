package metrics

import "github.com/prometheus/client_golang/prometheus"

// DeliveryMetrics exposes counters/histograms for quote deliveries to the
// workflow automation endpoint.
type DeliveryMetrics struct {
	deliveryTotal   *prometheus.CounterVec
	deliveryLatency prometheus.Histogram
	callbackTotal   *prometheus.CounterVec
}

func NewDeliveryMetrics(reg prometheus.Registerer) *DeliveryMetrics {
	m := &DeliveryMetrics{
		deliveryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "presupuestos",
			Name:      "delivery_total",
			Help:      "Total quote delivery attempts to the automation endpoint",
		}, []string{"method", "status"}),
		deliveryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "presupuestos",
			Name:      "delivery_latency_seconds",
			Help:      "Latency of quote deliveries",
			Buckets:   prometheus.DefBuckets,
		}),
		callbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "presupuestos",
			Name:      "callback_total",
			Help:      "Total inbound client-response callbacks",
		}, []string{"action", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.deliveryTotal, m.deliveryLatency, m.callbackTotal)
	return m
}

func (m *DeliveryMetrics) ObserveDelivery(method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.deliveryTotal.WithLabelValues(method, status).Inc()
	m.deliveryLatency.Observe(seconds)
}

func (m *DeliveryMetrics) ObserveCallback(action, status string) {
	if m == nil {
		return
	}
	m.callbackTotal.WithLabelValues(action, status).Inc()
}
