package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestSchedulingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSchedulingMetrics(reg)
	m.ObserveAvailabilityQuery(true)
	m.ObserveAvailabilityQuery(false)
	m.ObserveSlotConflict()
}

func TestDeliveryMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDeliveryMetrics(reg)
	m.ObserveDelivery("email", "sent", 0.3)
	m.ObserveCallback("aceptar", "ok")
}

func TestMetricsNilSafe(t *testing.T) {
	var s *SchedulingMetrics
	s.ObserveAvailabilityQuery(true)
	s.ObserveSlotConflict()

	var d *DeliveryMetrics
	d.ObserveDelivery("email", "sent", 0.1)
	d.ObserveCallback("aceptar", "ok")
}
