package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters for the availability/booking flow.
type SchedulingMetrics struct {
	availabilityTotal *prometheus.CounterVec
	slotConflictTotal prometheus.Counter
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		availabilityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "availability_queries_total",
			Help:      "Total availability queries",
		}, []string{"day"}),
		slotConflictTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "slot_conflicts_total",
			Help:      "Bookings rejected because the slot was already taken",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.availabilityTotal, m.slotConflictTotal)
	return m
}

func (m *SchedulingMetrics) ObserveAvailabilityQuery(open bool) {
	if m == nil {
		return
	}
	label := "closed"
	if open {
		label = "open"
	}
	m.availabilityTotal.WithLabelValues(label).Inc()
}

func (m *SchedulingMetrics) ObserveSlotConflict() {
	if m == nil {
		return
	}
	m.slotConflictTotal.Inc()
}
