package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SchedulingMetrics exposes counters/histograms for booking flows.
type SchedulingMetrics struct {
	bookingAttempts *prometheus.CounterVec
	slotQueries     *prometheus.CounterVec
	calendarLatency *prometheus.HistogramVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		bookingAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "scheduling",
			Name:      "booking_attempts_total",
			Help:      "Booking and reschedule attempts by outcome",
		}, []string{"outcome", "reason"}),
		slotQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "scheduling",
			Name:      "slot_queries_total",
			Help:      "Availability lookups by result",
		}, []string{"result"}),
		calendarLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dental",
			Subsystem: "scheduling",
			Name:      "calendar_request_seconds",
			Help:      "Latency of external calendar calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingAttempts, m.slotQueries, m.calendarLatency)
	return m
}

// ObserveBooking counts a booking decision. reason is empty for successes.
func (m *SchedulingMetrics) ObserveBooking(outcome, reason string) {
	if m == nil {
		return
	}
	m.bookingAttempts.WithLabelValues(outcome, reason).Inc()
}

func (m *SchedulingMetrics) ObserveSlotQuery(available bool) {
	if m == nil {
		return
	}
	result := "empty"
	if available {
		result = "available"
	}
	m.slotQueries.WithLabelValues(result).Inc()
}

func (m *SchedulingMetrics) ObserveCalendarCall(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.calendarLatency.WithLabelValues(op).Observe(d.Seconds())
}
