package metrics

import "github.com/prometheus/client_golang/prometheus"

// ClinicMetrics exposes counters for the clinic's core flows. All observe
// methods are nil-safe so callers can run without metrics wired.
type ClinicMetrics struct {
	registrationsTotal *prometheus.CounterVec
	bookingsTotal      *prometheus.CounterVec
	transitionsTotal   *prometheus.CounterVec
	uploadsTotal       *prometheus.CounterVec
	rendersTotal       *prometheus.CounterVec
}

func NewClinicMetrics(reg prometheus.Registerer) *ClinicMetrics {
	m := &ClinicMetrics{
		registrationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "directory",
			Name:      "registrations_total",
			Help:      "Total account registrations",
		}, []string{"role", "status"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "appointments",
			Name:      "bookings_total",
			Help:      "Total booking attempts",
		}, []string{"outcome"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "appointments",
			Name:      "status_transitions_total",
			Help:      "Total appointment status transitions",
		}, []string{"from", "to"}),
		uploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "reports",
			Name:      "uploads_total",
			Help:      "Total medical report uploads",
		}, []string{"outcome"}),
		rendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "reports",
			Name:      "consultation_renders_total",
			Help:      "Total consultation PDF renders",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.registrationsTotal, m.bookingsTotal, m.transitionsTotal, m.uploadsTotal, m.rendersTotal)
	return m
}

func (m *ClinicMetrics) ObserveRegistration(role, status string) {
	if m == nil {
		return
	}
	m.registrationsTotal.WithLabelValues(role, status).Inc()
}

func (m *ClinicMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *ClinicMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *ClinicMetrics) ObserveUpload(outcome string) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(outcome).Inc()
}

func (m *ClinicMetrics) ObserveRender(outcome string) {
	if m == nil {
		return
	}
	m.rendersTotal.WithLabelValues(outcome).Inc()
}
