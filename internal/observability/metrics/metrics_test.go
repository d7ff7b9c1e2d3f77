package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestClinicMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClinicMetrics(reg)
	m.ObserveRegistration("doctor", "pending")
	m.ObserveBooking("accepted")
	m.ObserveTransition("pending", "confirmed")
	m.ObserveUpload("stored")
	m.ObserveRender("ok")
}

func TestClinicMetricsNilSafe(t *testing.T) {
	var m *ClinicMetrics
	m.ObserveRegistration("patient", "approved")
	m.ObserveBooking("rejected")
	m.ObserveTransition("confirmed", "completed")
	m.ObserveUpload("too_large")
	m.ObserveRender("failed")
}
