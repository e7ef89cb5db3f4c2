// Package metrics exposes Prometheus collectors for submissions and capture sessions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeUploadError     = "upload_error"
	OutcomeWriteError      = "write_error"
)

// Metrics groups the site's collectors so tests can use a private registry.
type Metrics struct {
	Submissions     *prometheus.CounterVec
	UploadedBytes   prometheus.Counter
	ContactMessages *prometheus.CounterVec
	CaptureSessions *prometheus.CounterVec
	ActiveCaptures  prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "site_testimonial_submissions_total",
			Help: "Testimonial submissions by kind and outcome.",
		}, []string{"kind", "outcome"}),
		UploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "site_testimonial_uploaded_bytes_total",
			Help: "Bytes of testimonial video uploaded to object storage.",
		}),
		ContactMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "site_contact_messages_total",
			Help: "Contact form messages by outcome.",
		}, []string{"outcome"}),
		CaptureSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "site_capture_sessions_total",
			Help: "Closed capture sessions by the mode they ended in.",
		}, []string{"final_mode"}),
		ActiveCaptures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "site_capture_sessions_active",
			Help: "Capture sessions with an open websocket.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Submissions, m.UploadedBytes, m.ContactMessages, m.CaptureSessions, m.ActiveCaptures)
	}
	return m
}

// Nop returns unregistered collectors.
func Nop() *Metrics { return New(nil) }
