package metrics

import "github.com/prometheus/client_golang/prometheus"

// Submission outcomes recorded by the intake handler.
const (
	OutcomeAccepted    = "accepted"
	OutcomeInvalid     = "invalid"
	OutcomeRateLimited = "rate_limited"
	OutcomeStoreError  = "store_error"
)

// IntakeMetrics exposes counters for the lead intake flow.
type IntakeMetrics struct {
	submissionsTotal   *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landing",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Total lead form submissions by outcome",
		}, []string{"outcome"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landing",
			Subsystem: "leads",
			Name:      "notifications_total",
			Help:      "Total notification emails by channel and status",
		}, []string{"channel", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.notificationsTotal)
	return m
}

func (m *IntakeMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *IntakeMetrics) ObserveNotification(channel string, sent bool) {
	if m == nil {
		return
	}
	status := "sent"
	if !sent {
		status = "failed"
	}
	m.notificationsTotal.WithLabelValues(channel, status).Inc()
}
