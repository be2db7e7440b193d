package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - счётчики для подстройки конвейера фильтрации и наблюдения
// за жизненным циклом сессий
type Metrics struct {
	Registry *prometheus.Registry

	eventsIgnored        *prometheus.CounterVec
	eventsAccepted       *prometheus.CounterVec
	sessionsStarted      *prometheus.CounterVec
	sessionsCompleted    *prometheus.CounterVec
	verificationOutcomes *prometheus.CounterVec
	staleReconciled      prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		eventsIgnored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_events_ignored_total",
			Help: "Geofence events ignored by the filtering pipeline, by reason.",
		}, []string{"reason"}),
		eventsAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_events_accepted_total",
			Help: "Geofence events accepted by the filtering pipeline, by type.",
		}, []string{"type"}),
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_sessions_started_total",
			Help: "Tracking sessions opened, by method.",
		}, []string{"method"}),
		sessionsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_sessions_completed_total",
			Help: "Tracking sessions completed, by trigger.",
		}, []string{"trigger"}),
		verificationOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_verification_checks_total",
			Help: "Staged exit verification checks, by outcome.",
		}, []string{"outcome"}),
		staleReconciled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_stale_pending_reconciled_total",
			Help: "Stale pending exits confirmed by reconciliation.",
		}),
	}
	m.Registry.MustRegister(
		m.eventsIgnored,
		m.eventsAccepted,
		m.sessionsStarted,
		m.sessionsCompleted,
		m.verificationOutcomes,
		m.staleReconciled,
	)
	return m
}

func (m *Metrics) EventIgnored(reason string)       { m.eventsIgnored.WithLabelValues(reason).Inc() }
func (m *Metrics) EventAccepted(eventType string)   { m.eventsAccepted.WithLabelValues(eventType).Inc() }
func (m *Metrics) SessionStarted(method string)     { m.sessionsStarted.WithLabelValues(method).Inc() }
func (m *Metrics) SessionCompleted(trigger string)  { m.sessionsCompleted.WithLabelValues(trigger).Inc() }
func (m *Metrics) VerificationCheck(outcome string) { m.verificationOutcomes.WithLabelValues(outcome).Inc() }
func (m *Metrics) StaleReconciled()                 { m.staleReconciled.Inc() }
