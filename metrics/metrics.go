package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "klar_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "klar_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"}, // success, invalid, missing_fields, invalid_email
	)

	MailboxActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "klar_mailbox_actions_total",
			Help: "Mailbox actions by kind",
		},
		[]string{"action"},
	)

	SettingsUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "klar_settings_updates_total",
			Help: "Settings updates by outcome",
		},
		[]string{"outcome"}, // applied, invalid, forbidden
	)

	ActiveWorkspaces = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "klar_active_workspaces",
			Help: "Number of live session workspaces",
		},
	)
)

func RecordHTTPRequestDuration(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

func IncrementLogin(result string) {
	LoginAttempts.WithLabelValues(result).Inc()
}

func IncrementMailboxAction(action string) {
	MailboxActions.WithLabelValues(action).Inc()
}

func IncrementSettingsUpdate(outcome string) {
	SettingsUpdates.WithLabelValues(outcome).Inc()
}

func SetActiveWorkspaces(n int) {
	ActiveWorkspaces.Set(float64(n))
}
