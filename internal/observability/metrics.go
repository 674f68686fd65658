package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Login attempt outcomes reported on auth_login_attempts_total.
const (
	LoginSucceeded = "success"
	LoginRejected  = "rejected"
	LoginLocked    = "locked"
	LoginErrored   = "error"
)

var (
	registerOnce              sync.Once
	apiRequestsTotal          *prometheus.CounterVec
	apiLatencySeconds         *prometheus.HistogramVec
	apiErrorsTotal            *prometheus.CounterVec
	loginAttemptsTotal        *prometheus.CounterVec
	activityLogFailuresTotal  prometheus.Counter
	notificationsCreatedTotal *prometheus.CounterVec
	sessionsRejectedTotal     *prometheus.CounterVec
	accessDeniedTotal         *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		loginAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login attempts partitioned by outcome.",
		}, []string{"outcome"})

		activityLogFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "activity_log_failures_total",
			Help: "Activity log entries that could not be persisted.",
		})

		notificationsCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Notifications stored, partitioned by type.",
		}, []string{"type"})

		sessionsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sessions_rejected_total",
			Help: "Sessions or tokens that did not resolve to an active user.",
		}, []string{"reason"})

		accessDeniedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "access_denied_total",
			Help: "Requests refused by role checks, partitioned by the caller's role.",
		}, []string{"role"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			loginAttemptsTotal,
			activityLogFailuresTotal,
			notificationsCreatedTotal,
			sessionsRejectedTotal,
			accessDeniedTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// LoginAttempts exposes the login outcome counter.
func LoginAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return loginAttemptsTotal
}

// ActivityLogFailures exposes the counter of dropped activity entries.
func ActivityLogFailures() prometheus.Counter {
	RegisterMetrics()
	return activityLogFailuresTotal
}

// NotificationsCreated exposes the notification counter.
func NotificationsCreated() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsCreatedTotal
}

// SessionsRejected exposes the counter of sessions that were treated as anonymous.
func SessionsRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return sessionsRejectedTotal
}

// AccessDenied exposes the counter of role check refusals.
func AccessDenied() *prometheus.CounterVec {
	RegisterMetrics()
	return accessDeniedTotal
}
