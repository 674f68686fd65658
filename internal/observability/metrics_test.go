package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetricsHandlerExposesCollectors(t *testing.T) {
	LoginAttempts().WithLabelValues(LoginRejected).Inc()
	ActivityLogFailures().Inc()

	body := scrape(t)
	require.Contains(t, body, `auth_login_attempts_total{outcome="rejected"}`)
	require.Contains(t, body, "activity_log_failures_total")
}

func TestRegisterMetricsIsIdempotent(t *testing.T) {
	require.NotPanics(t, func() {
		RegisterMetrics()
		RegisterMetrics()
	})
	require.Same(t, APIRequests(), APIRequests())
}
