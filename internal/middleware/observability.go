package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/internship-api/internal/observability"
)

// metricsPath is excluded from request metrics so scrapes do not count themselves.
const metricsPath = "/metrics"

type requestOutcome struct {
	method  string
	route   string
	status  int
	elapsed time.Duration
}

// Observability records request counters and latency, then writes one structured log line per
// request. The log level follows the response class.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()

	return func(c *fiber.Ctx) error {
		if c.Path() == metricsPath {
			return c.Next()
		}

		started := time.Now()
		err := c.Next()

		outcome := requestOutcome{
			method:  c.Method(),
			route:   matchedRoute(c),
			status:  responseStatus(c, err),
			elapsed: time.Since(started),
		}
		outcome.record()
		outcome.log(logger, c)

		return err
	}
}

func (o requestOutcome) record() {
	status := strconv.Itoa(o.status)
	observability.APIRequests().WithLabelValues(o.method, o.route, status).Inc()
	observability.APILatency().WithLabelValues(o.method, o.route).Observe(o.elapsed.Seconds())
	if o.status >= fiber.StatusBadRequest {
		observability.APIErrors().WithLabelValues(o.method, o.route, status).Inc()
	}
}

func (o requestOutcome) log(logger zerolog.Logger, c *fiber.Ctx) {
	var event *zerolog.Event
	switch {
	case o.status >= fiber.StatusInternalServerError:
		event = logger.Error()
	case o.status >= fiber.StatusBadRequest:
		event = logger.Warn()
	default:
		event = logger.Debug()
	}

	event = event.
		Str("correlation_id", GetCorrelationID(c)).
		Str("method", o.method).
		Str("route", o.route).
		Int("status", o.status).
		Dur("latency", o.elapsed)
	if userID, ok := c.Locals(localsUserID).(uint); ok {
		event = event.Uint("user_id", userID)
	}
	event.Msg("request handled")
}

// responseStatus predicts the status the error handler will write when a handler returned an error.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

// matchedRoute reports the registered route pattern so path parameters do not explode label
// cardinality. Unmatched requests collapse into a single label.
func matchedRoute(c *fiber.Ctx) string {
	if route := c.Route(); route != nil && route.Path != "" && route.Path != "/" {
		return route.Path
	}
	if c.Path() == "/" {
		return "/"
	}
	return "unmatched"
}
