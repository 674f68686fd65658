package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/internship-api/internal/database"
	"github.com/noah-isme/internship-api/internal/service"
)

// RequestScope gives every request its own database scope. The connection is pinned lazily on
// first use and always released when the request finishes. A handler error or a 5xx response
// rolls back whatever transaction is still open.
func RequestScope(manager *database.Manager, logger zerolog.Logger) fiber.Handler {
	log := logger.With().Str("component", "request_scope").Logger()

	return func(c *fiber.Ctx) (err error) {
		scope := manager.NewScope(c.UserContext())
		c.SetUserContext(database.WithScope(c.UserContext(), scope))

		defer func() {
			if err != nil || c.Response().StatusCode() >= fiber.StatusInternalServerError {
				if rbErr := scope.Rollback(); rbErr != nil {
					log.Error().Err(rbErr).Str("correlation_id", GetCorrelationID(c)).Msg("failed to roll back request transaction")
				}
			}
			if relErr := scope.Release(); relErr != nil {
				log.Error().Err(relErr).Str("correlation_id", GetCorrelationID(c)).Msg("failed to release request connection")
			}
		}()

		return c.Next()
	}
}

// ClientContext records the caller's address and user agent on the request context so audit
// entries written further down can include them.
func ClientContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		info := service.ClientInfo{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
		c.SetUserContext(service.WithClientInfo(c.UserContext(), info))
		return c.Next()
	}
}
