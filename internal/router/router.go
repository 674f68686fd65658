package router

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/rs/zerolog"

	"github.com/noah-isme/internship-api/internal/config"
	"github.com/noah-isme/internship-api/internal/database"
	"github.com/noah-isme/internship-api/internal/handler"
	"github.com/noah-isme/internship-api/internal/middleware"
	"github.com/noah-isme/internship-api/internal/models"
	"github.com/noah-isme/internship-api/internal/observability"
	"github.com/noah-isme/internship-api/internal/service"
	"github.com/noah-isme/internship-api/internal/utils"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	Manager  *database.Manager
	Sessions *session.Store
	Identity service.IdentityService
	Tokens   service.TokenService
	Logger   zerolog.Logger

	AuthHandler              *handler.AuthHandler
	AccountHandler           *handler.AccountHandler
	DashboardHandler         *handler.DashboardHandler
	NotificationHandler      *handler.NotificationHandler
	AdminUserHandler         *handler.AdminUserHandler
	AdminActivityHandler     *handler.AdminActivityHandler
	AdminNotificationHandler *handler.AdminNotificationHandler
}

// Register wires the request pipeline and HTTP routes into the fiber application. The common
// middleware from middleware.Register must already be installed.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	app.Use(middleware.ClientContext())
	if deps.Manager != nil {
		app.Use(middleware.RequestScope(deps.Manager, deps.Logger))
	}
	app.Use(middleware.SessionBinder(deps.Identity, deps.Sessions, deps.Tokens, deps.Logger))

	loginRequired := middleware.LoginRequired(deps.Sessions)

	app.Get("/", handler.Home)

	if deps.AuthHandler != nil {
		auth := app.Group("/auth")
		deps.AuthHandler.Register(auth, middleware.RateLimit("login", cfg.LoginRateLimit, time.Minute))
	}

	if deps.DashboardHandler != nil {
		for _, role := range models.Roles {
			app.Get(role.DashboardPath(), loginRequired, middleware.RequireRole(role), deps.DashboardHandler.Show)
		}
	}

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	var db handler.Pinger
	if deps.Manager != nil {
		db = deps.Manager
	}
	api.Get("/health", handler.HealthCheck(cfg, db))
	api.Get("/about", handler.About(cfg))

	if deps.AccountHandler != nil {
		deps.AccountHandler.Register(api.Group("/me", loginRequired))
	}
	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(api.Group("/notifications", loginRequired))
	}

	admin := api.Group("/admin", loginRequired, middleware.RequireRole(models.RoleAdmin))
	if deps.AdminUserHandler != nil {
		deps.AdminUserHandler.Register(admin.Group("/users"))
	}
	if deps.AdminActivityHandler != nil {
		deps.AdminActivityHandler.Register(admin.Group("/activity"))
	}
	if deps.AdminNotificationHandler != nil {
		deps.AdminNotificationHandler.Register(admin.Group("/notifications"))
	}
}

// ErrorHandler renders unhandled errors, including unknown routes, in the JSON envelope.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "internal server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.Path()).Str("correlation_id", middleware.GetCorrelationID(c)).Msg("unhandled request error")
			message = "internal server error"
		}

		return utils.SendError(c, code, message)
	}
}
