package middleware

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Config customises the middleware registration pipeline.
type Config struct {
	Logger *zerolog.Logger
	// AllowOrigins is a comma separated CORS allow list. Cookies are only shared with listed
	// origins, never with the "*" wildcard.
	AllowOrigins string
	// AccessLog enables fiber's plain-text access log.
	AccessLog bool
}

// Register installs the outer request pipeline. Order matters: panics are recovered first, then
// every request gets a correlation id before it is measured, logged or rejected by CORS.
func Register(app *fiber.App, cfg Config) {
	requestLogger := zerolog.New(io.Discard)
	if cfg.Logger != nil {
		requestLogger = *cfg.Logger
	}

	origins := strings.TrimSpace(cfg.AllowOrigins)
	if origins == "" {
		origins = "*"
	}

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.Logger != nil && cfg.Logger.GetLevel() <= zerolog.DebugLevel}))
	app.Use(helmet.New(helmet.Config{XFrameOptions: "DENY", ReferrerPolicy: "same-origin"}))
	app.Use(CorrelationID())
	app.Use(Observability(requestLogger))
	if cfg.AccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: origins != "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + CorrelationHeader,
		ExposeHeaders:    CorrelationHeader + ", " + fiber.HeaderRetryAfter,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
}
