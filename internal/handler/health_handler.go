package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/internship-api/internal/config"
	"github.com/noah-isme/internship-api/internal/utils"
)

const healthProbeTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Database    string    `json:"database"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
}

// AboutResponse carries the institution details shown on public pages.
type AboutResponse struct {
	University   string `json:"university"`
	AcademicYear string `json:"academic_year"`
	EmailDomain  string `json:"email_domain"`
}

// HealthCheck probes the database when db is non-nil and answers 503 while it is unreachable.
func HealthCheck(cfg config.Config, db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Database:    "skipped",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}
		if db == nil {
			return utils.SendSuccess(c, "service healthy", payload)
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), healthProbeTimeout)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			payload.Status = "degraded"
			payload.Database = "unreachable"
			return c.Status(fiber.StatusServiceUnavailable).JSON(utils.APIResponse{
				Message: "database unreachable",
				Data:    payload,
			})
		}

		payload.Database = "ok"
		return utils.SendSuccess(c, "service healthy", payload)
	}
}

// About returns the university globals.
func About(cfg config.Config) fiber.Handler {
	payload := AboutResponse{
		University:   cfg.UniversityName,
		AcademicYear: cfg.AcademicYear,
		EmailDomain:  cfg.UniversityEmailDomain,
	}
	return func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "about", payload)
	}
}
