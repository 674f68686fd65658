package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/internship-api/internal/models"
	"github.com/noah-isme/internship-api/internal/observability"
	"github.com/noah-isme/internship-api/internal/utils"
)

// ForbiddenMessage is returned when an authenticated user lacks the role a route requires.
const ForbiddenMessage = "You do not have permission to access this page."

// RequireRole admits only users whose role tag is one of roles. It must run after SessionBinder.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		if role.Valid() {
			allowed[role] = true
		}
	}

	return func(c *fiber.Ctx) error {
		role, ok := requestRole(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, LoginRequiredMessage)
		}
		if !allowed[role] {
			observability.AccessDenied().WithLabelValues(role.String()).Inc()
			return utils.SendError(c, fiber.StatusForbidden, ForbiddenMessage)
		}
		return c.Next()
	}
}

// requestRole prefers the bound user and falls back to the role tag stored in locals.
func requestRole(c *fiber.Ctx) (models.Role, bool) {
	if user := CurrentUser(c); user != nil {
		return user.Role, user.Role.Valid()
	}

	var raw string
	switch v := c.Locals(localsUserRole).(type) {
	case models.Role:
		raw = v.String()
	case string:
		raw = v
	default:
		return "", false
	}

	role, err := models.ParseRole(raw)
	if err != nil {
		return "", false
	}
	return role, true
}
