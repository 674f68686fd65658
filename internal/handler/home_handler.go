package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/internship-api/internal/middleware"
	"github.com/noah-isme/internship-api/internal/utils"
)

// Home sends visitors to their role dashboard, or to the login page when nobody is signed in.
func Home(c *fiber.Ctx) error {
	target := middleware.LoginPath
	if user := middleware.CurrentUser(c); user != nil {
		target = user.Role.DashboardPath()
	}

	if middleware.WantsJSON(c) {
		return utils.SendSuccess(c, "redirect", fiber.Map{"redirect": target})
	}
	return c.Redirect(target, fiber.StatusFound)
}
