package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/internship-api/internal/dto"
	"github.com/noah-isme/internship-api/internal/middleware"
	"github.com/noah-isme/internship-api/internal/service"
	"github.com/noah-isme/internship-api/internal/utils"
)

// DashboardResponse is the landing payload shown after login.
type DashboardResponse struct {
	User          dto.UserResponse `json:"user"`
	ProfileKind   string           `json:"profile_kind,omitempty"`
	UnreadNotices int64            `json:"unread_notifications"`
}

// DashboardHandler serves the per-role landing pages.
type DashboardHandler struct {
	identity      service.IdentityService
	notifications service.NotificationService
	logger        zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(identity service.IdentityService, notifications service.NotificationService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		identity:      identity,
		notifications: notifications,
		logger:        logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Show renders the dashboard of the signed-in user. Role checks happen in the router.
func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, middleware.LoginRequiredMessage)
	}

	ctx := c.UserContext()
	response := DashboardResponse{User: dto.NewUserResponse(*user)}

	profile, err := h.identity.GetProfile(ctx, user)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", user.ID).Msg("failed to load profile")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}
	if profile != nil {
		response.ProfileKind = profile.Role().String()
	}

	unread, err := h.notifications.UnreadCount(ctx, user.ID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", user.ID).Msg("failed to count notifications")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}
	response.UnreadNotices = unread

	return utils.SendSuccess(c, "dashboard", response)
}
