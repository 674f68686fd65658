package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/internship-api/internal/dto"
	"github.com/noah-isme/internship-api/internal/service"
	"github.com/noah-isme/internship-api/internal/utils"
)

const (
	activityDefaultPageSize = 25
	activityMaxPageSize     = 200
)

// AdminActivityHandler lets administrators page through the audit trail.
type AdminActivityHandler struct {
	activity service.ActivityService
	logger   zerolog.Logger
}

func NewAdminActivityHandler(activity service.ActivityService, logger zerolog.Logger) *AdminActivityHandler {
	return &AdminActivityHandler{
		activity: activity,
		logger:   logger.With().Str("component", "admin_activity_handler").Logger(),
	}
}

func (h *AdminActivityHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
}

func (h *AdminActivityHandler) list(c *fiber.Ctx) error {
	var query dto.ActivityListRequest
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity filter")
	}

	query.Page = max(query.Page, 1)
	switch {
	case query.PageSize <= 0:
		query.PageSize = activityDefaultPageSize
	case query.PageSize > activityMaxPageSize:
		query.PageSize = activityMaxPageSize
	}
	query.Action = strings.TrimSpace(query.Action)
	query.EntityType = strings.TrimSpace(query.EntityType)

	page, err := h.activity.List(c.UserContext(), query)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Interface("filter", query).Msg("activity log query failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity logs")
	}

	return utils.SendPage(c, "activity logs", page.Items, page.Pagination)
}
