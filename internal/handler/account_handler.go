package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/internship-api/internal/dto"
	"github.com/noah-isme/internship-api/internal/middleware"
	"github.com/noah-isme/internship-api/internal/service"
	"github.com/noah-isme/internship-api/internal/utils"
)

// AccountHandler lets the signed-in user view and maintain their own account.
type AccountHandler struct {
	identity  service.IdentityService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAccountHandler constructs the handler.
func NewAccountHandler(identity service.IdentityService, validate *validator.Validate, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		identity:  identity,
		validator: validate,
		logger:    logger.With().Str("component", "account_handler").Logger(),
	}
}

// Register binds the account routes. The router must already require a signed-in user.
func (h *AccountHandler) Register(router fiber.Router) {
	router.Get("/", h.me)
	router.Patch("/", h.update)
	router.Get("/profile", h.profile)
	router.Post("/password", h.changePassword)
}

func (h *AccountHandler) me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, middleware.LoginRequiredMessage)
	}
	return utils.SendSuccess(c, "account", dto.NewUserResponse(*user))
}

func (h *AccountHandler) update(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, middleware.LoginRequiredMessage)
	}

	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid account details", validationDetails(err))
	}

	ctx := c.UserContext()
	if err := h.identity.Update(ctx, user.ID, payload.Fields()); err != nil {
		if errors.Is(err, service.ErrInvalidUpdate) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", user.ID).Msg("failed to update account")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update account")
	}

	updated, err := h.identity.GetByID(ctx, user.ID)
	if err != nil || updated == nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", user.ID).Msg("failed to reload account")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update account")
	}

	audit(ctx, h.identity, requestLogger(h.logger, c), service.ActivityEntry{
		UserID:     user.ID,
		Action:     "profile.updated",
		EntityType: "user",
		EntityID:   &user.ID,
	})
	return utils.SendSuccess(c, "account updated", dto.NewUserResponse(*updated))
}

func (h *AccountHandler) profile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, middleware.LoginRequiredMessage)
	}

	profile, err := h.identity.GetProfile(c.UserContext(), user)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", user.ID).Msg("failed to load profile")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load profile")
	}

	response := dto.ProfileResponse{}
	switch p := profile.(type) {
	case service.StudentProfile:
		response = dto.ProfileResponse{Kind: p.Role().String(), Profile: p.Student}
	case service.HODProfile:
		response = dto.ProfileResponse{Kind: p.Role().String(), Profile: p.HOD}
	case service.SupervisorProfile:
		response = dto.ProfileResponse{Kind: p.Role().String(), Profile: p.OrganizationSupervisor}
	}
	return utils.SendSuccess(c, "profile", response)
}

func (h *AccountHandler) changePassword(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, middleware.LoginRequiredMessage)
	}

	var payload dto.PasswordChangeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid password", validationDetails(err))
	}

	ctx := c.UserContext()
	ok, err := h.identity.CheckPassword(ctx, user.ID, payload.CurrentPassword)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", user.ID).Msg("failed to verify password")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to change password")
	}
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "current password is incorrect")
	}

	if err := h.identity.ChangePassword(ctx, user.ID, payload.NewPassword); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", user.ID).Msg("failed to change password")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to change password")
	}
	return utils.SendSuccess(c, "password changed", nil)
}
