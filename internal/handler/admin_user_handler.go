package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/internship-api/internal/dto"
	"github.com/noah-isme/internship-api/internal/models"
	"github.com/noah-isme/internship-api/internal/service"
	"github.com/noah-isme/internship-api/internal/utils"
)

// AdminUserHandler exposes user administration endpoints.
type AdminUserHandler struct {
	identity  service.IdentityService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAdminUserHandler constructs the handler.
func NewAdminUserHandler(identity service.IdentityService, validate *validator.Validate, logger zerolog.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		identity:  identity,
		validator: validate,
		logger:    logger.With().Str("component", "admin_user_handler").Logger(),
	}
}

// Register attaches user administration routes to the router group.
func (h *AdminUserHandler) Register(router fiber.Router) {
	router.Post("/", h.create)
	router.Get("/:id", h.detail)
	router.Patch("/:id", h.update)
}

func (h *AdminUserHandler) detail(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	user, err := h.identity.GetByID(c.UserContext(), id)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", id).Msg("failed to load user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load user")
	}
	if user == nil {
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	}

	return utils.SendSuccess(c, "user detail", dto.NewUserResponse(*user))
}

func (h *AdminUserHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var payload dto.AdminUserUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid user details", validationDetails(err))
	}

	actor := userIDFromContext(c)
	if actor == id && payload.IsActive != nil && !*payload.IsActive {
		return utils.SendError(c, fiber.StatusBadRequest, "administrators cannot deactivate themselves")
	}

	ctx := c.UserContext()
	existing, err := h.identity.GetByID(ctx, id)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", id).Msg("failed to load user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update user")
	}
	if existing == nil {
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	}

	fields := payload.Fields()
	if err := h.identity.Update(ctx, id, fields); err != nil {
		if errors.Is(err, service.ErrInvalidUpdate) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", id).Msg("failed to update user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update user")
	}

	updated, err := h.identity.GetByID(ctx, id)
	if err != nil || updated == nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", id).Msg("failed to reload user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update user")
	}

	changed := make([]string, 0, len(fields))
	for key := range fields {
		changed = append(changed, key)
	}
	audit(ctx, h.identity, requestLogger(h.logger, c), service.ActivityEntry{
		UserID:     actor,
		Action:     "user.updated",
		EntityType: "user",
		EntityID:   &id,
		Metadata:   map[string]interface{}{"fields": strings.Join(changed, ",")},
	})

	return utils.SendSuccess(c, "user updated", dto.NewUserResponse(*updated))
}

func (h *AdminUserHandler) create(c *fiber.Ctx) error {
	var payload dto.AdminUserCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid user details", validationDetails(err))
	}

	role, err := models.ParseRole(payload.Role)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user type")
	}

	user := &models.User{
		Email:    payload.Email,
		FullName: payload.FullName,
		Phone:    payload.Phone,
		Role:     role,
	}

	ctx := c.UserContext()
	if err := h.identity.Create(ctx, user, payload.Password, profileFromRequest(role, payload)); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return utils.SendError(c, fiber.StatusConflict, "email already registered")
		case errors.Is(err, service.ErrPasswordEmpty), errors.Is(err, service.ErrInvalidRole), errors.Is(err, service.ErrProfileRoleMismatch):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Str("role", role.String()).Msg("failed to create user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create user")
	}

	audit(ctx, h.identity, requestLogger(h.logger, c), service.ActivityEntry{
		UserID:     userIDFromContext(c),
		Action:     "user.created",
		EntityType: "user",
		EntityID:   &user.ID,
		Metadata:   map[string]interface{}{"user_type": role.String()},
	})

	return utils.Created(c, "user created", dto.NewUserResponse(*user))
}

func profileFromRequest(role models.Role, payload dto.AdminUserCreateRequest) service.Profile {
	switch role {
	case models.RoleStudent:
		return service.StudentProfile{Student: models.Student{
			StudentID:           strings.TrimSpace(payload.StudentID),
			Department:          strings.TrimSpace(payload.Department),
			Level:               strings.TrimSpace(payload.Level),
			MatriculationNumber: strings.TrimSpace(payload.MatriculationNumber),
		}}
	case models.RoleHOD:
		return service.HODProfile{HOD: models.HOD{
			StaffID:     strings.TrimSpace(payload.StaffID),
			Department:  strings.TrimSpace(payload.Department),
			Designation: strings.TrimSpace(payload.Designation),
		}}
	case models.RoleSupervisor:
		return service.SupervisorProfile{OrganizationSupervisor: models.OrganizationSupervisor{
			OrganizationName:    strings.TrimSpace(payload.OrganizationName),
			OrganizationAddress: strings.TrimSpace(payload.OrganizationAddress),
			Position:            strings.TrimSpace(payload.Position),
			Department:          strings.TrimSpace(payload.Department),
		}}
	}
	return nil
}
