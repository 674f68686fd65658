package handler

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/rs/zerolog"

	"github.com/noah-isme/internship-api/internal/dto"
	"github.com/noah-isme/internship-api/internal/middleware"
	"github.com/noah-isme/internship-api/internal/observability"
	"github.com/noah-isme/internship-api/internal/service"
	"github.com/noah-isme/internship-api/internal/utils"
)

const invalidCredentialsMessage = "Invalid email or password."

// AuthHandler serves login and logout.
type AuthHandler struct {
	identity   service.IdentityService
	tokens     service.TokenService
	guard      *service.LoginGuard
	store      *session.Store
	validator  *validator.Validate
	university string
	logger     zerolog.Logger
}

// NewAuthHandler constructs the handler. guard may be nil to disable login throttling.
func NewAuthHandler(
	identity service.IdentityService,
	tokens service.TokenService,
	guard *service.LoginGuard,
	store *session.Store,
	validate *validator.Validate,
	university string,
	logger zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		identity:   identity,
		tokens:     tokens,
		guard:      guard,
		store:      store,
		validator:  validate,
		university: university,
		logger:     logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register binds the auth routes. limit guards the credential check and may be nil.
func (h *AuthHandler) Register(router fiber.Router, limit fiber.Handler) {
	router.Get("/login", h.loginPage)
	if limit != nil {
		router.Post("/login", limit, h.login)
	} else {
		router.Post("/login", h.login)
	}
	router.Post("/logout", h.logout)
}

func (h *AuthHandler) loginPage(c *fiber.Ctx) error {
	if user := middleware.CurrentUser(c); user != nil {
		if middleware.WantsJSON(c) {
			return utils.SendSuccess(c, "already logged in", fiber.Map{"redirect": user.Role.DashboardPath()})
		}
		return c.Redirect(user.Role.DashboardPath(), fiber.StatusFound)
	}

	_, flash, err := middleware.PopFlash(c, h.store)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to read flash message")
	}

	return utils.SendSuccess(c, "login", dto.LoginPageResponse{
		University: h.university,
		Next:       safeNext(c.Query("next")),
		Flash:      flash,
	})
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "email and password are required", validationDetails(err))
	}

	ctx := c.UserContext()
	key := c.IP()
	if retry, locked := h.guard.Locked(ctx, key); locked {
		observability.LoginAttempts().WithLabelValues(observability.LoginLocked).Inc()
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(retry.Seconds())))
		return utils.SendError(c, fiber.StatusTooManyRequests, "too many failed login attempts, try again later")
	}

	user, err := h.identity.Authenticate(ctx, payload.Email, payload.Password)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("authentication failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to sign in")
	}
	if user == nil {
		h.guard.Fail(ctx, key)
		return utils.SendError(c, fiber.StatusUnauthorized, invalidCredentialsMessage)
	}
	h.guard.Reset(ctx, key)

	if err := middleware.StartSession(c, h.store, user.ID); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to start session")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to sign in")
	}

	token, expiresAt, err := h.tokens.Issue(*user)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to issue token")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to sign in")
	}

	redirect := safeNext(payload.Next)
	if redirect == "" {
		redirect = user.Role.DashboardPath()
	}

	requestLogger(h.logger, c).Info().Uint("user_id", user.ID).Str("role", user.Role.String()).Msg("user logged in")
	return utils.SendSuccess(c, "Welcome back, "+strings.TrimSpace(user.FullName)+"!", dto.LoginResponse{
		User:      dto.NewUserResponse(*user),
		Token:     token,
		ExpiresAt: expiresAt,
		Redirect:  redirect,
	})
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if user := middleware.CurrentUser(c); user != nil {
		audit(c.UserContext(), h.identity, requestLogger(h.logger, c), service.ActivityEntry{UserID: user.ID, Action: "logout"})
	}

	if err := middleware.EndSession(c, h.store); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to end session")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to sign out")
	}
	if err := middleware.SetFlash(c, h.store, "info", "You have been logged out."); err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to set logout flash")
	}

	if middleware.WantsJSON(c) {
		return utils.SendSuccess(c, "You have been logged out.", fiber.Map{"redirect": middleware.LoginPath})
	}
	return c.Redirect(middleware.LoginPath, fiber.StatusFound)
}
