package middleware

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/rs/zerolog"

	"github.com/noah-isme/internship-api/internal/models"
	"github.com/noah-isme/internship-api/internal/observability"
	"github.com/noah-isme/internship-api/internal/service"
	"github.com/noah-isme/internship-api/internal/utils"
)

// LoginRequiredMessage is shown to anonymous visitors of protected pages.
const LoginRequiredMessage = "Please log in to access this page."

// LoginPath is where anonymous visitors are sent.
const LoginPath = "/auth/login"

const (
	sessionUserKey       = "user_id"
	flashMessageKey      = "flash_message"
	flashCategoryKey     = "flash_category"
	localsCurrentUser    = "current_user"
	localsUserID         = "user_id"
	localsUserRole       = "user_role"
	defaultSessionTTL    = 24 * time.Hour
	defaultSessionCookie = "internship_session"
)

// SessionConfig configures the session cookie and lifetime.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// NewSessionStore builds the in-process session store. The cookie only carries the opaque session id.
func NewSessionStore(cfg SessionConfig) *session.Store {
	name := strings.TrimSpace(cfg.CookieName)
	if name == "" {
		name = defaultSessionCookie
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	return session.New(session.Config{
		Expiration:     ttl,
		KeyLookup:      "cookie:" + name,
		CookiePath:     "/",
		CookieSecure:   cfg.Secure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
}

// SessionBinder resolves the current user from the session, or from a bearer token for API
// clients, and exposes it through CurrentUser. Missing ids, failed lookups and deleted users leave
// the request anonymous. An inactive user is treated as anonymous and their session is destroyed.
func SessionBinder(identity service.IdentityService, store *session.Store, tokens service.TokenService, logger zerolog.Logger) fiber.Handler {
	log := logger.With().Str("component", "session_binder").Logger()

	return func(c *fiber.Ctx) error {
		var (
			userID uint
			sess   *session.Session
		)

		if token, ok := bearerToken(c); ok && tokens != nil {
			id, err := tokens.Parse(token)
			if err != nil {
				observability.SessionsRejected().WithLabelValues("invalid_token").Inc()
				return c.Next()
			}
			userID = id
		} else {
			current, err := store.Get(c)
			if err != nil {
				log.Warn().Err(err).Str("correlation_id", GetCorrelationID(c)).Msg("failed to load session")
				return c.Next()
			}
			sess = current
			if raw := sess.Get(sessionUserKey); raw != nil {
				if id, err := normalizeUserID(raw); err == nil {
					userID = id
				}
			}
		}

		if userID == 0 {
			return c.Next()
		}

		user, err := identity.GetByID(c.UserContext(), userID)
		if err != nil {
			log.Warn().Err(err).Uint("user_id", userID).Str("correlation_id", GetCorrelationID(c)).Msg("failed to load session user")
			return c.Next()
		}

		switch {
		case user == nil:
			observability.SessionsRejected().WithLabelValues("missing").Inc()
			destroySession(sess, log)
			return c.Next()
		case !user.IsActive:
			observability.SessionsRejected().WithLabelValues("inactive").Inc()
			destroySession(sess, log)
			return c.Next()
		}

		c.Locals(localsCurrentUser, user)
		c.Locals(localsUserID, user.ID)
		c.Locals(localsUserRole, user.Role.String())
		return c.Next()
	}
}

func destroySession(sess *session.Session, log zerolog.Logger) {
	if sess == nil {
		return
	}
	if err := sess.Destroy(); err != nil {
		log.Warn().Err(err).Msg("failed to destroy session")
	}
}

// CurrentUser returns the user bound to the request, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localsCurrentUser).(*models.User)
	return user
}

// LoginRequired rejects anonymous requests. Browsers are redirected to the login page with a flash
// message; API clients receive 401.
func LoginRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) != nil {
			return c.Next()
		}

		if WantsJSON(c) {
			return utils.SendError(c, fiber.StatusUnauthorized, LoginRequiredMessage)
		}

		if err := SetFlash(c, store, "info", LoginRequiredMessage); err != nil {
			return err
		}
		return c.Redirect(LoginPath+"?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
	}
}

// WantsJSON reports whether the client expects a JSON response rather than a page.
func WantsJSON(c *fiber.Ctx) bool {
	if strings.HasPrefix(c.Path(), "/api/") {
		return true
	}
	if strings.EqualFold(c.Get(fiber.HeaderXRequestedWith), "xmlhttprequest") {
		return true
	}
	if c.Get(fiber.HeaderAccept) == "" {
		return false
	}
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}

// StartSession binds userID to a fresh session. The session id is regenerated to prevent fixation.
func StartSession(c *fiber.Ctx, store *session.Store, userID uint) error {
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(sessionUserKey, userID)
	return sess.Save()
}

// EndSession destroys the current session.
func EndSession(c *fiber.Ctx, store *session.Store) error {
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

// SetFlash stores a one-shot message for the next page the visitor sees.
func SetFlash(c *fiber.Ctx, store *session.Store, category, message string) error {
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(flashCategoryKey, category)
	sess.Set(flashMessageKey, message)
	return sess.Save()
}

// PopFlash returns and clears the pending flash message.
func PopFlash(c *fiber.Ctx, store *session.Store) (category, message string, err error) {
	sess, err := store.Get(c)
	if err != nil {
		return "", "", err
	}
	message, _ = sess.Get(flashMessageKey).(string)
	if message == "" {
		return "", "", nil
	}
	category, _ = sess.Get(flashCategoryKey).(string)
	sess.Delete(flashMessageKey)
	sess.Delete(flashCategoryKey)
	return category, message, sess.Save()
}
