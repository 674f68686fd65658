package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-api/internal/models"
	"github.com/noah-isme/internship-api/internal/service"
)

type stubIdentity struct {
	service.IdentityService
	users map[uint]*models.User
	err   error
}

func (s *stubIdentity) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

type sessionHarness struct {
	app      *fiber.App
	store    *session.Store
	identity *stubIdentity
	tokens   service.TokenService
}

func newSessionHarness(t *testing.T) *sessionHarness {
	t.Helper()
	h := &sessionHarness{
		store: NewSessionStore(SessionConfig{CookieName: "test_session", TTL: time.Hour}),
		identity: &stubIdentity{users: map[uint]*models.User{
			1: {ID: 1, Email: "student@x.com", Role: models.RoleStudent, IsActive: true},
			2: {ID: 2, Email: "gone@x.com", Role: models.RoleHOD, IsActive: false},
			3: {ID: 3, Email: "admin@x.com", Role: models.RoleAdmin, IsActive: true},
		}},
		tokens: service.NewTokenService("test-secret", time.Hour, "test"),
	}

	app := fiber.New()
	app.Post("/login/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return err
		}
		if err := StartSession(c, h.store, uint(id)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Use(SessionBinder(h.identity, h.store, h.tokens, zerolog.Nop()))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		if user := CurrentUser(c); user != nil {
			return c.SendString(user.Email)
		}
		return c.SendString("anonymous")
	})
	app.Get("/dashboard", LoginRequired(h.store), func(c *fiber.Ctx) error {
		return c.SendString("welcome")
	})
	app.Get("/api/v1/me", LoginRequired(h.store), func(c *fiber.Ctx) error {
		return c.SendString(CurrentUser(c).Email)
	})
	app.Get("/flash", func(c *fiber.Ctx) error {
		_, message, err := PopFlash(c, h.store)
		if err != nil {
			return err
		}
		return c.SendString(message)
	})
	h.app = app
	return h
}

func (h *sessionHarness) do(t *testing.T, method, path string, cookie *http.Cookie, headers map[string]string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, string(body)
}

func (h *sessionHarness) login(t *testing.T, id string) *http.Cookie {
	t.Helper()
	resp, _ := h.do(t, http.MethodPost, "/login/"+id, nil, nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	return sessionCookie(t, resp)
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "test_session" {
			return cookie
		}
	}
	t.Fatalf("session cookie not set")
	return nil
}

func TestSessionBinderResolvesActiveUser(t *testing.T) {
	h := newSessionHarness(t)
	cookie := h.login(t, "1")
	require.True(t, cookie.HttpOnly)

	_, body := h.do(t, http.MethodGet, "/whoami", cookie, nil)
	require.Equal(t, "student@x.com", body)
}

func TestSessionBinderTreatsInactiveUserAsAnonymous(t *testing.T) {
	h := newSessionHarness(t)
	cookie := h.login(t, "2")

	_, body := h.do(t, http.MethodGet, "/whoami", cookie, nil)
	require.Equal(t, "anonymous", body)

	h.identity.users[2].IsActive = true
	_, body = h.do(t, http.MethodGet, "/whoami", cookie, nil)
	require.Equal(t, "anonymous", body, "session must be destroyed, not merely skipped")
}

func TestSessionBinderAnonymousCases(t *testing.T) {
	h := newSessionHarness(t)

	_, body := h.do(t, http.MethodGet, "/whoami", nil, nil)
	require.Equal(t, "anonymous", body)

	cookie := h.login(t, "99")
	_, body = h.do(t, http.MethodGet, "/whoami", cookie, nil)
	require.Equal(t, "anonymous", body)

	cookie = h.login(t, "1")
	h.identity.err = errors.New("database unavailable")
	_, body = h.do(t, http.MethodGet, "/whoami", cookie, nil)
	require.Equal(t, "anonymous", body)
}

func TestSessionBinderAcceptsBearerToken(t *testing.T) {
	h := newSessionHarness(t)
	token, _, err := h.tokens.Issue(models.User{ID: 3, Role: models.RoleAdmin})
	require.NoError(t, err)

	_, body := h.do(t, http.MethodGet, "/whoami", nil, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, "admin@x.com", body)

	_, body = h.do(t, http.MethodGet, "/whoami", nil, map[string]string{"Authorization": "Bearer garbage"})
	require.Equal(t, "anonymous", body)
}

func TestLoginRequiredRedirectsBrowsersWithFlash(t *testing.T) {
	h := newSessionHarness(t)

	resp, _ := h.do(t, http.MethodGet, "/dashboard?tab=logs", nil, map[string]string{"Accept": "text/html"})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	location := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(location, "/auth/login?next="))
	require.Contains(t, location, "%2Fdashboard%3Ftab%3Dlogs")

	cookie := sessionCookie(t, resp)
	_, body := h.do(t, http.MethodGet, "/flash", cookie, nil)
	require.Equal(t, LoginRequiredMessage, body)

	_, body = h.do(t, http.MethodGet, "/flash", cookie, nil)
	require.Empty(t, body)
}

func TestLoginRequiredReturns401ForAPIClients(t *testing.T) {
	h := newSessionHarness(t)

	resp, body := h.do(t, http.MethodGet, "/api/v1/me", nil, nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, body, LoginRequiredMessage)

	resp, _ = h.do(t, http.MethodGet, "/dashboard", nil, map[string]string{"Accept": "application/json"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	cookie := h.login(t, "1")
	resp, body = h.do(t, http.MethodGet, "/api/v1/me", cookie, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "student@x.com", body)
}

func TestEndSessionLogsOut(t *testing.T) {
	h := newSessionHarness(t)
	h.app.Post("/logout", func(c *fiber.Ctx) error {
		if err := EndSession(c, h.store); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	cookie := h.login(t, "1")

	resp, _ := h.do(t, http.MethodPost, "/logout", cookie, nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	_, body := h.do(t, http.MethodGet, "/whoami", cookie, nil)
	require.Equal(t, "anonymous", body)
}
