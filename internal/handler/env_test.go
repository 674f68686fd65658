package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/internship-api/internal/config"
	"github.com/noah-isme/internship-api/internal/database"
	"github.com/noah-isme/internship-api/internal/handler"
	"github.com/noah-isme/internship-api/internal/middleware"
	"github.com/noah-isme/internship-api/internal/models"
	"github.com/noah-isme/internship-api/internal/repository"
	"github.com/noah-isme/internship-api/internal/service"
)

const sessionCookieName = "test_session"

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Meta    json.RawMessage   `json:"meta"`
	Details map[string]string `json:"details"`
}

type testEnv struct {
	app           *fiber.App
	identity      service.IdentityService
	notifications service.NotificationService
	activity      service.ActivityService
	tokens        service.TokenService
	redis         *miniredis.Miniredis
}

type requestOption func(*http.Request)

func withBearer(token string) requestOption {
	return func(req *http.Request) { req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token) }
}

func withCookie(cookie *http.Cookie) requestOption {
	return func(req *http.Request) { req.AddCookie(cookie) }
}

func withHeader(key, value string) requestOption {
	return func(req *http.Request) { req.Header.Set(key, value) }
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.New(io.Discard)

	db, err := database.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), logger)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	validate := validator.New(validator.WithRequiredStructEnabled())
	manager := database.NewManager(db, logger)
	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), validate, logger)
	identity := service.NewIdentityService(
		repository.NewUserRepository(db),
		repository.NewProfileRepository(db),
		manager,
		service.NewPasswordHasher(bcrypt.MinCost),
		activity,
		logger,
	)
	tokens := service.NewTokenService("handler-test-secret", time.Hour, "test")
	guard := service.NewLoginGuard(client, 3, time.Minute, 10*time.Minute, logger)
	store := middleware.NewSessionStore(middleware.SessionConfig{CookieName: sessionCookieName, TTL: time.Hour})
	cfg := config.Config{AppName: "Internship API", AppEnv: "test", UniversityName: "Baze University", AcademicYear: "2024/2025"}

	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Use(middleware.ClientContext())
	app.Use(middleware.RequestScope(manager, logger))
	app.Use(middleware.SessionBinder(identity, store, tokens, logger))

	loginRequired := middleware.LoginRequired(store)
	app.Get("/", handler.Home)
	handler.NewAuthHandler(identity, tokens, guard, store, validate, cfg.UniversityName, logger).Register(app.Group("/auth"), nil)

	dashboard := handler.NewDashboardHandler(identity, notifications, logger)
	app.Get("/student/dashboard", loginRequired, middleware.RequireRole(models.RoleStudent), dashboard.Show)

	api := app.Group("/api/v1")
	api.Get("/about", handler.About(cfg))
	handler.NewAccountHandler(identity, validate, logger).Register(api.Group("/me", loginRequired))
	handler.NewNotificationHandler(notifications, logger).Register(api.Group("/notifications", loginRequired))

	admin := api.Group("/admin", loginRequired, middleware.RequireRole(models.RoleAdmin))
	handler.NewAdminUserHandler(identity, validate, logger).Register(admin.Group("/users"))
	handler.NewAdminActivityHandler(activity, logger).Register(admin.Group("/activity"))
	handler.NewAdminNotificationHandler(notifications, validate, logger).Register(admin.Group("/notifications"))

	return &testEnv{
		app:           app,
		identity:      identity,
		notifications: notifications,
		activity:      activity,
		tokens:        tokens,
		redis:         mr,
	}
}

func (e *testEnv) createUser(t *testing.T, email, password string, role models.Role, profile service.Profile) models.User {
	t.Helper()
	user := models.User{Email: email, FullName: "User " + string(role), Role: role}
	require.NoError(t, e.identity.Create(context.Background(), &user, password, profile))
	return user
}

func (e *testEnv) token(t *testing.T, user models.User) string {
	t.Helper()
	token, _, err := e.tokens.Issue(user)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, opts ...requestOption) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var out envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func decodeData(t *testing.T, env envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, target))
}

func jsonUnmarshal(raw json.RawMessage, target interface{}) error {
	return json.Unmarshal(raw, target)
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie
		}
	}
	t.Fatalf("session cookie not set")
	return nil
}
