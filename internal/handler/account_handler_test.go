package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-api/internal/dto"
	"github.com/noah-isme/internship-api/internal/models"
	"github.com/noah-isme/internship-api/internal/service"
)

func TestAccountHandlerRequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/v1/me", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Please log in to access this page.", decodeEnvelope(t, resp).Message)
}

func TestAccountHandlerUpdatesOwnDetails(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "s@x.com", "secret1", models.RoleStudent, nil)
	token := env.token(t, user)

	resp := env.do(t, http.MethodPatch, "/api/v1/me", map[string]interface{}{
		"full_name": "  <b>Ada</b> O'Neil ",
		"phone":     "0801",
		"is_active": false,
	}, withBearer(token))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated dto.UserResponse
	decodeData(t, decodeEnvelope(t, resp), &updated)
	require.Equal(t, "Ada O'Neil", updated.FullName)
	require.Equal(t, "0801", updated.Phone)
	require.True(t, updated.IsActive)

	resp = env.do(t, http.MethodPatch, "/api/v1/me", map[string]interface{}{"full_name": ""}, withBearer(token))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAccountHandlerProfileByRole(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "s@x.com", "secret1", models.RoleStudent, service.StudentProfile{Student: models.Student{StudentID: "BU/CS/20/001", Level: "300"}})
	admin := env.createUser(t, "a@x.com", "secret1", models.RoleAdmin, nil)

	resp := env.do(t, http.MethodGet, "/api/v1/me/profile", nil, withBearer(env.token(t, student)))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var profile struct {
		Kind    string         `json:"kind"`
		Profile models.Student `json:"profile"`
	}
	decodeData(t, decodeEnvelope(t, resp), &profile)
	require.Equal(t, "student", profile.Kind)
	require.Equal(t, "BU/CS/20/001", profile.Profile.StudentID)
	require.Equal(t, student.ID, profile.Profile.UserID)

	resp = env.do(t, http.MethodGet, "/api/v1/me/profile", nil, withBearer(env.token(t, admin)))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var empty dto.ProfileResponse
	decodeData(t, decodeEnvelope(t, resp), &empty)
	require.Empty(t, empty.Kind)
	require.Nil(t, empty.Profile)
}

func TestAccountHandlerChangePassword(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "s@x.com", "secret1", models.RoleStudent, nil)
	token := env.token(t, user)

	resp := env.do(t, http.MethodPost, "/api/v1/me/password", dto.PasswordChangeRequest{CurrentPassword: "wrong", NewPassword: "secret2"}, withBearer(token))
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/me/password", dto.PasswordChangeRequest{CurrentPassword: "secret1", NewPassword: "123"}, withBearer(token))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "min", decodeEnvelope(t, resp).Details["newpassword"])

	resp = env.do(t, http.MethodPost, "/api/v1/me/password", dto.PasswordChangeRequest{CurrentPassword: "secret1", NewPassword: "secret2"}, withBearer(token))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	authenticated, err := env.identity.Authenticate(t.Context(), "s@x.com", "secret2")
	require.NoError(t, err)
	require.NotNil(t, authenticated)
}

func TestDashboardHandlerShowsUnreadCount(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "s@x.com", "secret1", models.RoleStudent, service.StudentProfile{})
	hod := env.createUser(t, "h@x.com", "secret1", models.RoleHOD, nil)

	_, err := env.notifications.Create(t.Context(), dto.NotificationCreateRequest{UserID: student.ID, Title: "Welcome", Message: "Hello"})
	require.NoError(t, err)

	resp := env.do(t, http.MethodGet, "/student/dashboard", nil, withBearer(env.token(t, student)))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var dashboard struct {
		ProfileKind string `json:"profile_kind"`
		Unread      int64  `json:"unread_notifications"`
	}
	decodeData(t, decodeEnvelope(t, resp), &dashboard)
	require.Equal(t, "student", dashboard.ProfileKind)
	require.Equal(t, int64(1), dashboard.Unread)

	resp = env.do(t, http.MethodGet, "/student/dashboard", nil, withBearer(env.token(t, hod)))
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
