package utils_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-api/internal/utils"
)

func call(t *testing.T, handler fiber.Handler) (int, map[string]interface{}) {
	t.Helper()
	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestSendPageCarriesPagination(t *testing.T) {
	status, body := call(t, func(c *fiber.Ctx) error {
		return utils.SendPage(c, "", []string{"login"}, map[string]int{"page": 2})
	})

	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, true, body["success"])
	require.Equal(t, "success", body["message"])
	require.Equal(t, []interface{}{"login"}, body["data"])
	require.Equal(t, map[string]interface{}{"page": float64(2)}, body["meta"])
}

func TestCreatedUses201(t *testing.T) {
	status, body := call(t, func(c *fiber.Ctx) error {
		return utils.Created(c, "user created", map[string]string{"email": "a@baze.edu.ng"})
	})

	require.Equal(t, fiber.StatusCreated, status)
	require.Equal(t, "user created", body["message"])
	require.NotContains(t, body, "meta")
}

func TestFailKeepsDetailsAndDropsData(t *testing.T) {
	status, body := call(t, func(c *fiber.Ctx) error {
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", map[string]string{"email": "email"})
	})

	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, false, body["success"])
	require.Equal(t, map[string]interface{}{"email": "email"}, body["details"])
	require.NotContains(t, body, "data")
}

func TestSendErrorDefaultsMessage(t *testing.T) {
	status, body := call(t, func(c *fiber.Ctx) error {
		return utils.SendError(c, fiber.StatusUnauthorized, "")
	})

	require.Equal(t, fiber.StatusUnauthorized, status)
	require.Equal(t, "error", body["message"])
	require.NotContains(t, body, "details")
}
