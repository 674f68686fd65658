package utils

import "github.com/gofiber/fiber/v2"

const (
	defaultSuccessMessage = "success"
	defaultErrorMessage   = "error"
)

// APIResponse is the JSON envelope shared by every endpoint. Data is set on success, Details on
// failures that carry field level information, and Meta on paginated lists.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
	Meta    interface{} `json:"meta,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func write(c *fiber.Ctx, status int, body APIResponse) error {
	if body.Message == "" {
		if body.Success {
			body.Message = defaultSuccessMessage
		} else {
			body.Message = defaultErrorMessage
		}
	}
	return c.Status(status).JSON(body)
}

// SendSuccess replies 200 with data.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return write(c, fiber.StatusOK, APIResponse{Success: true, Message: message, Data: data})
}

// Created replies 201 with the stored resource.
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return write(c, fiber.StatusCreated, APIResponse{Success: true, Message: message, Data: data})
}

// SendPage replies 200 with one page of items and its pagination metadata.
func SendPage(c *fiber.Ctx, message string, items, meta interface{}) error {
	return write(c, fiber.StatusOK, APIResponse{Success: true, Message: message, Data: items, Meta: meta})
}

// SendError replies with status and a message only.
func SendError(c *fiber.Ctx, status int, message string) error {
	return Fail(c, status, message, nil)
}

// Fail replies with status, a message and optional details such as validation failures.
func Fail(c *fiber.Ctx, status int, message string, details interface{}) error {
	return write(c, status, APIResponse{Message: message, Details: details})
}
