package utils

import "github.com/gofiber/fiber/v2"

// APIResponse is the envelope shared by every LearnHub endpoint.
type APIResponse struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message"`
	Meta    interface{}       `json:"meta,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// SendSuccess writes a 200 envelope.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// Created writes a 201 envelope for a newly stored resource.
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusCreated, message, data)
}

// SendSuccessWithStatus writes a success envelope with an explicit status.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if status == 0 {
		status = fiber.StatusOK
	}
	return write(c, status, APIResponse{Success: true, Data: data, Message: message})
}

// OK writes a 200 envelope carrying pagination or summary metadata.
func OK(c *fiber.Ctx, data interface{}, message string, meta interface{}) error {
	return write(c, fiber.StatusOK, APIResponse{Success: true, Data: data, Message: message, Meta: meta})
}

// SendError writes a failure envelope.
func SendError(c *fiber.Ctx, status int, message string) error {
	return Fail(c, status, message, nil)
}

// Fail writes a failure envelope with per-field messages.
func Fail(c *fiber.Ctx, status int, message string, details map[string]string) error {
	return write(c, status, APIResponse{Success: false, Message: message, Details: details})
}

func write(c *fiber.Ctx, status int, body APIResponse) error {
	if body.Message == "" {
		if body.Success {
			body.Message = "success"
		} else {
			body.Message = "error"
		}
	}
	return c.Status(status).JSON(body)
}
