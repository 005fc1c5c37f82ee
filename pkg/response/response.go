package response

import "github.com/gofiber/fiber/v2"

// Envelope is the body of every API response: Data on success, Error on failure.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success writes {"success": true, "data": data} with the given status.
func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(Envelope{Success: true, Data: data})
}

// Error writes {"success": false, "error": message} with the given status.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Success: false, Error: message})
}
