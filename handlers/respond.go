// handlers/respond.go
package handlers

import (
	"wealthplay-service/models"

	"github.com/gofiber/fiber/v2"
)

// fail maps a service error onto the HTTP status its kind implies.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch models.KindOf(err) {
	case models.KindNotFound:
		status = fiber.StatusNotFound
	case models.KindInvalidInput:
		status = fiber.StatusBadRequest
	case models.KindConflict:
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{
		"error": models.MessageOf(err),
	})
}

func userID(c *fiber.Ctx) string {
	uid, _ := c.Locals("user_id").(string)
	return uid
}
