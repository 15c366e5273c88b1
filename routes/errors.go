package routes

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

func RegisterErrorHandlers(g fiber.Router) {
	// 404 Handler
	g.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(&fiber.Map{
			"error": []string{fmt.Sprintf("The requested resource '%s' could not be found.", c.Path())},
		})
	})
}
