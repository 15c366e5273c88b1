package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

var startedAt = time.Now()

func RegisterHealthCheckRoutes(g fiber.Router) {
	g.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"healthy": true,
			"service": "publisher-api",
			"uptime":  int64(time.Since(startedAt).Seconds()),
		})
	})
}
