package routes

import (
	"github.com/gofiber/fiber/v2"
	"pubforge.dev/publisher-api/controllers"
	"pubforge.dev/publisher-api/middlewares"
)

func RegisterSystemRoutes(g fiber.Router) {
	// Public
	g.Get("/csrf", controllers.GetCsrf).Name("api.system.csrf")

	// Private
	g.Use(middlewares.AuthProtected(), middlewares.ValidateJWT(), middlewares.CheckPermissions())
	g.Post("/cache/purge", middlewares.PolicyExempt(), controllers.PurgeCache).Name("api.system.cache.purge")
}
