package routes

import (
	"github.com/gofiber/fiber/v2"
	"pubforge.dev/publisher-api/controllers"
	"pubforge.dev/publisher-api/middlewares"
)

func RegisterAuthRoutes(g fiber.Router) {
	g.Use(middlewares.AuthLimiter())

	// Public
	g.Post("/login", controllers.AuthLogin).Name("api.auth.login")

	// Private
	g.Use(middlewares.AuthProtected(), middlewares.ValidateJWT(), middlewares.CheckPermissions())
	g.Post("/check", controllers.AuthCheck).Name("api.auth.check")
	g.Post("/logout", controllers.AuthLogout).Name("api.auth.logout")
	g.Patch("/refresh", controllers.AuthRefresh).Name("api.auth.refresh")
	g.Patch("/password", controllers.AuthPasswordUpdate).Name("api.auth.password.update")
}
