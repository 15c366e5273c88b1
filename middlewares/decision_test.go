package middlewares

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestRequireDecisionBlocksUndecidedRoutes(t *testing.T) {
	app := fiber.New()
	app.Use(RequireDecision())
	app.Get("/naked", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/naked", nil))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestRequireDecisionPassesRecordedDecisions(t *testing.T) {
	app := fiber.New()
	app.Use(RequireDecision())
	app.Get("/decided", func(c *fiber.Ctx) error {
		c.Locals(permissionDecisionKey, "granted")
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/decided", nil))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireDecisionPassesExemptRoutes(t *testing.T) {
	app := fiber.New()
	app.Use(RequireDecision())
	app.Get("/exempt", PolicyExempt(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/exempt", nil))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireDecisionLeavesFailuresAlone(t *testing.T) {
	app := fiber.New()
	app.Use(RequireDecision())
	app.Get("/denied", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusForbidden).JSON(&fiber.Map{"error": []string{"no"}})
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/denied", nil))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
