package middlewares

import (
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
)

const permissionDecisionKey = "permission_decision"

// RequireDecision fails any handler that produced a success response
// without recording a permission decision. Forgetting a guard call is a
// bug, and this turns it into a loud one instead of an open route.
func RequireDecision() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		if c.Locals(permissionDecisionKey) != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			return nil
		}

		err := fmt.Errorf("route %s %s responded without a permission decision", c.Method(), c.Path())
		sentry.CaptureException(err)
		slog.Error(err.Error())

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"error": []string{"Something went wrong. Please, try again later."},
		})
	}
}

// PolicyExempt marks a route as deliberately outside the per-site
// permission model, e.g. admin tooling already gated by the route policy.
func PolicyExempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(permissionDecisionKey, "exempt")

		return c.Next()
	}
}
