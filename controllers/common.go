package controllers

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"pubforge.dev/publisher-api/apperr"
	"pubforge.dev/publisher-api/guard"
)

// failWithError maps a business failure to its HTTP envelope. Unknown
// errors are reported and come out as an opaque 500.
func failWithError(c *fiber.Ctx, err error) error {
	status := apperr.StatusCode(err)
	message := "Something went wrong. Please, try again later."

	e := &apperr.Error{}
	if errors.As(err, &e) {
		message = e.Message
	} else {
		sentry.CaptureException(err)
		slog.Error(fmt.Sprintf("Unhandled error: %v", err))
	}

	return c.Status(status).JSON(&fiber.Map{"error": []string{message}})
}

func parseUuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.NotFound("The requested resource could not be found.")
	}

	return id, nil
}

// recordDecision stores the permission decision a handler produced so the
// routing layer can verify one exists before the response leaves.
func recordDecision(c *fiber.Ctx, d guard.Decision) {
	c.Locals("permission_decision", d)
}
