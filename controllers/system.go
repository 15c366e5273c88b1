package controllers

import (
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"pubforge.dev/publisher-api/app"
)

// Lookup caches that are safe to rebuild on demand. Revoked token sets
// are intentionally left out, they must survive a purge.
var purgeablePatterns = []string{
	"user:*",
	"site-users:*",
	"health-check-overrides:*",
	"email:admin:list",
}

func PurgeCache(c *fiber.Ctx) error {
	rdb := app.Cache()

	for _, pattern := range purgeablePatterns {
		var cursor uint64

		for {
			entry, err := rdb.Do(c.Context(), rdb.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build()).AsScanEntry()
			if err != nil {
				sentry.CaptureException(err)
				return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{"error": []string{"Could not purge cache."}})
			}

			if len(entry.Elements) > 0 {
				if err := rdb.Do(c.Context(), rdb.B().Del().Key(entry.Elements...).Build()).Error(); err != nil {
					sentry.CaptureException(err)
					return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{"error": []string{"Could not purge cache."}})
				}
			}

			cursor = entry.Cursor
			if cursor == 0 {
				break
			}
		}
	}

	return c.Status(fiber.StatusNoContent).JSON(&fiber.Map{})
}

func GetCsrf(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNoContent).JSON(&fiber.Map{})
}
