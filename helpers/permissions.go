package helpers

import (
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"pubforge.dev/publisher-api/app"
)

// HasPermission enforces the route policy for the caller. Admins carry both
// subjects, so every user route stays reachable for them.
func HasPermission(isAdmin bool, p string, m string) bool {
	subjects := []string{"user"}

	if isAdmin {
		subjects = append(subjects, "admin")
	}

	ps := [][]interface{}{}

	for _, sub := range subjects {
		ps = append(ps, []interface{}{sub, p, m})
	}

	result, err := app.Auth().BatchEnforce(ps)
	if err != nil {
		sentry.CaptureException(err)
		slog.Error(fmt.Sprintf("Enforce error: %v", err))
		return false
	}

	for _, val := range result {
		if val {
			return true
		}
	}

	return false
}
