package helpers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"pubforge.dev/publisher-api/app"
	"pubforge.dev/publisher-api/guard"
	"pubforge.dev/publisher-api/models"
	"pubforge.dev/publisher-api/utils"
)

func UserExists(id uuid.UUID, email string) bool {
	if !utils.IsValidUuid(id) || !utils.IsValidEmail(email) {
		return false
	}

	cachedUser, err := app.Cache().DoCache(context.Background(), app.Cache().B().Get().Key(fmt.Sprintf("user:%s", id.String())).Cache(), 5*time.Minute).ToString()
	if err != nil && !errors.Is(err, rueidis.Nil) {
		slog.Warn(fmt.Sprintf("Could not get cached user: %v", err))
	}

	exists := len(cachedUser) > 0 && cachedUser == email

	if exists {
		return true
	}

	user := &models.User{}
	if err := app.DB().Where(&models.User{ID: id, Email: email}).First(&user).Error; err != nil {
		return false
	}

	exists = utils.IsValidUuid(user.ID)

	if exists {
		if err := app.Cache().Do(context.Background(), app.Cache().B().Set().Key(fmt.Sprintf("user:%s", id.String())).Value(user.Email).Ex(time.Hour).Build()).Error(); err != nil {
			slog.Error(fmt.Sprintf("Could not save user to cache: %v", err))
		}
	}

	return exists
}

// TokenSecretMatches compares a token's embedded secret against the stored
// one. It reads the row uncached so a rotation cuts off old tokens on the
// very next request.
func TokenSecretMatches(id uuid.UUID, secret string) bool {
	if !utils.IsValidUuid(id) || len(secret) < 1 {
		return false
	}

	user := &models.User{}
	if err := app.DB().Where(&models.User{ID: id}).First(&user).Error; err != nil {
		return false
	}

	return user.TokenSecret == secret
}

// GetActor extracts the authenticated caller for permission checks. It
// returns nil when the request carries no valid access token, which the
// guard rejects before touching storage.
func GetActor(c *fiber.Ctx) *guard.Actor {
	jwe, ok := c.Locals(utils.AccessTokenContextKey()).(string)
	if !ok || len(jwe) < 1 {
		return nil
	}

	claims, err := utils.ParseJWEClaims(jwe)
	if err != nil {
		return nil
	}

	return &guard.Actor{ID: claims.User.ID, IsAdmin: claims.User.IsAdmin}
}
