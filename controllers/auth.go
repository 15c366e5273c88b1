package controllers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"pubforge.dev/publisher-api/app"
	"pubforge.dev/publisher-api/helpers"
	"pubforge.dev/publisher-api/models"
	"pubforge.dev/publisher-api/utils"
)

type userLoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func AuthLogin(c *fiber.Ctx) error {
	input := &userLoginInput{}
	if err := c.BodyParser(&input); err != nil {
		slog.Error(fmt.Sprintf("Error parsing input data: %v", err))

		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"The user data is invalid."},
		})
	}

	errs := fiber.Map{}

	if !utils.IsValidEmail(input.Email) {
		errs = utils.AddError(errs, "email", "Please, enter a valid email address.")
	}

	if len(input.Password) < utils.MinimumPasswordLength() {
		errs = utils.AddError(errs, "password", fmt.Sprintf("The password must be at least %d characters long.", utils.MinimumPasswordLength()))
	}

	if len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": errs,
		})
	}

	active := true
	user := &models.User{Email: input.Email, Active: &active}
	if err := app.DB().Where(&user).First(&user).Error; err != nil || !utils.ComparePasswordHash(input.Password, user.Password) {
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"The user credentials are invalid."},
		})
	}

	accessToken, err := helpers.NewAccessToken(user)
	if err != nil {
		slog.Error(fmt.Sprintf("Error generating access token: %v", err))
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"Could not generate access token."},
		})
	}

	refreshToken, err := helpers.NewRefreshToken(user)
	if err != nil {
		slog.Error(fmt.Sprintf("Error generating refresh token: %v", err))
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"Could not generate refresh token."},
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     utils.RefreshTokenContextKey(),
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(utils.RefreshTokenExpiration().Seconds()),
		Secure:   !utils.IsDebug(),
		HTTPOnly: true,
		SameSite: "Strict",
	})

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{"access_token": accessToken})
}

func AuthCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": []string{"Successful authentication."},
	})
}

// AuthRefresh mints a fresh access token against the stored user row, so a
// token secret rotation or an admin flag change takes effect here.
func AuthRefresh(c *fiber.Ctx) error {
	refreshJWE := c.Cookies(utils.RefreshTokenContextKey())
	if len(refreshJWE) < 1 {
		return c.Status(fiber.StatusForbidden).JSON(&fiber.Map{
			"error": []string{"The refresh token is not valid."},
		})
	}

	claims, err := utils.ParseJWEClaims(refreshJWE)
	if err != nil {
		sentry.CaptureException(err)
		slog.Error(fmt.Sprintf("Invalid refresh token claims: %v", err))

		return c.Status(fiber.StatusForbidden).JSON(&fiber.Map{
			"error": []string{"Invalid refresh token."},
		})
	}

	if !helpers.TokenSecretMatches(claims.User.ID, claims.User.Secret) {
		return c.Status(fiber.StatusForbidden).JSON(&fiber.Map{
			"error": []string{"The refresh token is no longer valid."},
		})
	}

	active := true
	user := &models.User{ID: claims.User.ID, Active: &active}
	if err := app.DB().Where(&user).First(&user).Error; err != nil {
		return c.Status(fiber.StatusForbidden).JSON(&fiber.Map{
			"error": []string{"The user account is not available."},
		})
	}

	accessToken, err := helpers.NewAccessToken(user)
	if err != nil {
		slog.Error(fmt.Sprintf("Error generating access token: %v", err))
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"Could not generate access token."},
		})
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{"access_token": accessToken})
}

type passwordUpdateInput struct {
	CurrentPassword string `json:"current_password"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// AuthPasswordUpdate changes the caller's password and rotates the token
// secret, which kills every other open session. A fresh access token for
// this session comes back in the response.
func AuthPasswordUpdate(c *fiber.Ctx) error {
	actor := helpers.GetActor(c)
	if actor == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(&fiber.Map{
			"error": []string{"You are not authenticated."},
		})
	}

	input := &passwordUpdateInput{}
	if err := c.BodyParser(&input); err != nil {
		slog.Error(fmt.Sprintf("Error parsing input data: %v", err))

		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"The password data is invalid."},
		})
	}

	active := true
	user := &models.User{ID: actor.ID, Active: &active}
	if err := app.DB().Where(&user).First(&user).Error; err != nil || !utils.ComparePasswordHash(input.CurrentPassword, user.Password) {
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"The user credentials are invalid."},
		})
	}

	errs := fiber.Map{}

	if len(input.Password) < utils.MinimumPasswordLength() {
		errs = utils.AddError(errs, "password", fmt.Sprintf("The password must be at least %d characters long.", utils.MinimumPasswordLength()))
	} else if input.Password != input.ConfirmPassword {
		errs = utils.AddError(errs, "confirm_password", "The passwords do not match.")
	}

	if strong, err := utils.ValidatePasswordStrength(input.Password, []string{strings.Split(user.Email, "@")[0]}); !utils.IsDebug() && !strong && err != nil {
		errs = utils.AddError(errs, "password", err.Error())
	}

	if len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{"error": errs})
	}

	secret, err := utils.RandomString(48)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"Could not update user password."},
		})
	}

	now := time.Now().In(utils.DefaultLocation())

	if err := app.DB().Model(&user).Updates(&models.User{
		Password:           utils.HashPassword(input.Password),
		TokenSecret:        secret,
		LastPasswordChange: &now,
	}).Error; err != nil {
		slog.Error(fmt.Sprintf("Error updating user password: %v", err))

		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"Could not update user password."},
		})
	}

	user.TokenSecret = secret

	accessToken, err := helpers.NewAccessToken(user)
	if err != nil {
		slog.Error(fmt.Sprintf("Error generating access token: %v", err))
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"Could not generate access token."},
		})
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{"access_token": accessToken})
}

// AuthLogout revokes the presented access token. The revocation set backs
// the middleware check, so the token dies even before its expiry.
func AuthLogout(c *fiber.Ctx) error {
	if len(c.Get("Authorization")) <= 7 {
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"Invalid access token."},
		})
	}

	tokenStr := c.Get("Authorization")[7:]

	claims, err := utils.ParseJWEClaims(tokenStr)
	if err != nil {
		sentry.CaptureException(err)
		slog.Error(fmt.Sprintf("Invalid access token claims: %v", err))

		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"Invalid access token."},
		})
	}

	defer c.Locals(utils.AccessTokenContextKey(), nil)

	if len(claims.ID) < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"Invalid access token."},
		})
	}

	if err := app.Cache().Do(context.Background(), app.Cache().B().Sadd().Key("access-tokens:revoked").Member(claims.ID).Build()).Error(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"Could not revoke access token."},
		})
	}

	c.ClearCookie(utils.RefreshTokenContextKey())

	return c.Status(fiber.StatusNoContent).JSON(&fiber.Map{})
}
