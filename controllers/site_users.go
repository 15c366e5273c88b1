package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"pubforge.dev/publisher-api/app"
	"pubforge.dev/publisher-api/helpers"
	"pubforge.dev/publisher-api/models"
	"pubforge.dev/publisher-api/roles"
	"pubforge.dev/publisher-api/tasks"
	"pubforge.dev/publisher-api/utils"
)

type siteUserPayload struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id"`
	Email     string   `json:"email"`
	RolesMask int64    `json:"roles_mask"`
	Roles     []string `json:"roles"`
}

func GetSiteUsers(c *fiber.Ctx) error {
	siteID, err := parseUuidParam(c, "site_id")
	if err != nil {
		return failWithError(c, err)
	}

	decision, err := siteGuard().AssertCanManageSiteUsers(c.Context(), helpers.GetActor(c), siteID)
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	members, err := helpers.GetSiteMembers(c.Context(), siteID)
	if err != nil {
		return failWithError(c, err)
	}

	data := []siteUserPayload{}

	for _, m := range members {
		data = append(data, siteUserPayload{
			ID:        m.ID.String(),
			UserID:    m.UserID.String(),
			Email:     m.User.Email,
			RolesMask: m.RolesMask,
			Roles:     roles.Names(roles.RolesFromMask(m.RolesMask)),
		})
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{"data": data})
}

type siteUserInput struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// GrantSiteUser creates or updates a membership from a role name list.
func GrantSiteUser(c *fiber.Ctx) error {
	siteID, err := parseUuidParam(c, "site_id")
	if err != nil {
		return failWithError(c, err)
	}

	decision, err := siteGuard().AssertCanManageSiteUsers(c.Context(), helpers.GetActor(c), siteID)
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	input := &siteUserInput{}
	if err := c.BodyParser(&input); err != nil {
		slog.Error(fmt.Sprintf("Error parsing input data: %v", err))

		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"The site user data is invalid."},
		})
	}

	errs := fiber.Map{}

	if !utils.IsValidEmail(input.Email) {
		errs = utils.AddError(errs, "email", "Please, enter a valid email address.")
	}

	roleList, err := roles.FromNames(utils.CleanStringList(input.Roles))
	if err != nil {
		errs = utils.AddError(errs, "roles", "The role list contains unknown roles.")
	} else if len(roleList) < 1 {
		errs = utils.AddError(errs, "roles", "Please, select at least one role.")
	}

	if len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{"error": errs})
	}

	active := true
	user := &models.User{Email: input.Email, Active: &active}
	if err := app.DB().Where(&user).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(&fiber.Map{
			"error": []string{"The user could not be found."},
		})
	}

	su, err := helpers.GrantSiteAccess(c.Context(), siteID, user.ID, roles.MaskFromRoles(roleList))
	if err != nil {
		return failWithError(c, err)
	}

	userName := user.GetFullName()

	time.AfterFunc(3*time.Second, func() {
		if err := tasks.NewEmail(
			helpers.EmailOpts{
				Subject:      "Site access granted",
				TemplateName: "site_access_granted",
				ToList:       []string{user.Email},
			},
			map[string]interface{}{
				"UserName": userName,
				"Roles":    roles.Names(roles.RolesFromMask(su.RolesMask)),
			},
		); err != nil {
			sentry.CaptureException(err)
			slog.Error(fmt.Sprintf("Error sending email: %v", err))
		}
	})

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{"data": siteUserPayload{
		ID:        su.ID.String(),
		UserID:    su.UserID.String(),
		Email:     user.Email,
		RolesMask: su.RolesMask,
		Roles:     roles.Names(roles.RolesFromMask(su.RolesMask)),
	}})
}

type siteUserUpdateInput struct {
	Roles []string `json:"roles"`
}

// UpdateSiteUser replaces the role list of an existing membership.
func UpdateSiteUser(c *fiber.Ctx) error {
	siteID, err := parseUuidParam(c, "site_id")
	if err != nil {
		return failWithError(c, err)
	}

	userID, err := parseUuidParam(c, "user_id")
	if err != nil {
		return failWithError(c, err)
	}

	decision, err := siteGuard().AssertCanManageSiteUsers(c.Context(), helpers.GetActor(c), siteID)
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	input := &siteUserUpdateInput{}
	if err := c.BodyParser(&input); err != nil {
		slog.Error(fmt.Sprintf("Error parsing input data: %v", err))

		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"The site user data is invalid."},
		})
	}

	errs := fiber.Map{}

	roleList, err := roles.FromNames(utils.CleanStringList(input.Roles))
	if err != nil {
		errs = utils.AddError(errs, "roles", "The role list contains unknown roles.")
	} else if len(roleList) < 1 {
		errs = utils.AddError(errs, "roles", "Please, select at least one role.")
	}

	if len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{"error": errs})
	}

	su, err := helpers.UpdateSiteAccess(c.Context(), siteID, userID, roles.MaskFromRoles(roleList))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(&fiber.Map{
				"error": []string{"The site user could not be found."},
			})
		}

		return failWithError(c, err)
	}

	user := &models.User{ID: su.UserID}
	if err := app.DB().Where(&user).First(&user).Error; err != nil {
		slog.Error(fmt.Sprintf("Error loading site user: %v", err))
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{"data": siteUserPayload{
		ID:        su.ID.String(),
		UserID:    su.UserID.String(),
		Email:     user.Email,
		RolesMask: su.RolesMask,
		Roles:     roles.Names(roles.RolesFromMask(su.RolesMask)),
	}})
}

// RevokeSiteUser removes the membership. The delete hook rotates the user's
// token secret, so open sessions die with the access.
func RevokeSiteUser(c *fiber.Ctx) error {
	siteID, err := parseUuidParam(c, "site_id")
	if err != nil {
		return failWithError(c, err)
	}

	userID, err := parseUuidParam(c, "user_id")
	if err != nil {
		return failWithError(c, err)
	}

	decision, err := siteGuard().AssertCanManageSiteUsers(c.Context(), helpers.GetActor(c), siteID)
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	user := &models.User{ID: userID}
	if err := app.DB().Where(&user).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(&fiber.Map{
			"error": []string{"The site user could not be found."},
		})
	}

	if err := helpers.RevokeSiteAccess(c.Context(), siteID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(&fiber.Map{
				"error": []string{"The site user could not be found."},
			})
		}

		return failWithError(c, err)
	}

	userName := user.GetFullName()
	userEmail := user.Email

	time.AfterFunc(3*time.Second, func() {
		if err := tasks.NewEmail(
			helpers.EmailOpts{
				Subject:      "Site access revoked",
				TemplateName: "site_access_revoked",
				ToList:       []string{userEmail},
			},
			map[string]interface{}{
				"UserName": userName,
			},
		); err != nil {
			sentry.CaptureException(err)
			slog.Error(fmt.Sprintf("Error sending email: %v", err))
		}
	})

	return c.Status(fiber.StatusNoContent).JSON(&fiber.Map{})
}
