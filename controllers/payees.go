package controllers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"pubforge.dev/publisher-api/helpers"
	"pubforge.dev/publisher-api/payees"
	"pubforge.dev/publisher-api/tasks"
	"pubforge.dev/publisher-api/utils"
)

func payeeManager() *payees.Manager {
	return payees.NewManager(helpers.NewPayeeStore(), payees.NewSigner(utils.PortalBaseURL(), utils.PortalHashKey()))
}

func payeeCaller(c *fiber.Ctx) *payees.Caller {
	actor := helpers.GetActor(c)
	if actor == nil {
		return nil
	}

	return &payees.Caller{ID: actor.ID, IsAdmin: actor.IsAdmin}
}

func GetSitePayeeSettings(c *fiber.Ctx) error {
	siteID, err := parseUuidParam(c, "site_id")
	if err != nil {
		return failWithError(c, err)
	}

	decision, err := siteGuard().AssertCanManagePayees(c.Context(), helpers.GetActor(c), siteID)
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	data, err := payeeManager().GetSitePayeeSettings(c.Context(), siteID, c.Get("Referer"))
	if err != nil {
		return failWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{"data": data})
}

type payeeCreateInput struct {
	Name string `json:"name"`
}

func CreateSitePayee(c *fiber.Ctx) error {
	siteID, err := parseUuidParam(c, "site_id")
	if err != nil {
		return failWithError(c, err)
	}

	decision, err := siteGuard().AssertCanManagePayees(c.Context(), helpers.GetActor(c), siteID)
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	input := &payeeCreateInput{}
	if err := c.BodyParser(&input); err != nil {
		slog.Error(fmt.Sprintf("Error parsing input data: %v", err))

		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"The payee data is invalid."},
		})
	}

	if len(utils.CleanString(input.Name)) < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": fiber.Map{"name": []string{"Please, enter the payee name."}},
		})
	}

	payee, err := payeeManager().CreatePayeeForSite(c.Context(), siteID, utils.CleanString(input.Name))
	if err != nil {
		return failWithError(c, err)
	}

	if staff := utils.InternalStaffEmail(); len(staff) > 0 {
		payeeName := payee.Name

		time.AfterFunc(3*time.Second, func() {
			if err := tasks.NewEmail(
				helpers.EmailOpts{
					Subject:      "New payee created",
					TemplateName: "payee_created_staff",
					ToList:       []string{staff},
					IsInternal:   true,
				},
				map[string]interface{}{
					"PayeeName": payeeName,
					"SiteID":    siteID.String(),
				},
			); err != nil {
				sentry.CaptureException(err)
				slog.Error(fmt.Sprintf("Error sending email: %v", err))
			}
		})
	}

	return c.Status(fiber.StatusCreated).JSON(&fiber.Map{"data": payee})
}

// ChooseSitePayee points the site at an existing payee, proving cross-site
// access for non-admins.
func ChooseSitePayee(c *fiber.Ctx) error {
	siteID, err := parseUuidParam(c, "site_id")
	if err != nil {
		return failWithError(c, err)
	}

	payeeID, err := parseUuidParam(c, "payee_id")
	if err != nil {
		return failWithError(c, err)
	}

	decision, err := siteGuard().AssertCanManagePayees(c.Context(), helpers.GetActor(c), siteID)
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	if err := payeeManager().ChoosePayee(c.Context(), payeeCaller(c), siteID, payeeID); err != nil {
		return failWithError(c, err)
	}

	return c.Status(fiber.StatusNoContent).JSON(&fiber.Map{})
}

// ConfirmSitePayee marks the attached payee as completed on the payment
// processor side.
func ConfirmSitePayee(c *fiber.Ctx) error {
	siteID, err := parseUuidParam(c, "site_id")
	if err != nil {
		return failWithError(c, err)
	}

	decision, err := siteGuard().AssertCanManagePayees(c.Context(), helpers.GetActor(c), siteID)
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	if err := payeeManager().ConfirmPayee(c.Context(), siteID); err != nil {
		return failWithError(c, err)
	}

	return c.Status(fiber.StatusNoContent).JSON(&fiber.Map{})
}

func ConfirmSitePayeeName(c *fiber.Ctx) error {
	siteID, err := parseUuidParam(c, "site_id")
	if err != nil {
		return failWithError(c, err)
	}

	decision, err := siteGuard().AssertCanManagePayees(c.Context(), helpers.GetActor(c), siteID)
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	if err := payeeManager().ConfirmPayeeName(c.Context(), siteID); err != nil {
		return failWithError(c, err)
	}

	return c.Status(fiber.StatusNoContent).JSON(&fiber.Map{})
}
