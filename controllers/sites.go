package controllers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"pubforge.dev/publisher-api/app"
	"pubforge.dev/publisher-api/guard"
	"pubforge.dev/publisher-api/helpers"
	"pubforge.dev/publisher-api/models"
	"pubforge.dev/publisher-api/settings"
	"pubforge.dev/publisher-api/utils"
)

func siteGuard() *guard.Guard {
	return guard.New(helpers.NewSiteUserStore())
}

func GetSiteSettings(c *fiber.Ctx) error {
	siteID, err := parseUuidParam(c, "site_id")
	if err != nil {
		return failWithError(c, err)
	}

	decision, err := siteGuard().AssertCanAccessSite(c.Context(), helpers.GetActor(c), siteID)
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	data, err := helpers.GetSiteSettings(c.Context(), siteID)
	if err != nil {
		return failWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"data":             data,
		"show_report_data": decision.ShowReportData,
	})
}

func PatchSiteSettings(c *fiber.Ctx) error {
	siteID, err := parseUuidParam(c, "site_id")
	if err != nil {
		return failWithError(c, err)
	}

	decision, err := siteGuard().AssertCanManageSiteSettings(c.Context(), helpers.GetActor(c), siteID)
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	input := map[string]any{}
	if err := json.Unmarshal(c.Body(), &input); err != nil {
		slog.Error(fmt.Sprintf("Error parsing input data: %v", err))

		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"The settings data is invalid."},
		})
	}

	categoryIDs, err := popCategoryIDs(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": fiber.Map{"category_ids": []string{"The category list is invalid."}},
		})
	}

	if err := helpers.ApplySettingsPatch(c.Context(), siteID, settings.Patch(input), categoryIDs); err != nil {
		return failWithError(c, err)
	}

	data, err := helpers.GetSiteSettings(c.Context(), siteID)
	if err != nil {
		return failWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{"data": data})
}

// popCategoryIDs splits the category list off the bag patch. A missing key
// means "leave the links alone", an empty list clears them.
func popCategoryIDs(input map[string]any) (*[]int64, error) {
	raw, ok := input["category_ids"]
	if !ok {
		return nil, nil
	}

	delete(input, "category_ids")

	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected category list type %T", raw)
	}

	ids := make([]int64, 0, len(list))

	for _, item := range list {
		n, ok := item.(float64)
		if !ok {
			return nil, fmt.Errorf("unexpected category ID type %T", item)
		}

		ids = append(ids, int64(n))
	}

	return &ids, nil
}

func GetSiteRevenueShare(c *fiber.Ctx) error {
	siteID, err := parseUuidParam(c, "site_id")
	if err != nil {
		return failWithError(c, err)
	}

	decision, err := siteGuard().AssertCanAccessSite(c.Context(), helpers.GetActor(c), siteID)
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	share, err := helpers.GetSiteRevenueShare(c.Context(), siteID)
	if err != nil {
		return failWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{"data": share})
}

type siteCreateInput struct {
	Domain        string  `json:"domain"`
	Title         *string `json:"title"`
	AnniversaryOn *string `json:"anniversary_on"`
	LiveOn        *string `json:"live_on"`
}

// CreateSite registers a new publisher site. Admin only. The domain is
// normalized to its hostname and must resolve to a registrable apex.
func CreateSite(c *fiber.Ctx) error {
	decision, err := siteGuard().AssertIsAdmin(helpers.GetActor(c))
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	input := &siteCreateInput{}
	if err := c.BodyParser(&input); err != nil {
		slog.Error(fmt.Sprintf("Error parsing input data: %v", err))

		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"The site data is invalid."},
		})
	}

	errs := fiber.Map{}

	hostname, err := utils.GetDomainHostname(input.Domain)
	if err != nil {
		errs = utils.AddError(errs, "domain", "Please, enter a valid domain.")
	} else if _, err := utils.GetApexDomain(hostname); err != nil {
		errs = utils.AddError(errs, "domain", "Please, enter a valid domain.")
	}

	anniversaryOn, err := parseDateInput(input.AnniversaryOn)
	if err != nil {
		errs = utils.AddError(errs, "anniversary_on", "The anniversary date is invalid.")
	}

	liveOn, err := parseDateInput(input.LiveOn)
	if err != nil {
		errs = utils.AddError(errs, "live_on", "The live date is invalid.")
	}

	if len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{"error": errs})
	}

	title := input.Title
	if title != nil {
		// Blank titles are stored as NULL.
		title = utils.ToStringPtr(*title)
	}

	site := &models.Site{
		Domain:        hostname,
		Title:         title,
		AnniversaryOn: anniversaryOn,
		LiveOn:        liveOn,
	}

	if err := app.DB().Create(&site).Error; err != nil {
		slog.Error(fmt.Sprintf("Error creating site: %v", err))

		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"Could not create the site."},
		})
	}

	setting := &models.SiteSetting{SiteID: site.ID}
	if err := app.DB().Where(&models.SiteSetting{SiteID: site.ID}).FirstOrCreate(&setting).Error; err != nil {
		slog.Error(fmt.Sprintf("Error creating site settings: %v", err))
	}

	return c.Status(fiber.StatusCreated).JSON(&fiber.Map{"data": site})
}

func parseDateInput(s *string) (*time.Time, error) {
	if s == nil || len(*s) < 1 {
		return nil, nil
	}

	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

type healthCheckOverrideInput struct {
	RevenueShare *float64 `json:"revenue_share"`
	Reason       *string  `json:"reason"`
	ExpiresAt    *string  `json:"expires_at"`
}

// PutHealthCheckOverride sets or replaces the manual revenue share of a
// site. Admin only.
func PutHealthCheckOverride(c *fiber.Ctx) error {
	siteID, err := parseUuidParam(c, "site_id")
	if err != nil {
		return failWithError(c, err)
	}

	decision, err := siteGuard().AssertIsAdmin(helpers.GetActor(c))
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	input := &healthCheckOverrideInput{}
	if err := c.BodyParser(&input); err != nil {
		slog.Error(fmt.Sprintf("Error parsing input data: %v", err))

		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"error": []string{"The override data is invalid."},
		})
	}

	errs := fiber.Map{}

	if input.RevenueShare != nil && (*input.RevenueShare < 0 || *input.RevenueShare > 1) {
		errs = utils.AddError(errs, "revenue_share", "The revenue share must be a decimal fraction between 0 and 1.")
	}

	var expiresAt *time.Time

	if input.ExpiresAt != nil {
		t, err := time.Parse(time.RFC3339, *input.ExpiresAt)
		if err != nil {
			errs = utils.AddError(errs, "expires_at", "The expiration date is invalid.")
		} else {
			expiresAt = &t
		}
	}

	if len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{"error": errs})
	}

	override := &models.HealthCheckOverride{
		SiteID:       siteID,
		RevenueShare: input.RevenueShare,
		Reason:       input.Reason,
		ExpiresAt:    expiresAt,
	}

	if err := helpers.SetHealthCheckOverride(c.Context(), override); err != nil {
		return failWithError(c, err)
	}

	return c.Status(fiber.StatusNoContent).JSON(&fiber.Map{})
}
