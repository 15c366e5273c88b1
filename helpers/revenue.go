package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"pubforge.dev/publisher-api/app"
	"pubforge.dev/publisher-api/apperr"
	"pubforge.dev/publisher-api/models"
	"pubforge.dev/publisher-api/revenue"
	"pubforge.dev/publisher-api/settings"
	"pubforge.dev/publisher-api/utils"
)

func overrideCacheKey(siteID uuid.UUID) string {
	return fmt.Sprintf("health-check-overrides:%s", siteID.String())
}

// GetHealthCheckOverride returns the site's active manual revenue share, or
// nil when none is set or the override has expired. Hits are cached briefly,
// expiry is re-checked on every read so a cached row cannot outlive it.
func GetHealthCheckOverride(ctx context.Context, siteID uuid.UUID) (*float64, error) {
	override := &models.HealthCheckOverride{}

	cached, err := app.Cache().DoCache(ctx, app.Cache().B().Get().Key(overrideCacheKey(siteID)).Cache(), 5*time.Minute).ToString()
	if err != nil && !errors.Is(err, rueidis.Nil) {
		slog.Warn(fmt.Sprintf("Could not get cached health check override: %v", err))
	}

	if len(cached) > 0 {
		if err := json.Unmarshal([]byte(cached), &override); err == nil {
			return activeOverrideShare(override, time.Now()), nil
		}

		slog.Error("Could not decode cached health check override.")
	}

	if err := app.DB().WithContext(ctx).
		Where(&models.HealthCheckOverride{SiteID: siteID}).
		First(&override).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	raw, err := json.Marshal(override)
	if err != nil {
		slog.Error(fmt.Sprintf("Could not serialize health check override for cache: %v", err))
		return activeOverrideShare(override, time.Now()), nil
	}

	if err := app.Cache().Do(ctx, app.Cache().B().Set().Key(overrideCacheKey(siteID)).Value(string(raw)).Ex(10*time.Minute).Build()).Error(); err != nil {
		slog.Error(fmt.Sprintf("Could not save health check override to cache: %v", err))
	}

	return activeOverrideShare(override, time.Now()), nil
}

func activeOverrideShare(override *models.HealthCheckOverride, now time.Time) *float64 {
	if override == nil || override.RevenueShare == nil {
		return nil
	}

	if override.ExpiresAt != nil && !override.ExpiresAt.After(now) {
		return nil
	}

	return override.RevenueShare
}

// SetHealthCheckOverride upserts the manual revenue share and drops the
// cached copy.
func SetHealthCheckOverride(ctx context.Context, override *models.HealthCheckOverride) error {
	existing := &models.HealthCheckOverride{}

	if err := app.DB().WithContext(ctx).
		Where(&models.HealthCheckOverride{SiteID: override.SiteID}).
		FirstOrCreate(&existing).Error; err != nil {
		return err
	}

	existing.RevenueShare = override.RevenueShare
	existing.Reason = override.Reason
	existing.ExpiresAt = override.ExpiresAt

	if err := app.DB().WithContext(ctx).Save(&existing).Error; err != nil {
		return err
	}

	if err := app.Cache().Do(ctx, app.Cache().B().Del().Key(overrideCacheKey(override.SiteID)).Build()).Error(); err != nil {
		slog.Error(fmt.Sprintf("Could not drop cached health check override: %v", err))
	}

	return nil
}

// GetSiteRevenueShare gathers everything the calculator needs in one
// concurrent pass and computes the effective figures.
func GetSiteRevenueShare(ctx context.Context, siteID uuid.UUID) (*revenue.Share, error) {
	now := time.Now().In(utils.DefaultLocation())
	from, to := revenue.Window(now)

	var site *models.Site
	var setting *models.SiteSetting
	var impressions int64
	var healthCheck *float64

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, err := NewSiteUserStore().FindSite(gctx, siteID)
		if err != nil {
			return err
		}

		site = s

		return nil
	})

	g.Go(func() error {
		s, err := FindSiteSetting(gctx, siteID)
		if err != nil {
			return err
		}

		setting = s

		return nil
	})

	g.Go(func() error {
		sum, err := SumPaidImpressions(gctx, siteID, from, to)
		if err != nil {
			return err
		}

		impressions = sum

		return nil
	})

	g.Go(func() error {
		share, err := GetHealthCheckOverride(gctx, siteID)
		if err != nil {
			return err
		}

		healthCheck = share

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if site == nil {
		return nil, apperr.NotFound("The site could not be found.")
	}

	var bag settings.Bag

	if setting != nil {
		bag = setting.BagData(settings.BagSettings)
	}

	share := revenue.Compute(revenue.Inputs{
		AnniversaryOn:       site.AnniversaryOn,
		LiveOn:              site.LiveOn,
		Flags:               tierFlags(bag),
		Impressions:         impressions,
		HealthCheckOverride: healthCheck,
		DisplayOverride:     bagNumber(bag, "display_revenue_share"),
		Now:                 now,
	})

	return &share, nil
}

// tierFlags maps the stored settings bag onto calculator flags. Most keys
// are stringified booleans, but pro membership is a status string and only
// the accepted state selects the pro tier.
func tierFlags(bag settings.Bag) revenue.TierFlags {
	return revenue.TierFlags{
		Owned:                bagFlag(bag, "owned"),
		PremiereAccepted:     bagFlag(bag, "premiere_accepted"),
		ProAccepted:          bagMatches(bag, "pro_accepted", "accepted"),
		LoyaltyBonusDisabled: bagFlag(bag, "loyalty_bonus_disabled"),
		Net30Payments:        bagFlag(bag, "net30_revenue_share_payments"),
	}
}

func bagNumber(bag settings.Bag, key string) *float64 {
	val, ok := bag[key]
	if !ok || val == nil {
		return nil
	}

	n, err := strconv.ParseFloat(*val, 64)
	if err != nil {
		return nil
	}

	return &n
}
