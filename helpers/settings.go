package helpers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"pubforge.dev/publisher-api/app"
	"pubforge.dev/publisher-api/models"
	"pubforge.dev/publisher-api/settings"
)

// FindSiteSetting returns the site's settings row, or nil without an error
// when none has been written yet.
func FindSiteSetting(ctx context.Context, siteID uuid.UUID) (*models.SiteSetting, error) {
	setting := &models.SiteSetting{}

	if err := app.DB().WithContext(ctx).
		Where(&models.SiteSetting{SiteID: siteID}).
		First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return setting, nil
}

// SettingsFlag reads one boolean key out of the settings bag. Missing rows,
// missing keys and non-boolean values all read as false.
func SettingsFlag(ctx context.Context, siteID uuid.UUID, key string) (bool, error) {
	setting, err := FindSiteSetting(ctx, siteID)
	if err != nil {
		return false, err
	}

	if setting == nil {
		return false, nil
	}

	return bagFlag(setting.BagData(settings.BagSettings), key), nil
}

func bagFlag(bag settings.Bag, key string) bool {
	return bagMatches(bag, key, "true")
}

func bagMatches(bag settings.Bag, key string, want string) bool {
	val, ok := bag[key]

	return ok && val != nil && *val == want
}

// SiteSettingsData is the decoded settings panel payload.
type SiteSettingsData struct {
	Profile     map[string]any `json:"profile"`
	Settings    map[string]any `json:"settings"`
	SocialMedia map[string]any `json:"social_media"`
	CategoryIDs []int64        `json:"category_ids"`
}

// GetSiteSettings loads the bag row and the category links concurrently and
// decodes the bags into typed values. A site without a settings row still
// yields a payload with empty bags.
func GetSiteSettings(ctx context.Context, siteID uuid.UUID) (*SiteSettingsData, error) {
	var setting *models.SiteSetting
	var categoryIDs []int64

	links := NewCategoryLinks()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, err := FindSiteSetting(gctx, siteID)
		if err != nil {
			return err
		}

		setting = s

		return nil
	})

	g.Go(func() error {
		ids, err := links.LinkedCategoryIDs(gctx, siteID)
		if err != nil {
			return err
		}

		categoryIDs = ids

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if setting == nil {
		setting = &models.SiteSetting{SiteID: siteID}
	}

	return &SiteSettingsData{
		Profile:     settings.Decode(settings.BagProfile, setting.BagData(settings.BagProfile)),
		Settings:    settings.Decode(settings.BagSettings, setting.BagData(settings.BagSettings)),
		SocialMedia: settings.Decode(settings.BagSocialMedia, setting.BagData(settings.BagSocialMedia)),
		CategoryIDs: categoryIDs,
	}, nil
}

// ApplySettingsPatch merges a partial update into the stored bags, creating
// the row on first write. Bags are read before writing so keys absent from
// the patch survive untouched. Categories reconcile only when the caller
// sent the field at all.
func ApplySettingsPatch(ctx context.Context, siteID uuid.UUID, patch settings.Patch, categoryIDs *[]int64) error {
	bagPatches := settings.BuildPatch(patch)

	if len(bagPatches) > 0 {
		setting := &models.SiteSetting{}

		if err := app.DB().WithContext(ctx).
			Where(&models.SiteSetting{SiteID: siteID}).
			FirstOrCreate(&setting).Error; err != nil {
			return err
		}

		for _, bp := range bagPatches {
			setting.SetBagData(bp.Bag, settings.Merge(setting.BagData(bp.Bag), bp.Values))
		}

		if err := app.DB().WithContext(ctx).Save(&setting).Error; err != nil {
			return err
		}
	}

	if categoryIDs == nil {
		return nil
	}

	return settings.ReconcileCategories(ctx, NewCategoryLinks(), siteID, *categoryIDs)
}

// CategoryLinks is the gorm side of category reconciliation.
type CategoryLinks struct{}

func NewCategoryLinks() *CategoryLinks {
	return &CategoryLinks{}
}

func (l *CategoryLinks) LinkedCategoryIDs(ctx context.Context, siteID uuid.UUID) ([]int64, error) {
	var ids []int64

	if err := app.DB().WithContext(ctx).
		Model(&models.SiteCategory{}).
		Where(&models.SiteCategory{SiteID: siteID}).
		Order("category_id asc").
		Pluck("category_id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

func (l *CategoryLinks) AddCategories(ctx context.Context, siteID uuid.UUID, ids []int64) error {
	links := make([]models.SiteCategory, 0, len(ids))

	for _, id := range ids {
		links = append(links, models.SiteCategory{SiteID: siteID, CategoryID: id})
	}

	return app.DB().WithContext(ctx).Create(&links).Error
}

func (l *CategoryLinks) RemoveCategories(ctx context.Context, siteID uuid.UUID, ids []int64) error {
	return app.DB().WithContext(ctx).
		Where("site_id = ?", siteID).
		Where("category_id IN ?", ids).
		Delete(&models.SiteCategory{}).Error
}
