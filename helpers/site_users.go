package helpers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"gorm.io/gorm"
	"pubforge.dev/publisher-api/app"
	"pubforge.dev/publisher-api/models"
)

// SiteUserStore is the storage side of the authorization guard, backed by
// gorm with rueidis client-side caching on the hot membership lookup.
type SiteUserStore struct{}

func NewSiteUserStore() *SiteUserStore {
	return &SiteUserStore{}
}

func membershipCacheKey(userID uuid.UUID, siteID uuid.UUID) string {
	return fmt.Sprintf("site-users:%s:%s", siteID.String(), userID.String())
}

func (s *SiteUserStore) FindSiteUser(ctx context.Context, userID uuid.UUID, siteID uuid.UUID) (*models.SiteUser, error) {
	cached, err := app.Cache().DoCache(ctx, app.Cache().B().Get().Key(membershipCacheKey(userID, siteID)).Cache(), 5*time.Minute).ToString()
	if err != nil && !errors.Is(err, rueidis.Nil) {
		slog.Warn(fmt.Sprintf("Could not get cached site user: %v", err))
	}

	if len(cached) > 0 {
		su := &models.SiteUser{}
		if err := json.Unmarshal([]byte(cached), &su); err == nil {
			return su, nil
		}

		slog.Error("Could not decode cached site user.")
	}

	su := &models.SiteUser{}
	if err := app.DB().WithContext(ctx).
		Where(&models.SiteUser{UserID: userID, SiteID: siteID}).
		First(&su).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	raw, err := json.Marshal(su)
	if err != nil {
		slog.Error(fmt.Sprintf("Could not serialize site user for cache: %v", err))
		return su, nil
	}

	if err := app.Cache().Do(ctx, app.Cache().B().Set().Key(membershipCacheKey(userID, siteID)).Value(string(raw)).Ex(time.Hour).Build()).Error(); err != nil {
		slog.Error(fmt.Sprintf("Could not save site user to cache: %v", err))
	}

	return su, nil
}

func (s *SiteUserStore) FindSite(ctx context.Context, siteID uuid.UUID) (*models.Site, error) {
	site := &models.Site{}

	if err := app.DB().WithContext(ctx).
		Where(&models.Site{ID: siteID}).
		First(&site).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return site, nil
}

func (s *SiteUserStore) FindVideoSiteID(ctx context.Context, slug string) (uuid.UUID, error) {
	video := &models.Video{}

	if err := app.DB().WithContext(ctx).
		Where(&models.Video{Slug: slug}).
		First(&video).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, nil
		}

		return uuid.Nil, err
	}

	return video.SiteID, nil
}

// RevokeSiteAccess deletes the membership row (the AfterDelete hook rotates
// the user's token secret) and drops the cached entry so the change is
// visible immediately.
func RevokeSiteAccess(ctx context.Context, siteID uuid.UUID, userID uuid.UUID) error {
	su := &models.SiteUser{}

	if err := app.DB().WithContext(ctx).
		Where(&models.SiteUser{UserID: userID, SiteID: siteID}).
		First(&su).Error; err != nil {
		return err
	}

	if err := app.DB().WithContext(ctx).Delete(&su).Error; err != nil {
		return err
	}

	if err := app.Cache().Do(ctx, app.Cache().B().Del().Key(membershipCacheKey(userID, siteID)).Build()).Error(); err != nil {
		slog.Error(fmt.Sprintf("Could not drop cached site user: %v", err))
	}

	return nil
}

// GrantSiteAccess creates or updates the membership mask.
func GrantSiteAccess(ctx context.Context, siteID uuid.UUID, userID uuid.UUID, rolesMask int64) (*models.SiteUser, error) {
	su := &models.SiteUser{SiteID: siteID, UserID: userID}

	if err := app.DB().WithContext(ctx).
		Where(&models.SiteUser{SiteID: siteID, UserID: userID}).
		FirstOrCreate(&su).Error; err != nil {
		return nil, err
	}

	if su.RolesMask != rolesMask {
		if err := app.DB().WithContext(ctx).Model(&su).
			Update("roles_mask", rolesMask).Error; err != nil {
			return nil, err
		}

		su.RolesMask = rolesMask
	}

	if err := app.Cache().Do(ctx, app.Cache().B().Del().Key(membershipCacheKey(userID, siteID)).Build()).Error(); err != nil {
		slog.Error(fmt.Sprintf("Could not drop cached site user: %v", err))
	}

	return su, nil
}

// UpdateSiteAccess replaces the mask of an existing membership. Unlike
// GrantSiteAccess it never creates one.
func UpdateSiteAccess(ctx context.Context, siteID uuid.UUID, userID uuid.UUID, rolesMask int64) (*models.SiteUser, error) {
	su := &models.SiteUser{}

	if err := app.DB().WithContext(ctx).
		Where(&models.SiteUser{SiteID: siteID, UserID: userID}).
		First(&su).Error; err != nil {
		return nil, err
	}

	if su.RolesMask != rolesMask {
		if err := app.DB().WithContext(ctx).Model(&su).
			Update("roles_mask", rolesMask).Error; err != nil {
			return nil, err
		}

		su.RolesMask = rolesMask
	}

	if err := app.Cache().Do(ctx, app.Cache().B().Del().Key(membershipCacheKey(userID, siteID)).Build()).Error(); err != nil {
		slog.Error(fmt.Sprintf("Could not drop cached site user: %v", err))
	}

	return su, nil
}

// GetSiteMembers lists every membership of a site with user emails.
func GetSiteMembers(ctx context.Context, siteID uuid.UUID) ([]models.SiteUser, error) {
	members := []models.SiteUser{}

	if err := app.DB().WithContext(ctx).Model(&models.SiteUser{}).
		Joins("INNER JOIN users u ON site_users.user_id = u.id").
		Where("site_users.site_id = @site_id AND site_users.deleted_at IS NULL AND u.deleted_at IS NULL", sql.Named("site_id", siteID)).
		Preload("User").
		Find(&members).Error; err != nil {
		return nil, err
	}

	return members, nil
}
