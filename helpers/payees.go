package helpers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"pubforge.dev/publisher-api/app"
	"pubforge.dev/publisher-api/models"
	"pubforge.dev/publisher-api/payees"
	"pubforge.dev/publisher-api/roles"
	"pubforge.dev/publisher-api/settings"
)

// PayeeStore is the gorm-backed storage collaborator of the payee lifecycle.
type PayeeStore struct{}

func NewPayeeStore() *PayeeStore {
	return &PayeeStore{}
}

func (p *PayeeStore) FindSite(ctx context.Context, siteID uuid.UUID) (*models.Site, error) {
	return NewSiteUserStore().FindSite(ctx, siteID)
}

func (p *PayeeStore) FindSiteFlags(ctx context.Context, siteID uuid.UUID) (*payees.SiteFlags, error) {
	site, err := p.FindSite(ctx, siteID)
	if err != nil {
		return nil, err
	}

	if site == nil {
		return nil, nil
	}

	testSite, err := SettingsFlag(ctx, siteID, "test_site")
	if err != nil {
		return nil, err
	}

	return &payees.SiteFlags{TestSite: testSite}, nil
}

func (p *PayeeStore) FindPayee(ctx context.Context, payeeID uuid.UUID) (*models.Payee, error) {
	payee := &models.Payee{}

	if err := app.DB().WithContext(ctx).
		Where(&models.Payee{ID: payeeID}).
		First(&payee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return payee, nil
}

func (p *PayeeStore) CreatePayee(ctx context.Context, payee *models.Payee) error {
	return app.DB().WithContext(ctx).Create(payee).Error
}

func (p *PayeeStore) SetSitePayee(ctx context.Context, siteID uuid.UUID, payeeID uuid.UUID) error {
	return app.DB().WithContext(ctx).
		Model(&models.Site{}).
		Where(&models.Site{ID: siteID}).
		Update("payee_id", payeeID).Error
}

func (p *PayeeStore) SetPayeeCompleted(ctx context.Context, payeeID uuid.UUID, completed bool) error {
	return app.DB().WithContext(ctx).
		Model(&models.Payee{}).
		Where(&models.Payee{ID: payeeID}).
		Update("tipalti_completed", completed).Error
}

// UserHasPayeeAccess proves the user already holds an owner or payment role
// on some site pointing at the payee.
func (p *PayeeStore) UserHasPayeeAccess(ctx context.Context, userID uuid.UUID, payeeID uuid.UUID) (bool, error) {
	mask := roles.MaskFromRoles([]roles.Role{roles.Owner, roles.Payment})

	var count int64

	if err := app.DB().WithContext(ctx).
		Model(&models.SiteUser{}).
		Joins("JOIN sites ON sites.id = site_users.site_id").
		Where("sites.payee_id = ?", payeeID).
		Where("site_users.user_id = ?", userID).
		Where("(site_users.roles_mask & ?) > 0", mask).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (p *PayeeStore) SetPayeeNameUpdated(ctx context.Context, siteID uuid.UUID) error {
	return ApplySettingsPatch(ctx, siteID, settings.Patch{"payee_name_updated": true}, nil)
}

func (p *PayeeStore) PayeeNameUpdated(ctx context.Context, siteID uuid.UUID) (bool, error) {
	return SettingsFlag(ctx, siteID, "payee_name_updated")
}
