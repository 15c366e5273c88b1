package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"pubforge.dev/publisher-api/utils"
)

// SiteUser grants a user access to a single site. RolesMask is the
// bitwise-OR of roles.Role flags.
type SiteUser struct {
	ID        uuid.UUID      `gorm:"primaryKey;type:uuid;not null;unique;default:gen_random_uuid()" json:"id"`
	SiteID    uuid.UUID      `gorm:"not null;uniqueIndex:idx_site_users_site_user" json:"site_id"`
	Site      Site           `json:"-"`
	UserID    uuid.UUID      `gorm:"not null;uniqueIndex:idx_site_users_site_user" json:"user_id"`
	User      User           `json:"-"`
	RolesMask int64          `gorm:"not null;default:0" json:"roles_mask"`
	CreatedAt time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	UpdatedAt time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AfterDelete rotates the affected user's token secret. Revoking site access
// must invalidate every token the user already holds, not just drop the row.
func (su *SiteUser) AfterDelete(tx *gorm.DB) error {
	secret, err := utils.RandomString(48)
	if err != nil {
		return err
	}

	return tx.Model(&User{}).Where(&User{ID: su.UserID}).
		Update("token_secret", secret).Error
}

func (su SiteUser) GetID() uuid.UUID {
	return su.ID
}

func (su SiteUser) GetCreatedAt() time.Time {
	return su.CreatedAt
}
