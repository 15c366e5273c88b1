package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"size:100;not null;unique" json:"name"`
	CreatedAt time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	UpdatedAt time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type SiteCategory struct {
	ID         uuid.UUID      `gorm:"primaryKey;type:uuid;not null;unique;default:gen_random_uuid()" json:"id"`
	SiteID     uuid.UUID      `gorm:"not null;uniqueIndex:idx_site_categories_site_category" json:"site_id"`
	Site       Site           `json:"-"`
	CategoryID int64          `gorm:"not null;uniqueIndex:idx_site_categories_site_category" json:"category_id"`
	Category   Category       `json:"-"`
	CreatedAt  time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	UpdatedAt  time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
