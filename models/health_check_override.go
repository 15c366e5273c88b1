package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HealthCheckOverride is a manually assigned revenue share set by the
// support team after a site health review. RevenueShare is already a
// decimal fraction, e.g. 0.76.
type HealthCheckOverride struct {
	ID           uuid.UUID      `gorm:"primaryKey;type:uuid;not null;unique;default:gen_random_uuid()" json:"id"`
	SiteID       uuid.UUID      `gorm:"not null;unique" json:"site_id"`
	Site         Site           `json:"-"`
	RevenueShare *float64       `gorm:"check:revenue_share >= 0 AND revenue_share <= 1" json:"revenue_share"`
	Reason       *string        `gorm:"size:255" json:"reason"`
	ExpiresAt    *time.Time     `json:"expires_at"`
	CreatedAt    time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	UpdatedAt    time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
