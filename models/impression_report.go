package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImpressionReport is one day of ad delivery numbers for a site, ingested
// from the reporting pipeline. Revenue-share tiering sums PaidImpressions
// over a trailing window.
type ImpressionReport struct {
	ID              uuid.UUID      `gorm:"primaryKey;type:uuid;not null;unique;default:gen_random_uuid()" json:"id"`
	SiteID          uuid.UUID      `gorm:"not null;uniqueIndex:idx_impression_reports_site_day" json:"site_id"`
	Site            Site           `json:"-"`
	Day             time.Time      `gorm:"type:date;not null;uniqueIndex:idx_impression_reports_site_day" json:"day"`
	PaidImpressions int64          `gorm:"not null;default:0;check:paid_impressions >= 0" json:"paid_impressions"`
	CreatedAt       time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	UpdatedAt       time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
