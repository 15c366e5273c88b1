package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"pubforge.dev/publisher-api/settings"
)

// SiteSetting holds the three sparse key-value bags of a site as JSON
// columns. The business layer only ever sees settings.Bag, never the raw
// column type.
type SiteSetting struct {
	ID          uuid.UUID                        `gorm:"primaryKey;type:uuid;not null;unique;default:gen_random_uuid()" json:"id"`
	SiteID      uuid.UUID                        `gorm:"not null;unique" json:"site_id"`
	Site        Site                             `json:"-"`
	Profile     datatypes.JSONType[settings.Bag] `json:"profile"`
	Settings    datatypes.JSONType[settings.Bag] `json:"settings"`
	SocialMedia datatypes.JSONType[settings.Bag] `json:"social_media"`
	CreatedAt   time.Time                        `gorm:"not null;default:clock_timestamp()" json:"-"`
	UpdatedAt   time.Time                        `gorm:"not null;default:clock_timestamp()" json:"-"`
	DeletedAt   gorm.DeletedAt                   `gorm:"index" json:"-"`
}

// BagData returns the named bag, never nil.
func (ss *SiteSetting) BagData(bag string) settings.Bag {
	var data settings.Bag

	switch bag {
	case settings.BagProfile:
		data = ss.Profile.Data()
	case settings.BagSettings:
		data = ss.Settings.Data()
	case settings.BagSocialMedia:
		data = ss.SocialMedia.Data()
	}

	if data == nil {
		data = settings.Bag{}
	}

	return data
}

// SetBagData replaces the named bag.
func (ss *SiteSetting) SetBagData(bag string, data settings.Bag) {
	switch bag {
	case settings.BagProfile:
		ss.Profile = datatypes.NewJSONType(data)
	case settings.BagSettings:
		ss.Settings = datatypes.NewJSONType(data)
	case settings.BagSocialMedia:
		ss.SocialMedia = datatypes.NewJSONType(data)
	}
}
