package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Video struct {
	ID          uuid.UUID      `gorm:"primaryKey;type:uuid;not null;unique;default:gen_random_uuid()" json:"id"`
	SiteID      uuid.UUID      `gorm:"not null;index" json:"site_id"`
	Site        Site           `json:"-"`
	Slug        string         `gorm:"size:100;not null;unique" json:"slug"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description *string        `gorm:"type:text" json:"description"`
	Duration    *int64         `gorm:"check:duration >= 0" json:"duration"`
	Status      string         `gorm:"size:50;not null;default:'pending'" json:"status"`
	CreatedAt   time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	UpdatedAt   time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (v Video) GetID() uuid.UUID {
	return v.ID
}

func (v Video) GetCreatedAt() time.Time {
	return v.CreatedAt
}

type Playlist struct {
	ID        uuid.UUID      `gorm:"primaryKey;type:uuid;not null;unique;default:gen_random_uuid()" json:"id"`
	SiteID    uuid.UUID      `gorm:"not null;index" json:"site_id"`
	Site      Site           `json:"-"`
	Slug      string         `gorm:"size:100;not null;unique" json:"slug"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	CreatedAt time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	UpdatedAt time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (p Playlist) GetID() uuid.UUID {
	return p.ID
}

func (p Playlist) GetCreatedAt() time.Time {
	return p.CreatedAt
}

type PlaylistVideo struct {
	ID         uuid.UUID      `gorm:"primaryKey;type:uuid;not null;unique;default:gen_random_uuid()" json:"id"`
	PlaylistID uuid.UUID      `gorm:"not null;uniqueIndex:idx_playlist_videos_playlist_video" json:"playlist_id"`
	Playlist   Playlist       `json:"-"`
	VideoID    uuid.UUID      `gorm:"not null;uniqueIndex:idx_playlist_videos_playlist_video" json:"video_id"`
	Video      Video          `json:"-"`
	Position   int            `gorm:"not null;default:0" json:"position"`
	CreatedAt  time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	UpdatedAt  time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
