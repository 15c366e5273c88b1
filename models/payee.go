package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payee is a payment identity. UUID is the opaque identifier handed to the
// external payment portal; it is minted once at creation and never reused.
// Payees are never hard-deleted, sites only re-point their payee_id.
type Payee struct {
	ID               uuid.UUID      `gorm:"primaryKey;type:uuid;not null;unique;default:gen_random_uuid()" json:"id"`
	Name             string         `gorm:"size:255;not null" json:"name"`
	UUID             string         `gorm:"size:36;not null;unique" json:"uuid"`
	TipaltiCompleted *bool          `json:"tipalti_completed"`
	CreatedAt        time.Time      `gorm:"not null;default:clock_timestamp()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:clock_timestamp()" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p Payee) GetID() uuid.UUID {
	return p.ID
}

func (p Payee) GetCreatedAt() time.Time {
	return p.CreatedAt
}
