package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"pubforge.dev/publisher-api/utils"
)

type User struct {
	ID                 uuid.UUID      `gorm:"primaryKey;type:uuid;not null;unique;default:gen_random_uuid()" json:"id"`
	FirstName          *string        `gorm:"size:100" json:"first_name"`
	LastName           *string        `gorm:"size:100" json:"last_name"`
	Email              string         `gorm:"size:100;not null;unique" json:"email"`
	Password           string         `gorm:"size:255;not null" json:"-"`
	IsAdmin            *bool          `gorm:"not null;default:false" json:"is_admin"`
	Active             *bool          `gorm:"not null;default:false" json:"active"`
	TokenSecret        string         `gorm:"size:64;not null" json:"-"`
	LastLogin          *time.Time     `json:"-"`
	LastPasswordChange *time.Time     `json:"-"`
	CreatedAt          time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	UpdatedAt          time.Time      `gorm:"not null;default:clock_timestamp()" json:"-"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

// BeforeDelete scrambles the credentials so a soft-deleted account cannot
// keep an open session alive.
func (u *User) BeforeDelete(tx *gorm.DB) error {
	password, err := utils.RandomPassword(35)
	if err != nil {
		return err
	}

	secret, err := utils.RandomString(48)
	if err != nil {
		return err
	}

	active := false
	now := time.Now().In(utils.DefaultLocation())

	return tx.Model(&u).Where(&User{ID: u.ID}).Updates(&User{
		Password:           utils.HashPassword(password),
		Active:             &active,
		TokenSecret:        secret,
		LastPasswordChange: &now,
	}).Error
}

func (u User) GetID() uuid.UUID {
	return u.ID
}

func (u User) GetCreatedAt() time.Time {
	return u.CreatedAt
}

func (u User) GetFullName() string {
	n := ""

	if u.FirstName != nil && len(*u.FirstName) > 0 {
		n += strings.TrimSpace(*u.FirstName)
	}

	if u.LastName != nil && len(*u.LastName) > 0 {
		n += " " + strings.TrimSpace(*u.LastName)
	}

	return strings.TrimSpace(n)
}

func (u User) Admin() bool {
	return u.IsAdmin != nil && *u.IsAdmin
}
