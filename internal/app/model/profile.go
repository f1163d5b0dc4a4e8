package model

import (
	"time"
)

// Profile holds personal attributes, one per Account
type Profile struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	AccountID uint       `gorm:"uniqueIndex;not null" json:"-"`
	Name      string     `gorm:"size:250;not null" json:"name"`
	BirthAt   *time.Time `gorm:"type:date" json:"birth_at"`
	Phone     *string    `gorm:"size:16" json:"phone"`
	Document  *string    `gorm:"size:14" json:"document"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
