package model

import (
	"time"
)

// Account is a login identity. Email is stored normalized (trimmed, lowercased).
type Account struct {
	ID           uint      `gorm:"primarykey" json:"id"`                       // account ID
	Email        string    `gorm:"size:250;uniqueIndex;not null" json:"email"` // login e-mail
	PasswordHash string    `gorm:"size:250;not null" json:"-"`                 // bcrypt digest, never serialized
	Photo        *string   `gorm:"size:255" json:"photo"`                      // stored photo filename
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Profile Profile `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"profile"`
}

func (Account) TableName() string {
	return "accounts"
}
