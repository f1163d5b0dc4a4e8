package model

import (
	"time"
)

// PasswordResetRequest records an issued reset token. Rows are history:
// once ConsumedAt is set the request can never satisfy a reset again.
type PasswordResetRequest struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	AccountID  uint       `gorm:"not null;index" json:"account_id"`
	Token      string     `gorm:"size:512;not null;uniqueIndex" json:"-"` // signed reset token, never exposed
	CreatedAt  time.Time  `json:"created_at"`
	ConsumedAt *time.Time `json:"consumed_at"`
}

func (PasswordResetRequest) TableName() string {
	return "password_reset_requests"
}

// Consumed reports whether the request was already used
func (r *PasswordResetRequest) Consumed() bool {
	return r.ConsumedAt != nil
}
