package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is one login session for one (user, device) pair. Only hashes
// of the raw refresh token and device id are ever stored.
type RefreshToken struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	TokenHash    string    `gorm:"uniqueIndex" json:"-"`
	DeviceIDHash string    `gorm:"index" json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	Blacklisted  bool      `gorm:"default:false" json:"blacklisted"`
	CreatedAt    time.Time `json:"created_at"`
}

// ResetToken is a one-time token authorising an e-mail change. PendingEmail
// holds the new address applied at activation.
type ResetToken struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;index"`
	TokenHash    string    `gorm:"uniqueIndex"`
	PendingEmail string    `gorm:"size:100"`
	ExpiresAt    time.Time
	Used         bool `gorm:"default:false"`
	CreatedAt    time.Time
}

// PasswordResetToken is a one-time token authorising a forgotten-password
// reset.
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index"`
	TokenHash string    `gorm:"uniqueIndex"`
	ExpiresAt time.Time
	Used      bool `gorm:"default:false"`
	CreatedAt time.Time
}
