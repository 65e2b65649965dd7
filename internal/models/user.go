package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email    string    `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password string    `gorm:"size:255;not null" json:"-"`

	ChestCircumference *float64 `json:"chestCircumference,omitempty"`
	ArmLength          *float64 `json:"armLength,omitempty"`
	ArmCircumference   *float64 `json:"armCircumference,omitempty"`
	BodyLength         *float64 `json:"bodyLength,omitempty"`
	NecklineToChest    *float64 `json:"necklineToChest,omitempty"`
	ShoulderWidth      *float64 `json:"shoulderWidth,omitempty"`
	PreferredUnit      string   `gorm:"size:20" json:"preferredUnit,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Profile is the sanitized projection returned to clients: no password hash,
// no internal timestamps.
type Profile struct {
	Username           string   `json:"username"`
	Email              string   `json:"email"`
	ChestCircumference *float64 `json:"chestCircumference,omitempty"`
	ArmLength          *float64 `json:"armLength,omitempty"`
	ArmCircumference   *float64 `json:"armCircumference,omitempty"`
	BodyLength         *float64 `json:"bodyLength,omitempty"`
	NecklineToChest    *float64 `json:"necklineToChest,omitempty"`
	ShoulderWidth      *float64 `json:"shoulderWidth,omitempty"`
	PreferredUnit      string   `json:"preferredUnit,omitempty"`
}

func (u *User) Profile() Profile {
	return Profile{
		Username:           u.Username,
		Email:              u.Email,
		ChestCircumference: u.ChestCircumference,
		ArmLength:          u.ArmLength,
		ArmCircumference:   u.ArmCircumference,
		BodyLength:         u.BodyLength,
		NecklineToChest:    u.NecklineToChest,
		ShoulderWidth:      u.ShoulderWidth,
		PreferredUnit:      u.PreferredUnit,
	}
}
