package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Jumper shapes currently supported by the generator.
const (
	ShapeTopDownRaglan = "top-down-raglan"
	ShapeDropShoulder  = "drop-shoulder"
	ShapeBottomUp      = "bottom-up"
)

type Pattern struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user"`

	PatternName   string  `gorm:"size:100;not null" json:"patternName"`
	JumperShape   string  `gorm:"size:30;not null" json:"jumperShape"`
	KnittingGauge float64 `gorm:"not null" json:"knittingGauge"`

	EaseAmount         *float64 `json:"easeAmount,omitempty"`
	ChestCircumference *float64 `json:"chestCircumference,omitempty"`
	ArmLength          *float64 `json:"armLength,omitempty"`
	ArmCircumference   *float64 `json:"armCircumference,omitempty"`
	BodyLength         *float64 `json:"bodyLength,omitempty"`
	NecklineToChest    *float64 `json:"necklineToChest,omitempty"`
	ShoulderWidth      *float64 `json:"shoulderWidth,omitempty"`
	PreferredUnit      string   `gorm:"size:20" json:"preferredUnit,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (p *Pattern) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
