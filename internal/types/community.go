package types

import (
	"time"

	"github.com/google/uuid"
)

type Community struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug        string    `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	Name        string    `gorm:"not null;column:name" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner       *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerID;references:ID" json:"owner,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Community) TableName() string { return "community" }
