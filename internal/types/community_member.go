package types

import (
	"time"

	"github.com/google/uuid"
)

type CommunityMember struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CommunityID uuid.UUID  `gorm:"type:uuid;not null;index:idx_community_user,unique" json:"community_id"`
	Community   *Community `gorm:"constraint:OnDelete:CASCADE;foreignKey:CommunityID;references:ID" json:"community,omitempty"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_community_user,unique" json:"user_id"`
	User        *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Role        string     `gorm:"column:role;not null;default:'member'" json:"role"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (CommunityMember) TableName() string { return "community_member" }
