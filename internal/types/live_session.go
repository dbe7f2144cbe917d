package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LiveSession is the timing metadata for a scheduled live video gathering.
// The video-room infrastructure itself lives outside this service; the
// gamification core only reads ScheduledAt and DurationMinutes.
type LiveSession struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CommunityID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"community_id"`
	Community       *Community     `gorm:"constraint:OnDelete:CASCADE;foreignKey:CommunityID;references:ID" json:"community,omitempty"`
	HostID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"host_id"`
	Host            *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:HostID;references:ID" json:"host,omitempty"`
	Title           string         `gorm:"not null;column:title" json:"title"`
	ScheduledAt     time.Time      `gorm:"not null;column:scheduled_at" json:"scheduled_at"`
	DurationMinutes int            `gorm:"not null;column:duration_minutes" json:"duration_minutes"`
	Status          string         `gorm:"column:status;not null;default:'scheduled'" json:"status"`
	Metadata        datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
}

func (LiveSession) TableName() string { return "live_session" }
