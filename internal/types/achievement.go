package types

import (
	"time"

	"github.com/google/uuid"
)

// Achievement is one row of the static unlock catalog. Metric names a
// monotonic user metric ("points" or "level"); the achievement unlocks the
// first time that metric reaches Threshold.
type Achievement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string    `gorm:"uniqueIndex;not null;column:code" json:"code"`
	Name        string    `gorm:"not null;column:name" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	Metric      string    `gorm:"not null;column:metric" json:"metric"`
	Threshold   int       `gorm:"not null;column:threshold" json:"threshold"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Achievement) TableName() string { return "achievement" }

type UserAchievement struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index:idx_user_achievement,unique" json:"user_id"`
	User            *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	AchievementCode string    `gorm:"not null;column:achievement_code;index:idx_user_achievement,unique" json:"achievement_code"`
	UnlockedAt      time.Time `gorm:"not null;column:unlocked_at" json:"unlocked_at"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (UserAchievement) TableName() string { return "user_achievement" }
