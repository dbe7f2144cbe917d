package types

import (
	"time"

	"github.com/google/uuid"
)

// SessionParticipation is the per-(session,user) aggregate of one user's
// engagement in one live session. Counters only ever increase and the three
// flags are set at most once; PointsEarned never decreases.
type SessionParticipation struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID    uuid.UUID    `gorm:"type:uuid;not null;index:idx_session_user,unique" json:"session_id"`
	Session      *LiveSession `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`
	UserID       uuid.UUID    `gorm:"type:uuid;not null;index:idx_session_user,unique" json:"user_id"`
	User         *User        `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	JoinedAt     time.Time    `gorm:"not null;column:joined_at" json:"joined_at"`
	LeftAt       *time.Time   `gorm:"column:left_at" json:"left_at,omitempty"`
	PointsEarned int          `gorm:"column:points_earned;not null;default:0" json:"points_earned"`

	// Event counters, one column per trackable kind. A fixed schema instead
	// of a loose JSON bundle so unknown kinds are rejected at the boundary.
	QuestionsAsked    int `gorm:"column:questions_asked;not null;default:0" json:"questions_asked"`
	QuestionsAnswered int `gorm:"column:questions_answered;not null;default:0" json:"questions_answered"`
	PollsCompleted    int `gorm:"column:polls_completed;not null;default:0" json:"polls_completed"`
	TasksCompleted    int `gorm:"column:tasks_completed;not null;default:0" json:"tasks_completed"`
	ResourcesShared   int `gorm:"column:resources_shared;not null;default:0" json:"resources_shared"`
	ReactionsGiven    int `gorm:"column:reactions_given;not null;default:0" json:"reactions_given"`

	SpokeOnStage bool `gorm:"column:spoke_on_stage;not null;default:false" json:"spoke_on_stage"`
	JoinedEarly  bool `gorm:"column:joined_early;not null;default:false" json:"joined_early"`
	StayedFull   bool `gorm:"column:stayed_full;not null;default:false" json:"stayed_full"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SessionParticipation) TableName() string { return "session_participation" }
