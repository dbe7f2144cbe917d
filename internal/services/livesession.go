package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campfirehq/campfire-backend/internal/gamification"
	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/repos"
	"github.com/campfirehq/campfire-backend/internal/types"
)

type JoinResult struct {
	PointsEarned       int                         `json:"points_earned"`
	TotalSessionPoints int                         `json:"total_session_points"`
	JoinedEarly        bool                        `json:"joined_early"`
	AlreadyJoined      bool                        `json:"already_joined"`
	NewTotal           int                         `json:"new_total"`
	LevelUp            bool                        `json:"level_up"`
	NewLevel           int                         `json:"new_level,omitempty"`
	NewUnlocks         []gamification.CatalogEntry `json:"new_unlocks,omitempty"`
}

type EventResult struct {
	EventKind    gamification.EventKind      `json:"event_kind"`
	PointsEarned int                         `json:"points_earned"`
	LevelUp      bool                        `json:"level_up"`
	NewLevel     int                         `json:"new_level,omitempty"`
	NewUnlocks   []gamification.CatalogEntry `json:"new_unlocks,omitempty"`
}

type LeaveResult struct {
	BonusPoints     int                         `json:"bonus_points"`
	StayedFull      bool                        `json:"stayed_full"`
	MinutesAttended int                         `json:"minutes_attended"`
	LevelUp         bool                        `json:"level_up"`
	NewLevel        int                         `json:"new_level,omitempty"`
	NewUnlocks      []gamification.CatalogEntry `json:"new_unlocks,omitempty"`
}

// LiveSessionService drives the join → events → leave lifecycle for one
// participant. Each call runs the ledger mutation and the user progression
// update in one transaction, so either the full delta lands or none of it.
// The leaderboard cache is fed after commit; it is a derived view, never the
// source of truth.
type LiveSessionService interface {
	OnJoin(ctx context.Context, sessionID, userID uuid.UUID, now time.Time) (*JoinResult, error)
	OnEvent(ctx context.Context, sessionID, userID uuid.UUID, kind gamification.EventKind, now time.Time) (*EventResult, error)
	OnLeave(ctx context.Context, sessionID, userID uuid.UUID, now time.Time) (*LeaveResult, error)
}

type liveSessionService struct {
	db            *gorm.DB
	log           *logger.Logger
	sessionRepo   repos.LiveSessionRepo
	memberRepo    repos.CommunityMemberRepo
	participation ParticipationService
	progression   ProgressionService
	leaderboard   LeaderboardService
}

func NewLiveSessionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sessionRepo repos.LiveSessionRepo,
	memberRepo repos.CommunityMemberRepo,
	participation ParticipationService,
	progression ProgressionService,
	leaderboard LeaderboardService,
) LiveSessionService {
	return &liveSessionService{
		db:            db,
		log:           baseLog.With("service", "LiveSessionService"),
		sessionRepo:   sessionRepo,
		memberRepo:    memberRepo,
		participation: participation,
		progression:   progression,
		leaderboard:   leaderboard,
	}
}

func (s *liveSessionService) resolveSession(ctx context.Context, sessionID uuid.UUID) (*types.LiveSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// feedLeaderboard updates the windowed leaderboard cache after a committed
// award. Failures are logged, not surfaced: the award itself already landed.
func (s *liveSessionService) feedLeaderboard(ctx context.Context, communityID, userID uuid.UUID, points int, now time.Time) {
	if points <= 0 {
		return
	}
	if err := s.leaderboard.RecordAward(ctx, communityID, userID, points, now); err != nil {
		s.log.Warn("Failed to update leaderboard cache", "community_id", communityID, "user_id", userID, "error", err)
	}
}

// OnJoin is idempotent: the first call creates the participation record and
// awards join (plus early-join) points; any later call returns the existing
// record with zero points.
func (s *liveSessionService) OnJoin(ctx context.Context, sessionID, userID uuid.UUID, now time.Time) (*JoinResult, error) {
	session, err := s.resolveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var result JoinResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		outcome, err := s.participation.RecordJoin(ctx, tx, session, userID, now)
		if err != nil {
			return err
		}
		result = JoinResult{
			PointsEarned:       outcome.PointsAwarded,
			TotalSessionPoints: outcome.Record.PointsEarned,
			JoinedEarly:        outcome.JoinedEarly,
			AlreadyJoined:      outcome.AlreadyJoined,
		}

		delta, err := s.progression.ApplyDelta(ctx, tx, userID, outcome.PointsAwarded, now)
		if err != nil {
			return err
		}
		result.NewTotal = delta.NewTotal
		result.LevelUp = delta.LevelUp
		result.NewLevel = delta.NewLevel
		result.NewUnlocks = delta.NewUnlocks

		// A session participant is always a member of the hosting community.
		if _, err := s.memberRepo.AddIfAbsent(ctx, tx, &types.CommunityMember{
			ID:          uuid.New(),
			CommunityID: session.CommunityID,
			UserID:      userID,
		}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.feedLeaderboard(ctx, session.CommunityID, userID, result.PointsEarned, now)
	return &result, nil
}

// OnEvent scores one reported occurrence of kind. A zero-point result means
// the kind's per-session cap is exhausted and is a success, not a failure.
func (s *liveSessionService) OnEvent(ctx context.Context, sessionID, userID uuid.UUID, kind gamification.EventKind, now time.Time) (*EventResult, error) {
	session, err := s.resolveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var result EventResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		points, err := s.participation.RecordEvent(ctx, tx, sessionID, userID, kind, now)
		if err != nil {
			return err
		}
		result = EventResult{EventKind: kind, PointsEarned: points}

		delta, err := s.progression.ApplyDelta(ctx, tx, userID, points, now)
		if err != nil {
			return err
		}
		result.LevelUp = delta.LevelUp
		result.NewLevel = delta.NewLevel
		result.NewUnlocks = delta.NewUnlocks
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.feedLeaderboard(ctx, session.CommunityID, userID, result.PointsEarned, now)
	return &result, nil
}

// OnLeave stamps the leave time and settles the stay-full bonus. Leaving a
// session that was never joined is a silent no-op.
func (s *liveSessionService) OnLeave(ctx context.Context, sessionID, userID uuid.UUID, now time.Time) (*LeaveResult, error) {
	session, err := s.resolveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var result LeaveResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		outcome, err := s.participation.RecordLeave(ctx, tx, session, userID, now)
		if err != nil {
			return err
		}
		result = LeaveResult{
			BonusPoints:     outcome.BonusPoints,
			StayedFull:      outcome.StayedFull,
			MinutesAttended: outcome.MinutesAttended,
		}
		if !outcome.Joined {
			return nil
		}

		delta, err := s.progression.ApplyDelta(ctx, tx, userID, outcome.BonusPoints, now)
		if err != nil {
			return err
		}
		result.LevelUp = delta.LevelUp
		result.NewLevel = delta.NewLevel
		result.NewUnlocks = delta.NewUnlocks
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.feedLeaderboard(ctx, session.CommunityID, userID, result.BonusPoints, now)
	return &result, nil
}
