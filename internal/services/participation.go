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

// EarlyJoinWindow is how long after the scheduled start a join still counts
// as early.
const EarlyJoinWindow = 5 * time.Minute

// StayFullFraction of the scheduled duration a participant must attend to
// earn the stay-full bonus.
const StayFullFraction = 0.9

// counterColumns maps reportable event kinds to their participation column.
// speak_on_stage is handled separately as a one-shot flag.
var counterColumns = map[gamification.EventKind]string{
	gamification.EventAskQuestion:    "questions_asked",
	gamification.EventAnswerQuestion: "questions_answered",
	gamification.EventCompletePoll:   "polls_completed",
	gamification.EventCompleteTask:   "tasks_completed",
	gamification.EventShareResource:  "resources_shared",
	gamification.EventReactToContent: "reactions_given",
}

type JoinOutcome struct {
	Record        *types.SessionParticipation
	PointsAwarded int
	JoinedEarly   bool
	AlreadyJoined bool
}

type LeaveOutcome struct {
	Joined          bool
	BonusPoints     int
	StayedFull      bool
	MinutesAttended int
}

// ParticipationService owns the event-counting and capping logic for one
// session participation record. It never touches the user's global totals;
// that is the progression service's job.
type ParticipationService interface {
	RecordJoin(ctx context.Context, tx *gorm.DB, session *types.LiveSession, userID uuid.UUID, now time.Time) (*JoinOutcome, error)
	RecordEvent(ctx context.Context, tx *gorm.DB, sessionID, userID uuid.UUID, kind gamification.EventKind, now time.Time) (int, error)
	RecordLeave(ctx context.Context, tx *gorm.DB, session *types.LiveSession, userID uuid.UUID, now time.Time) (*LeaveOutcome, error)
}

type participationService struct {
	db     *gorm.DB
	log    *logger.Logger
	repo   repos.ParticipationRepo
	policy *gamification.PointPolicy
}

func NewParticipationService(db *gorm.DB, baseLog *logger.Logger, repo repos.ParticipationRepo, policy *gamification.PointPolicy) ParticipationService {
	return &participationService{
		db:     db,
		log:    baseLog.With("service", "ParticipationService"),
		repo:   repo,
		policy: policy,
	}
}

// RecordJoin creates the participation record for (session,user). A second
// join returns the existing record with zero points: joining twice must not
// double-award.
func (s *participationService) RecordJoin(ctx context.Context, tx *gorm.DB, session *types.LiveSession, userID uuid.UUID, now time.Time) (*JoinOutcome, error) {
	joinedEarly := now.Sub(session.ScheduledAt) <= EarlyJoinWindow
	points := s.policy.PointsFor(gamification.EventJoinSession)
	if joinedEarly {
		points += s.policy.PointsFor(gamification.EventEarlyJoinBonus)
	}

	row := &types.SessionParticipation{
		ID:           uuid.New(),
		SessionID:    session.ID,
		UserID:       userID,
		JoinedAt:     now.UTC(),
		JoinedEarly:  joinedEarly,
		PointsEarned: points,
	}
	created, err := s.repo.CreateIfAbsent(ctx, tx, row)
	if err != nil {
		return nil, err
	}
	if !created {
		existing, err := s.repo.GetBySessionAndUser(ctx, tx, session.ID, userID)
		if err != nil {
			return nil, err
		}
		return &JoinOutcome{
			Record:        existing,
			PointsAwarded: 0,
			JoinedEarly:   existing.JoinedEarly,
			AlreadyJoined: true,
		}, nil
	}
	return &JoinOutcome{Record: row, PointsAwarded: points, JoinedEarly: joinedEarly}, nil
}

// RecordEvent scores one occurrence of kind. Events for a pair that never
// joined fail with ErrNotJoined; a capped-out kind still counts occurrences
// but returns zero points, which is a success. Events arriving after the
// participant left are still scored (grace period).
func (s *participationService) RecordEvent(ctx context.Context, tx *gorm.DB, sessionID, userID uuid.UUID, kind gamification.EventKind, now time.Time) (int, error) {
	points := s.policy.PointsFor(kind)

	if kind == gamification.EventSpeakOnStage {
		if _, err := s.repo.GetBySessionAndUser(ctx, tx, sessionID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrNotJoined
			}
			return 0, err
		}
		applied, err := s.repo.SetFlagOnce(ctx, tx, sessionID, userID, "spoke_on_stage", points)
		if err != nil {
			return 0, err
		}
		if !applied {
			return 0, nil
		}
		return points, nil
	}

	column, ok := counterColumns[kind]
	if !ok {
		return 0, ErrUnknownEventKind
	}
	cap, hasCap := s.policy.CapFor(kind)
	_, awarded, err := s.repo.IncrementCounter(ctx, tx, sessionID, userID, column, points, cap, hasCap)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotJoined
		}
		return 0, err
	}
	if !awarded {
		return 0, nil
	}
	return points, nil
}

// RecordLeave stamps left_at and awards the stay-full bonus once when the
// participant attended at least 90% of the scheduled duration. A leave for a
// pair that never joined is a silent no-op, not an error.
func (s *participationService) RecordLeave(ctx context.Context, tx *gorm.DB, session *types.LiveSession, userID uuid.UUID, now time.Time) (*LeaveOutcome, error) {
	record, err := s.repo.GetBySessionAndUser(ctx, tx, session.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &LeaveOutcome{Joined: false}, nil
		}
		return nil, err
	}

	if err := s.repo.MarkLeft(ctx, tx, session.ID, userID, now.UTC()); err != nil {
		return nil, err
	}

	attended := now.Sub(record.JoinedAt)
	required := time.Duration(float64(session.DurationMinutes) * StayFullFraction * float64(time.Minute))
	stayedFull := attended >= required

	outcome := &LeaveOutcome{
		Joined:          true,
		StayedFull:      stayedFull,
		MinutesAttended: int(attended.Minutes()),
	}
	if stayedFull {
		bonus := s.policy.PointsFor(gamification.EventStayFullBonus)
		applied, err := s.repo.SetFlagOnce(ctx, tx, session.ID, userID, "stayed_full", bonus)
		if err != nil {
			return nil, err
		}
		if applied {
			outcome.BonusPoints = bonus
		}
	}
	return outcome, nil
}
