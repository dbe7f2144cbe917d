package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campfirehq/campfire-backend/internal/gamification"
	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/repos"
)

type DeltaOutcome struct {
	NewTotal    int
	NewLevel    int
	LevelUp     bool
	NewUnlocks  []gamification.CatalogEntry
}

// ProgressionService applies point deltas to a user's global total, keeps the
// level column consistent with the total, and unlocks threshold achievements.
type ProgressionService interface {
	ApplyDelta(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta int, now time.Time) (*DeltaOutcome, error)
}

type progressionService struct {
	db              *gorm.DB
	log             *logger.Logger
	userRepo        repos.UserRepo
	achievementRepo repos.AchievementRepo
}

func NewProgressionService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, achievementRepo repos.AchievementRepo) ProgressionService {
	return &progressionService{
		db:              db,
		log:             baseLog.With("service", "ProgressionService"),
		userRepo:        userRepo,
		achievementRepo: achievementRepo,
	}
}

// ApplyDelta adds delta to the user's cumulative total as one atomic update
// and recomputes the level from the new total. Point totals only ever grow;
// negative deltas are a caller bug.
func (s *progressionService) ApplyDelta(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta int, now time.Time) (*DeltaOutcome, error) {
	if delta < 0 {
		return nil, fmt.Errorf("point delta must be non-negative, got %d", delta)
	}

	if delta == 0 {
		users, err := s.userRepo.GetByIDs(ctx, tx, []uuid.UUID{userID})
		if err != nil {
			return nil, err
		}
		if len(users) == 0 {
			return nil, ErrUserNotFound
		}
		return &DeltaOutcome{NewTotal: users[0].Points, NewLevel: users[0].Level}, nil
	}

	newTotal, err := s.userRepo.AddPoints(ctx, tx, userID, delta)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	oldTotal := newTotal - delta
	oldLevel := gamification.LevelFor(oldTotal)
	newLevel := gamification.LevelFor(newTotal)

	outcome := &DeltaOutcome{
		NewTotal: newTotal,
		NewLevel: newLevel,
		LevelUp:  newLevel > oldLevel,
	}

	crossed := gamification.CrossedAchievements(oldTotal, newTotal, oldLevel, newLevel)
	if len(crossed) > 0 {
		codes := make([]string, 0, len(crossed))
		byCode := make(map[string]gamification.CatalogEntry, len(crossed))
		for _, entry := range crossed {
			codes = append(codes, entry.Code)
			byCode[entry.Code] = entry
		}
		unlocked, err := s.achievementRepo.UnlockForUser(ctx, tx, userID, codes, now)
		if err != nil {
			return nil, err
		}
		for _, code := range unlocked {
			outcome.NewUnlocks = append(outcome.NewUnlocks, byCode[code])
		}
	}
	return outcome, nil
}
