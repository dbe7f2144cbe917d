package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/types"
)

type AchievementRepo interface {
	SeedCatalog(ctx context.Context, tx *gorm.DB, rows []*types.Achievement) error
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserAchievement, error)
	UnlockForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, codes []string, now time.Time) ([]string, error)
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return &achievementRepo{db: db, log: baseLog.With("repo", "AchievementRepo")}
}

// SeedCatalog inserts catalog rows, leaving already-seeded codes untouched.
func (r *achievementRepo) SeedCatalog(ctx context.Context, tx *gorm.DB, rows []*types.Achievement) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

func (r *achievementRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Achievement
	if err := transaction.WithContext(ctx).
		Order("threshold ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *achievementRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserAchievement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserAchievement
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// UnlockForUser records unlocks, one insert per code so a concurrent retry
// conflicts per-row instead of failing the batch. Returns the codes that were
// actually new for this user.
func (r *achievementRepo) UnlockForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, codes []string, now time.Time) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var unlocked []string
	for _, code := range codes {
		row := &types.UserAchievement{
			ID:              uuid.New(),
			UserID:          userID,
			AchievementCode: code,
			UnlockedAt:      now,
		}
		res := transaction.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_code"}},
				DoNothing: true,
			}).
			Create(row)
		if res.Error != nil {
			return unlocked, res.Error
		}
		if res.RowsAffected > 0 {
			unlocked = append(unlocked, code)
		}
	}
	return unlocked, nil
}
