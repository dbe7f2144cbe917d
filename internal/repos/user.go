package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campfirehq/campfire-backend/internal/gamification"
	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/types"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.User) ([]*types.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.User, error)
	GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.User, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	AddPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta int) (int, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.User) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.User{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.User
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.User
	if len(emails) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("email IN ?", emails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddPoints applies a point delta and recomputes the level in one statement,
// so concurrent deltas for the same user cannot lose updates and the level
// column always matches the band of the new total. Returns the new total.
// gorm.ErrRecordNotFound when the user does not exist.
func (r *userRepo) AddPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta int) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row struct {
		Points int
	}
	res := transaction.WithContext(ctx).Raw(`
		UPDATE "user"
		SET points = points + ?,
		    level = (points + ?) / ? + 1,
		    updated_at = ?
		WHERE id = ?
		RETURNING points
	`, delta, delta, gamification.PointsPerLevel, time.Now().UTC(), userID).Scan(&row)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return row.Points, nil
}
