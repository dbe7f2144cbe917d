package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/types"
)

type UserTokenRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.UserToken) error
	GetByRefreshToken(ctx context.Context, tx *gorm.DB, token string) (*types.UserToken, error)
	GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.UserToken, error)
	DeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: baseLog.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) Create(ctx context.Context, tx *gorm.DB, row *types.UserToken) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	return transaction.WithContext(ctx).Create(row).Error
}

func (r *userTokenRepo) GetByRefreshToken(ctx context.Context, tx *gorm.DB, token string) (*types.UserToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.UserToken
	if err := transaction.WithContext(ctx).
		Where("refresh_token = ?", token).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *userTokenRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.UserToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserToken
	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userTokenRepo) DeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(userIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Delete(&types.UserToken{}).Error
}
