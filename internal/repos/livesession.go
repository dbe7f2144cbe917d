package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/types"
)

type LiveSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.LiveSession) ([]*types.LiveSession, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.LiveSession, error)
	GetByCommunityID(ctx context.Context, tx *gorm.DB, communityID uuid.UUID) ([]*types.LiveSession, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
}

type liveSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLiveSessionRepo(db *gorm.DB, baseLog *logger.Logger) LiveSessionRepo {
	return &liveSessionRepo{db: db, log: baseLog.With("repo", "LiveSessionRepo")}
}

func (r *liveSessionRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.LiveSession) ([]*types.LiveSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.LiveSession{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *liveSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.LiveSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.LiveSession
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *liveSessionRepo) GetByCommunityID(ctx context.Context, tx *gorm.DB, communityID uuid.UUID) ([]*types.LiveSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LiveSession
	if communityID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("scheduled_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *liveSessionRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.LiveSession{}).
		Where("id = ?", id).
		Update("status", status).Error
}
