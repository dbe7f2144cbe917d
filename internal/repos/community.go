package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/types"
)

type CommunityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Community) ([]*types.Community, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Community, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Community, error)
}

type communityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommunityRepo(db *gorm.DB, baseLog *logger.Logger) CommunityRepo {
	return &communityRepo{db: db, log: baseLog.With("repo", "CommunityRepo")}
}

func (r *communityRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Community) ([]*types.Community, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Community{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *communityRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Community, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Community
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *communityRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Community, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Community
	if err := transaction.WithContext(ctx).
		Where("slug = ?", slug).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
