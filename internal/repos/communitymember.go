package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/types"
)

// MemberStanding is one hydrated all-time leaderboard row.
type MemberStanding struct {
	UserID    uuid.UUID `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	AvatarURL string    `json:"avatar_url"`
	Points    int       `json:"points"`
	Level     int       `json:"level"`
}

type CommunityMemberRepo interface {
	AddIfAbsent(ctx context.Context, tx *gorm.DB, row *types.CommunityMember) (bool, error)
	GetByCommunityAndUser(ctx context.Context, tx *gorm.DB, communityID, userID uuid.UUID) (*types.CommunityMember, error)
	TopByPoints(ctx context.Context, tx *gorm.DB, communityID uuid.UUID, limit, offset int) ([]*MemberStanding, error)
	CountByCommunity(ctx context.Context, tx *gorm.DB, communityID uuid.UUID) (int64, error)
	RankByPoints(ctx context.Context, tx *gorm.DB, communityID, userID uuid.UUID) (int64, error)
}

type communityMemberRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommunityMemberRepo(db *gorm.DB, baseLog *logger.Logger) CommunityMemberRepo {
	return &communityMemberRepo{db: db, log: baseLog.With("repo", "CommunityMemberRepo")}
}

func (r *communityMemberRepo) AddIfAbsent(ctx context.Context, tx *gorm.DB, row *types.CommunityMember) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return false, nil
	}

	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "community_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *communityMemberRepo) GetByCommunityAndUser(ctx context.Context, tx *gorm.DB, communityID, userID uuid.UUID) (*types.CommunityMember, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.CommunityMember
	if err := transaction.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// TopByPoints returns community members ordered by global points, ties broken
// by user id for a stable ordering across pages.
func (r *communityMemberRepo) TopByPoints(ctx context.Context, tx *gorm.DB, communityID uuid.UUID, limit, offset int) ([]*MemberStanding, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*MemberStanding
	if err := transaction.WithContext(ctx).Raw(`
		SELECT u.id AS user_id, u.first_name, u.last_name, u.avatar_url, u.points, u.level
		FROM community_member m
		JOIN "user" u ON u.id = m.user_id
		WHERE m.community_id = ?
		ORDER BY u.points DESC, u.id ASC
		LIMIT ? OFFSET ?
	`, communityID, limit, offset).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *communityMemberRepo) CountByCommunity(ctx context.Context, tx *gorm.DB, communityID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.CommunityMember{}).
		Where("community_id = ?", communityID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// RankByPoints returns the 1-based all-time rank of a member within their
// community. gorm.ErrRecordNotFound when the user is not a member.
func (r *communityMemberRepo) RankByPoints(ctx context.Context, tx *gorm.DB, communityID, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if _, err := r.GetByCommunityAndUser(ctx, transaction, communityID, userID); err != nil {
		return 0, err
	}

	var row struct {
		Rank int64
	}
	if err := transaction.WithContext(ctx).Raw(`
		SELECT COUNT(*) + 1 AS rank
		FROM community_member m
		JOIN "user" u ON u.id = m.user_id
		WHERE m.community_id = ?
		  AND u.points > (SELECT points FROM "user" WHERE id = ?)
	`, communityID, userID).Scan(&row).Error; err != nil {
		return 0, err
	}
	return row.Rank, nil
}
