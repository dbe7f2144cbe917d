package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/types"
)

type ParticipationRepo interface {
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, row *types.SessionParticipation) (bool, error)
	GetBySessionAndUser(ctx context.Context, tx *gorm.DB, sessionID, userID uuid.UUID) (*types.SessionParticipation, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.SessionParticipation, error)
	IncrementCounter(ctx context.Context, tx *gorm.DB, sessionID, userID uuid.UUID, column string, points, cap int, hasCap bool) (int, bool, error)
	SetFlagOnce(ctx context.Context, tx *gorm.DB, sessionID, userID uuid.UUID, column string, points int) (bool, error)
	MarkLeft(ctx context.Context, tx *gorm.DB, sessionID, userID uuid.UUID, leftAt time.Time) error
}

type participationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewParticipationRepo(db *gorm.DB, baseLog *logger.Logger) ParticipationRepo {
	return &participationRepo{db: db, log: baseLog.With("repo", "ParticipationRepo")}
}

// CreateIfAbsent inserts the participation row unless one already exists for
// the (session,user) pair. Returns true when the row was created. The unique
// index on (session_id, user_id) plus ON CONFLICT DO NOTHING make a second
// join a detectable no-op instead of an error.
func (r *participationRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, row *types.SessionParticipation) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return false, nil
	}

	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *participationRepo) GetBySessionAndUser(ctx context.Context, tx *gorm.DB, sessionID, userID uuid.UUID) (*types.SessionParticipation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.SessionParticipation
	if err := transaction.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *participationRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.SessionParticipation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SessionParticipation
	if sessionID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// IncrementCounter bumps one event counter and conditionally adds points in a
// single statement, so two racing calls cannot both pass the cap check. The
// counter keeps counting past the cap; points stop. Returns the new count and
// whether points were added. column comes from a fixed internal map, never
// from request input.
func (r *participationRepo) IncrementCounter(ctx context.Context, tx *gorm.DB, sessionID, userID uuid.UUID, column string, points, cap int, hasCap bool) (int, bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row struct {
		Count int
	}
	var res *gorm.DB
	if hasCap {
		query := fmt.Sprintf(`
			UPDATE session_participation
			SET %[1]s = %[1]s + 1,
			    points_earned = points_earned + CASE WHEN %[1]s < ? THEN ? ELSE 0 END,
			    updated_at = ?
			WHERE session_id = ? AND user_id = ?
			RETURNING %[1]s AS count
		`, column)
		res = transaction.WithContext(ctx).Raw(query, cap, points, time.Now().UTC(), sessionID, userID).Scan(&row)
	} else {
		query := fmt.Sprintf(`
			UPDATE session_participation
			SET %[1]s = %[1]s + 1,
			    points_earned = points_earned + ?,
			    updated_at = ?
			WHERE session_id = ? AND user_id = ?
			RETURNING %[1]s AS count
		`, column)
		res = transaction.WithContext(ctx).Raw(query, points, time.Now().UTC(), sessionID, userID).Scan(&row)
	}
	if res.Error != nil {
		return 0, false, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, false, gorm.ErrRecordNotFound
	}
	awarded := !hasCap || row.Count <= cap
	return row.Count, awarded, nil
}

// SetFlagOnce sets a one-shot boolean flag and adds its points only when the
// flag was still unset. The flag predicate in the WHERE clause keeps a racing
// duplicate from awarding twice. Returns whether this call won the flag.
func (r *participationRepo) SetFlagOnce(ctx context.Context, tx *gorm.DB, sessionID, userID uuid.UUID, column string, points int) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := fmt.Sprintf(`
		UPDATE session_participation
		SET %[1]s = ?,
		    points_earned = points_earned + ?,
		    updated_at = ?
		WHERE session_id = ? AND user_id = ? AND %[1]s = ?
	`, column)
	res := transaction.WithContext(ctx).Exec(query, true, points, time.Now().UTC(), sessionID, userID, false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *participationRepo) MarkLeft(ctx context.Context, tx *gorm.DB, sessionID, userID uuid.UUID, leftAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.SessionParticipation{}).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Update("left_at", leftAt).Error
}
