package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campfirehq/campfire-backend/internal/gamification"
	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/repos"
	"github.com/campfirehq/campfire-backend/internal/requestdata"
	"github.com/campfirehq/campfire-backend/internal/types"
)

// UserProfile is the authenticated user's own view: identity plus level
// progress derived from the cumulative total.
type UserProfile struct {
	User     *types.User                `json:"user"`
	Progress gamification.LevelProgress `json:"progress"`
}

type UserService interface {
	GetMe(ctx context.Context, tx *gorm.DB) (*UserProfile, error)
	GetAchievements(ctx context.Context) ([]*types.UserAchievement, error)
}

type userService struct {
	db              *gorm.DB
	log             *logger.Logger
	userRepo        repos.UserRepo
	achievementRepo repos.AchievementRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, achievementRepo repos.AchievementRepo) UserService {
	return &userService{
		db:              db,
		log:             baseLog.With("service", "UserService"),
		userRepo:        userRepo,
		achievementRepo: achievementRepo,
	}
}

func (s *userService) currentUserID(ctx context.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("not authenticated")
	}
	return rd.UserID, nil
}

func (s *userService) GetMe(ctx context.Context, tx *gorm.DB) (*UserProfile, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.GetByIDs(ctx, tx, []uuid.UUID{userID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return &UserProfile{
		User:     users[0],
		Progress: gamification.ProgressFor(users[0].Points),
	}, nil
}

func (s *userService) GetAchievements(ctx context.Context) ([]*types.UserAchievement, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.achievementRepo.GetByUserID(ctx, nil, userID)
}
