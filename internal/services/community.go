package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/repos"
	"github.com/campfirehq/campfire-backend/internal/requestdata"
	"github.com/campfirehq/campfire-backend/internal/types"
)

// CommunityService manages communities and the live sessions scheduled
// inside them. Session rows carry the timing metadata the gamification core
// reads; the video room itself is external.
type CommunityService interface {
	CreateCommunity(ctx context.Context, slug, name, description string) (*types.Community, error)
	JoinCommunity(ctx context.Context, communityID uuid.UUID) error
	ScheduleSession(ctx context.Context, communityID uuid.UUID, title string, scheduledAt time.Time, durationMinutes int, metadata datatypes.JSON) (*types.LiveSession, error)
	ListSessions(ctx context.Context, communityID uuid.UUID) ([]*types.LiveSession, error)
}

type communityService struct {
	db            *gorm.DB
	log           *logger.Logger
	communityRepo repos.CommunityRepo
	memberRepo    repos.CommunityMemberRepo
	sessionRepo   repos.LiveSessionRepo
}

func NewCommunityService(db *gorm.DB, baseLog *logger.Logger, communityRepo repos.CommunityRepo, memberRepo repos.CommunityMemberRepo, sessionRepo repos.LiveSessionRepo) CommunityService {
	return &communityService{
		db:            db,
		log:           baseLog.With("service", "CommunityService"),
		communityRepo: communityRepo,
		memberRepo:    memberRepo,
		sessionRepo:   sessionRepo,
	}
}

func requireUser(ctx context.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("not authenticated")
	}
	return rd.UserID, nil
}

func (s *communityService) CreateCommunity(ctx context.Context, slug, name, description string) (*types.Community, error) {
	ownerID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("a slug and a name are required")
	}

	community := &types.Community{
		ID:          uuid.New(),
		Slug:        slug,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.communityRepo.Create(ctx, tx, []*types.Community{community}); err != nil {
			return fmt.Errorf("failed to create community: %w", err)
		}
		if _, err := s.memberRepo.AddIfAbsent(ctx, tx, &types.CommunityMember{
			ID:          uuid.New(),
			CommunityID: community.ID,
			UserID:      ownerID,
			Role:        "owner",
		}); err != nil {
			return fmt.Errorf("failed to add owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return community, nil
}

func (s *communityService) JoinCommunity(ctx context.Context, communityID uuid.UUID) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	if _, err := s.communityRepo.GetByID(ctx, nil, communityID); err != nil {
		return fmt.Errorf("community not found")
	}
	_, err = s.memberRepo.AddIfAbsent(ctx, nil, &types.CommunityMember{
		ID:          uuid.New(),
		CommunityID: communityID,
		UserID:      userID,
	})
	return err
}

func (s *communityService) ScheduleSession(ctx context.Context, communityID uuid.UUID, title string, scheduledAt time.Time, durationMinutes int, metadata datatypes.JSON) (*types.LiveSession, error) {
	hostID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("a session title is required")
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("session duration must be positive")
	}
	if _, err := s.memberRepo.GetByCommunityAndUser(ctx, nil, communityID, hostID); err != nil {
		return nil, fmt.Errorf("only community members can schedule sessions")
	}

	session := &types.LiveSession{
		ID:              uuid.New(),
		CommunityID:     communityID,
		HostID:          hostID,
		Title:           strings.TrimSpace(title),
		ScheduledAt:     scheduledAt.UTC(),
		DurationMinutes: durationMinutes,
		Status:          "scheduled",
		Metadata:        metadata,
	}
	if _, err := s.sessionRepo.Create(ctx, nil, []*types.LiveSession{session}); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

func (s *communityService) ListSessions(ctx context.Context, communityID uuid.UUID) ([]*types.LiveSession, error) {
	return s.sessionRepo.GetByCommunityID(ctx, nil, communityID)
}
