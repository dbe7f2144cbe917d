package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campfirehq/campfire-backend/internal/gamification"
	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/repos"
	"github.com/campfirehq/campfire-backend/internal/types"
)

type testEnv struct {
	db                *gorm.DB
	policy            *gamification.PointPolicy
	userRepo          repos.UserRepo
	memberRepo        repos.CommunityMemberRepo
	sessionRepo       repos.LiveSessionRepo
	participationRepo repos.ParticipationRepo
	achievementRepo   repos.AchievementRepo
	participation     ParticipationService
	progression       ProgressionService
	leaderboard       LeaderboardService
	tracker           LiveSessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// sqlite allows one writer at a time; a single pooled connection makes
	// concurrent service calls queue instead of failing busy.
	sqlDB.SetMaxOpenConns(1)
	if err := gdb.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Community{},
		&types.CommunityMember{},
		&types.LiveSession{},
		&types.SessionParticipation{},
		&types.Achievement{},
		&types.UserAchievement{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logger.NewNop()
	policy := gamification.DefaultPolicy()

	env := &testEnv{
		db:                gdb,
		policy:            policy,
		userRepo:          repos.NewUserRepo(gdb, log),
		memberRepo:        repos.NewCommunityMemberRepo(gdb, log),
		sessionRepo:       repos.NewLiveSessionRepo(gdb, log),
		participationRepo: repos.NewParticipationRepo(gdb, log),
		achievementRepo:   repos.NewAchievementRepo(gdb, log),
	}
	seedCatalog(t, env.achievementRepo)
	env.participation = NewParticipationService(gdb, log, env.participationRepo, policy)
	env.progression = NewProgressionService(gdb, log, env.userRepo, env.achievementRepo)
	env.leaderboard = NewLeaderboardService(gdb, log, nil, env.memberRepo, env.userRepo)
	env.tracker = NewLiveSessionService(gdb, log, env.sessionRepo, env.memberRepo, env.participation, env.progression, env.leaderboard)
	return env
}

func seedCatalog(t *testing.T, repo repos.AchievementRepo) {
	t.Helper()
	entries := gamification.Catalog()
	rows := make([]*types.Achievement, 0, len(entries))
	now := time.Now().UTC()
	for _, entry := range entries {
		rows = append(rows, &types.Achievement{
			ID:          uuid.New(),
			Code:        entry.Code,
			Name:        entry.Name,
			Description: entry.Description,
			Metric:      entry.Metric,
			Threshold:   entry.Threshold,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if err := repo.SeedCatalog(context.Background(), nil, rows); err != nil {
		t.Fatalf("seed achievement catalog: %v", err)
	}
}

func (e *testEnv) createUser(t *testing.T, points int) *types.User {
	t.Helper()
	user := &types.User{
		ID:        uuid.New(),
		Email:     fmt.Sprintf("%s@example.com", uuid.NewString()),
		Password:  "hashed",
		FirstName: "Test",
		LastName:  "User",
		Points:    points,
		Level:     gamification.LevelFor(points),
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) createCommunity(t *testing.T, ownerID uuid.UUID) *types.Community {
	t.Helper()
	community := &types.Community{
		ID:      uuid.New(),
		Slug:    uuid.NewString(),
		Name:    "Test Community",
		OwnerID: ownerID,
	}
	if err := e.db.Create(community).Error; err != nil {
		t.Fatalf("create community: %v", err)
	}
	return community
}

func (e *testEnv) createSession(t *testing.T, communityID, hostID uuid.UUID, scheduledAt time.Time, durationMinutes int) *types.LiveSession {
	t.Helper()
	session := &types.LiveSession{
		ID:              uuid.New(),
		CommunityID:     communityID,
		HostID:          hostID,
		Title:           "Weekly Hangout",
		ScheduledAt:     scheduledAt,
		DurationMinutes: durationMinutes,
		Status:          "live",
	}
	if err := e.db.Create(session).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session
}

// sessionFixture creates a host, a community, a participant with the given
// prior point total, and a live session scheduled at scheduledAt.
func (e *testEnv) sessionFixture(t *testing.T, priorPoints int, scheduledAt time.Time, durationMinutes int) (*types.User, *types.LiveSession) {
	t.Helper()
	host := e.createUser(t, 0)
	community := e.createCommunity(t, host.ID)
	session := e.createSession(t, community.ID, host.ID, scheduledAt, durationMinutes)
	user := e.createUser(t, priorPoints)
	return user, session
}

func (e *testEnv) userPoints(t *testing.T, userID uuid.UUID) (int, int) {
	t.Helper()
	var user types.User
	if err := e.db.Where("id = ?", userID).First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	return user.Points, user.Level
}

func (e *testEnv) participationRecord(t *testing.T, sessionID, userID uuid.UUID) *types.SessionParticipation {
	t.Helper()
	var record types.SessionParticipation
	if err := e.db.Where("session_id = ? AND user_id = ?", sessionID, userID).First(&record).Error; err != nil {
		t.Fatalf("load participation: %v", err)
	}
	return &record
}
