package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/types"
)

func (e *testEnv) addMember(t *testing.T, communityID uuid.UUID, points int) *types.User {
	t.Helper()
	user := e.createUser(t, points)
	added, err := e.memberRepo.AddIfAbsent(context.Background(), nil, &types.CommunityMember{
		ID:          uuid.New(),
		CommunityID: communityID,
		UserID:      user.ID,
	})
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	if !added {
		t.Fatal("member unexpectedly already present")
	}
	return user
}

func TestAllTimeLeaderboardOrdering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, 0)
	community := env.createCommunity(t, owner.ID)

	low := env.addMember(t, community.ID, 40)
	high := env.addMember(t, community.ID, 320)
	mid := env.addMember(t, community.ID, 150)

	board, err := env.leaderboard.Top(ctx, community.ID, PeriodAllTime, 10, time.Now().UTC())
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if board.TotalMembers != 3 {
		t.Fatalf("TotalMembers=%d, want 3", board.TotalMembers)
	}
	if len(board.Entries) != 3 {
		t.Fatalf("len(Entries)=%d, want 3", len(board.Entries))
	}

	wantOrder := []uuid.UUID{high.ID, mid.ID, low.ID}
	wantPoints := []int{320, 150, 40}
	for i, entry := range board.Entries {
		if entry.UserID != wantOrder[i] {
			t.Fatalf("entry %d user=%s, want %s", i, entry.UserID, wantOrder[i])
		}
		if entry.Points != wantPoints[i] {
			t.Fatalf("entry %d points=%d, want %d", i, entry.Points, wantPoints[i])
		}
		if entry.Rank != i+1 {
			t.Fatalf("entry %d rank=%d, want %d", i, entry.Rank, i+1)
		}
	}
}

func TestAllTimeLeaderboardLimit(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, 0)
	community := env.createCommunity(t, owner.ID)
	for i := 0; i < 5; i++ {
		env.addMember(t, community.ID, (i+1)*10)
	}

	board, err := env.leaderboard.Top(context.Background(), community.ID, "", 2, time.Now().UTC())
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(board.Entries) != 2 {
		t.Fatalf("len(Entries)=%d, want 2", len(board.Entries))
	}
	if board.TotalMembers != 5 {
		t.Fatalf("TotalMembers=%d, want 5 even when the page is smaller", board.TotalMembers)
	}
}

func TestAllTimeRank(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, 0)
	community := env.createCommunity(t, owner.ID)

	env.addMember(t, community.ID, 300)
	member := env.addMember(t, community.ID, 120)
	env.addMember(t, community.ID, 50)

	rank, err := env.leaderboard.RankFor(ctx, community.ID, member.ID, PeriodAllTime, time.Now().UTC())
	if err != nil {
		t.Fatalf("RankFor: %v", err)
	}
	if rank != 2 {
		t.Fatalf("rank=%d, want 2", rank)
	}

	outsider := env.createUser(t, 999)
	if _, err := env.leaderboard.RankFor(ctx, community.ID, outsider.ID, PeriodAllTime, time.Now().UTC()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("RankFor non-member: err=%v, want gorm.ErrRecordNotFound", err)
	}
}

func TestWindowedBoardsNeedRedis(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, 0)
	community := env.createCommunity(t, owner.ID)
	now := time.Now().UTC()

	for _, period := range []string{PeriodWeekly, PeriodMonthly} {
		if _, err := env.leaderboard.Top(ctx, community.ID, period, 10, now); !errors.Is(err, ErrLeaderboardUnavailable) {
			t.Fatalf("Top(%s) without redis: err=%v, want ErrLeaderboardUnavailable", period, err)
		}
		if _, err := env.leaderboard.RankFor(ctx, community.ID, owner.ID, period, now); !errors.Is(err, ErrLeaderboardUnavailable) {
			t.Fatalf("RankFor(%s) without redis: err=%v, want ErrLeaderboardUnavailable", period, err)
		}
	}

	// RecordAward degrades to a no-op rather than failing the award path.
	if err := env.leaderboard.RecordAward(ctx, community.ID, owner.ID, 25, now); err != nil {
		t.Fatalf("RecordAward without redis: %v", err)
	}
}

func TestUnknownPeriodRejected(t *testing.T) {
	env := newTestEnv(t)
	community := env.createCommunity(t, env.createUser(t, 0).ID)

	if _, err := env.leaderboard.Top(context.Background(), community.ID, "daily", 10, time.Now().UTC()); !errors.Is(err, ErrUnknownPeriod) {
		t.Fatalf("Top(daily): err=%v, want ErrUnknownPeriod", err)
	}
	if _, err := env.leaderboard.RankFor(context.Background(), community.ID, uuid.New(), "daily", time.Now().UTC()); !errors.Is(err, ErrUnknownPeriod) {
		t.Fatalf("RankFor(daily): err=%v, want ErrUnknownPeriod", err)
	}
}

func TestWindowedLeaderboardWithRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping redis-backed leaderboard test")
	}

	env := newTestEnv(t)
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Fatalf("redis ping: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })

	board := NewLeaderboardService(env.db, logger.NewNop(), rdb, env.memberRepo, env.userRepo)

	owner := env.createUser(t, 0)
	community := env.createCommunity(t, owner.ID)
	alice := env.addMember(t, community.ID, 0)
	bob := env.addMember(t, community.ID, 0)
	now := time.Now().UTC()

	t.Cleanup(func() {
		rdb.Del(ctx, weeklyKey(community.ID, now), monthlyKey(community.ID, now))
	})

	if err := board.RecordAward(ctx, community.ID, alice.ID, 30, now); err != nil {
		t.Fatalf("RecordAward alice: %v", err)
	}
	if err := board.RecordAward(ctx, community.ID, bob.ID, 45, now); err != nil {
		t.Fatalf("RecordAward bob: %v", err)
	}
	if err := board.RecordAward(ctx, community.ID, alice.ID, 5, now); err != nil {
		t.Fatalf("RecordAward alice again: %v", err)
	}

	weekly, err := board.Top(ctx, community.ID, PeriodWeekly, 10, now)
	if err != nil {
		t.Fatalf("Top weekly: %v", err)
	}
	if len(weekly.Entries) != 2 {
		t.Fatalf("weekly entries=%d, want 2", len(weekly.Entries))
	}
	if weekly.Entries[0].UserID != bob.ID || weekly.Entries[0].Points != 45 {
		t.Fatalf("weekly leader=%+v, want bob with 45", weekly.Entries[0])
	}
	if weekly.Entries[1].UserID != alice.ID || weekly.Entries[1].Points != 35 {
		t.Fatalf("weekly runner-up=%+v, want alice with 35", weekly.Entries[1])
	}
	if weekly.Entries[1].FirstName == "" {
		t.Fatal("windowed entry not hydrated from the user table")
	}

	rank, err := board.RankFor(ctx, community.ID, alice.ID, PeriodMonthly, now)
	if err != nil {
		t.Fatalf("RankFor monthly: %v", err)
	}
	if rank != 2 {
		t.Fatalf("alice monthly rank=%d, want 2", rank)
	}

	// A member with no awards this window is unranked, not an error.
	idle := env.addMember(t, community.ID, 0)
	rank, err = board.RankFor(ctx, community.ID, idle.ID, PeriodWeekly, now)
	if err != nil {
		t.Fatalf("RankFor for unscored member: %v", err)
	}
	if rank != 0 {
		t.Fatalf("unscored member rank=%d, want 0", rank)
	}
}
