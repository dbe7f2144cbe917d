package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/repos"
)

const (
	PeriodAllTime = "alltime"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// ErrLeaderboardUnavailable means a windowed board was requested but the
// Redis cache backing windowed scores is not configured.
var ErrLeaderboardUnavailable = errors.New("windowed leaderboard cache unavailable")

// ErrUnknownPeriod means the requested period is not one of the supported
// leaderboard windows.
var ErrUnknownPeriod = errors.New("unknown leaderboard period")

type LeaderboardEntry struct {
	Rank      int       `json:"rank"`
	UserID    uuid.UUID `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	AvatarURL string    `json:"avatar_url"`
	Points    int       `json:"points"`
	Level     int       `json:"level"`
}

type Leaderboard struct {
	CommunityID  uuid.UUID           `json:"community_id"`
	Period       string              `json:"period"`
	TotalMembers int64               `json:"total_members"`
	Entries      []*LeaderboardEntry `json:"entries"`
}

// LeaderboardService produces ranked member views for a community. The
// all-time board reads straight from Postgres (user.points is the source of
// truth); weekly and monthly boards come from Redis sorted sets fed on every
// point award.
type LeaderboardService interface {
	RecordAward(ctx context.Context, communityID, userID uuid.UUID, points int, now time.Time) error
	Top(ctx context.Context, communityID uuid.UUID, period string, limit int, now time.Time) (*Leaderboard, error)
	RankFor(ctx context.Context, communityID, userID uuid.UUID, period string, now time.Time) (int64, error)
}

type leaderboardService struct {
	db         *gorm.DB
	log        *logger.Logger
	rdb        *redis.Client
	memberRepo repos.CommunityMemberRepo
	userRepo   repos.UserRepo
}

func NewLeaderboardService(db *gorm.DB, baseLog *logger.Logger, rdb *redis.Client, memberRepo repos.CommunityMemberRepo, userRepo repos.UserRepo) LeaderboardService {
	return &leaderboardService{
		db:         db,
		log:        baseLog.With("service", "LeaderboardService"),
		rdb:        rdb,
		memberRepo: memberRepo,
		userRepo:   userRepo,
	}
}

func weeklyKey(communityID uuid.UUID, now time.Time) string {
	year, week := now.UTC().ISOWeek()
	return fmt.Sprintf("leaderboard:%s:weekly:%d-W%02d", communityID, year, week)
}

func monthlyKey(communityID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("leaderboard:%s:monthly:%s", communityID, now.UTC().Format("2006-01"))
}

// RecordAward folds a point award into the current weekly and monthly sorted
// sets. Best-effort: the Postgres totals are authoritative, so cache failures
// are logged by the caller rather than failing the award.
func (s *leaderboardService) RecordAward(ctx context.Context, communityID, userID uuid.UUID, points int, now time.Time) error {
	if s.rdb == nil || points <= 0 {
		return nil
	}
	member := userID.String()
	pipe := s.rdb.TxPipeline()
	wk := weeklyKey(communityID, now)
	mk := monthlyKey(communityID, now)
	pipe.ZIncrBy(ctx, wk, float64(points), member)
	pipe.Expire(ctx, wk, 14*24*time.Hour)
	pipe.ZIncrBy(ctx, mk, float64(points), member)
	pipe.Expire(ctx, mk, 62*24*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *leaderboardService) Top(ctx context.Context, communityID uuid.UUID, period string, limit int, now time.Time) (*Leaderboard, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	switch period {
	case PeriodAllTime, "":
		return s.topAllTime(ctx, communityID, limit)
	case PeriodWeekly:
		return s.topWindowed(ctx, communityID, PeriodWeekly, weeklyKey(communityID, now), limit)
	case PeriodMonthly:
		return s.topWindowed(ctx, communityID, PeriodMonthly, monthlyKey(communityID, now), limit)
	default:
		return nil, ErrUnknownPeriod
	}
}

func (s *leaderboardService) topAllTime(ctx context.Context, communityID uuid.UUID, limit int) (*Leaderboard, error) {
	var (
		standings []*repos.MemberStanding
		total     int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		standings, err = s.memberRepo.TopByPoints(gctx, nil, communityID, limit, 0)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.memberRepo.CountByCommunity(gctx, nil, communityID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	board := &Leaderboard{CommunityID: communityID, Period: PeriodAllTime, TotalMembers: total}
	for i, st := range standings {
		board.Entries = append(board.Entries, &LeaderboardEntry{
			Rank:      i + 1,
			UserID:    st.UserID,
			FirstName: st.FirstName,
			LastName:  st.LastName,
			AvatarURL: st.AvatarURL,
			Points:    st.Points,
			Level:     st.Level,
		})
	}
	return board, nil
}

func (s *leaderboardService) topWindowed(ctx context.Context, communityID uuid.UUID, period, key string, limit int) (*Leaderboard, error) {
	if s.rdb == nil {
		return nil, ErrLeaderboardUnavailable
	}

	scores, err := s.rdb.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	total, err := s.rdb.ZCard(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	board := &Leaderboard{CommunityID: communityID, Period: period, TotalMembers: total}
	if len(scores) == 0 {
		return board, nil
	}

	ids := make([]uuid.UUID, 0, len(scores))
	for _, z := range scores {
		id, err := uuid.Parse(fmt.Sprint(z.Member))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	users, err := s.userRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]int, len(users))
	for i, u := range users {
		byID[u.ID] = i
	}

	rank := 0
	for _, z := range scores {
		id, err := uuid.Parse(fmt.Sprint(z.Member))
		if err != nil {
			continue
		}
		rank++
		entry := &LeaderboardEntry{
			Rank:   rank,
			UserID: id,
			Points: int(z.Score),
		}
		if idx, ok := byID[id]; ok {
			u := users[idx]
			entry.FirstName = u.FirstName
			entry.LastName = u.LastName
			entry.AvatarURL = u.AvatarURL
			entry.Level = u.Level
		}
		board.Entries = append(board.Entries, entry)
	}
	return board, nil
}

// RankFor returns the 1-based rank of one member within a board, or 0 when
// the user has no score in the requested window.
func (s *leaderboardService) RankFor(ctx context.Context, communityID, userID uuid.UUID, period string, now time.Time) (int64, error) {
	switch period {
	case PeriodAllTime, "":
		return s.memberRepo.RankByPoints(ctx, nil, communityID, userID)
	case PeriodWeekly, PeriodMonthly:
		if s.rdb == nil {
			return 0, ErrLeaderboardUnavailable
		}
		key := weeklyKey(communityID, now)
		if period == PeriodMonthly {
			key = monthlyKey(communityID, now)
		}
		rank, err := s.rdb.ZRevRank(ctx, key, userID.String()).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return 0, nil
			}
			return 0, err
		}
		return rank + 1, nil
	default:
		return 0, ErrUnknownPeriod
	}
}
