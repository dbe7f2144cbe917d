package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campfirehq/campfire-backend/internal/gamification"
)

func TestApplyDeltaLevelMatchesTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, 0)
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	total := 0
	for _, delta := range []int{10, 15, 5, 60, 9, 1, 250, 40, 700} {
		outcome, err := env.progression.ApplyDelta(ctx, nil, user.ID, delta, now)
		if err != nil {
			t.Fatalf("ApplyDelta(%d): %v", delta, err)
		}
		total += delta
		if outcome.NewTotal != total {
			t.Fatalf("after delta %d: NewTotal=%d, want %d", delta, outcome.NewTotal, total)
		}
		if want := gamification.LevelFor(total); outcome.NewLevel != want {
			t.Fatalf("after delta %d: NewLevel=%d, want %d", delta, outcome.NewLevel, want)
		}
		points, level := env.userPoints(t, user.ID)
		if points != total || level != gamification.LevelFor(total) {
			t.Fatalf("stored (points=%d, level=%d) out of sync with total %d", points, level, total)
		}
	}
}

func TestApplyDeltaLevelUpFlag(t *testing.T) {
	cases := []struct {
		name        string
		prior       int
		delta       int
		wantLevelUp bool
		wantLevel   int
	}{
		{name: "within_level", prior: 10, delta: 30, wantLevelUp: false, wantLevel: 1},
		{name: "crosses_one_level", prior: 95, delta: 10, wantLevelUp: true, wantLevel: 2},
		{name: "lands_on_boundary", prior: 99, delta: 1, wantLevelUp: true, wantLevel: 2},
		{name: "crosses_many_levels", prior: 50, delta: 500, wantLevelUp: true, wantLevel: 6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			user := env.createUser(t, tc.prior)

			outcome, err := env.progression.ApplyDelta(context.Background(), nil, user.ID, tc.delta, time.Now().UTC())
			if err != nil {
				t.Fatalf("ApplyDelta: %v", err)
			}
			if outcome.LevelUp != tc.wantLevelUp {
				t.Fatalf("LevelUp=%v, want %v", outcome.LevelUp, tc.wantLevelUp)
			}
			if outcome.NewLevel != tc.wantLevel {
				t.Fatalf("NewLevel=%d, want %d", outcome.NewLevel, tc.wantLevel)
			}
		})
	}
}

func TestApplyDeltaUnlocksOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, 80)
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	first, err := env.progression.ApplyDelta(ctx, nil, user.ID, 30, now)
	if err != nil {
		t.Fatalf("first ApplyDelta: %v", err)
	}
	if len(first.NewUnlocks) != 1 || first.NewUnlocks[0].Code != "POINTS_100" {
		t.Fatalf("first NewUnlocks=%v, want [POINTS_100]", first.NewUnlocks)
	}

	// Drop back is impossible, but re-crossing the catalogued thresholds via
	// further deltas must not re-unlock. Jump past 500 and level 5 in one go.
	second, err := env.progression.ApplyDelta(ctx, nil, user.ID, 500, now)
	if err != nil {
		t.Fatalf("second ApplyDelta: %v", err)
	}
	codes := map[string]bool{}
	for _, entry := range second.NewUnlocks {
		if codes[entry.Code] {
			t.Fatalf("duplicate unlock %s in one outcome", entry.Code)
		}
		codes[entry.Code] = true
	}
	if !codes["POINTS_500"] || !codes["LEVEL_5"] {
		t.Fatalf("second NewUnlocks=%v, want POINTS_500 and LEVEL_5", second.NewUnlocks)
	}
	if codes["POINTS_100"] {
		t.Fatal("POINTS_100 unlocked again on a later delta")
	}
}

func TestApplyDeltaUserNotFound(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.progression.ApplyDelta(context.Background(), nil, uuid.New(), 10, time.Now().UTC()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("positive delta for missing user: err=%v, want ErrUserNotFound", err)
	}
	if _, err := env.progression.ApplyDelta(context.Background(), nil, uuid.New(), 0, time.Now().UTC()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("zero delta for missing user: err=%v, want ErrUserNotFound", err)
	}
}

func TestApplyDeltaZeroIsReadOnly(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, 42)

	outcome, err := env.progression.ApplyDelta(context.Background(), nil, user.ID, 0, time.Now().UTC())
	if err != nil {
		t.Fatalf("ApplyDelta(0): %v", err)
	}
	if outcome.NewTotal != 42 || outcome.NewLevel != 1 || outcome.LevelUp {
		t.Fatalf("zero-delta outcome=%+v, want unchanged totals", outcome)
	}

	points, _ := env.userPoints(t, user.ID)
	if points != 42 {
		t.Fatalf("points changed to %d on a zero delta", points)
	}
}

func TestApplyDeltaRejectsNegative(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, 50)

	if _, err := env.progression.ApplyDelta(context.Background(), nil, user.ID, -5, time.Now().UTC()); err == nil {
		t.Fatal("negative delta accepted, want error")
	}
	points, _ := env.userPoints(t, user.ID)
	if points != 50 {
		t.Fatalf("points=%d after rejected delta, want 50", points)
	}
}
