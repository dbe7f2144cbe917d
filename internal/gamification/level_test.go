package gamification

import "testing"

func TestLevelFor(t *testing.T) {
	cases := []struct {
		name   string
		points int
		want   int
	}{
		{name: "zero_points", points: 0, want: 1},
		{name: "negative_points_floor_at_one", points: -50, want: 1},
		{name: "top_of_level_one", points: 99, want: 1},
		{name: "bottom_of_level_two", points: 100, want: 2},
		{name: "top_of_level_two", points: 199, want: 2},
		{name: "level_eleven", points: 1000, want: 11},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LevelFor(tc.points); got != tc.want {
				t.Fatalf("LevelFor(%d)=%d, want %d", tc.points, got, tc.want)
			}
		})
	}
}

func TestLevelForMonotonic(t *testing.T) {
	prev := LevelFor(0)
	for points := 1; points <= 2000; points++ {
		level := LevelFor(points)
		if level < prev {
			t.Fatalf("LevelFor(%d)=%d dropped below LevelFor(%d)=%d", points, level, points-1, prev)
		}
		prev = level
	}
}

func TestProgressFor(t *testing.T) {
	cases := []struct {
		name          string
		points        int
		wantNext      int
		wantRemaining int
		wantPercent   float64
	}{
		{name: "fresh_user", points: 0, wantNext: 2, wantRemaining: 100, wantPercent: 0},
		{name: "mid_band", points: 150, wantNext: 3, wantRemaining: 50, wantPercent: 50},
		{name: "band_edge", points: 199, wantNext: 3, wantRemaining: 1, wantPercent: 99},
		{name: "exact_level_boundary", points: 200, wantNext: 4, wantRemaining: 100, wantPercent: 0},
		{name: "negative_clamped", points: -10, wantNext: 2, wantRemaining: 100, wantPercent: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ProgressFor(tc.points)
			if got.NextLevel != tc.wantNext {
				t.Fatalf("ProgressFor(%d).NextLevel=%d, want %d", tc.points, got.NextLevel, tc.wantNext)
			}
			if got.PointsRemaining != tc.wantRemaining {
				t.Fatalf("ProgressFor(%d).PointsRemaining=%d, want %d", tc.points, got.PointsRemaining, tc.wantRemaining)
			}
			if got.ProgressPercent != tc.wantPercent {
				t.Fatalf("ProgressFor(%d).ProgressPercent=%v, want %v", tc.points, got.ProgressPercent, tc.wantPercent)
			}
		})
	}
}
