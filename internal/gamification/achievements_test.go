package gamification

import "testing"

func codesOf(entries []CatalogEntry) []string {
	var codes []string
	for _, e := range entries {
		codes = append(codes, e.Code)
	}
	return codes
}

func TestCrossedAchievements(t *testing.T) {
	cases := []struct {
		name      string
		oldPoints int
		newPoints int
		oldLevel  int
		newLevel  int
		want      []string
	}{
		{
			name:      "no_crossing",
			oldPoints: 10, newPoints: 50, oldLevel: 1, newLevel: 1,
			want: nil,
		},
		{
			name:      "points_100",
			oldPoints: 80, newPoints: 130, oldLevel: 1, newLevel: 2,
			want: []string{"POINTS_100"},
		},
		{
			name:      "exact_threshold_counts",
			oldPoints: 99, newPoints: 100, oldLevel: 1, newLevel: 2,
			want: []string{"POINTS_100"},
		},
		{
			name:      "already_past_threshold_not_repeated",
			oldPoints: 100, newPoints: 150, oldLevel: 2, newLevel: 2,
			want: nil,
		},
		{
			name:      "big_jump_crosses_several",
			oldPoints: 90, newPoints: 600, oldLevel: 1, newLevel: 7,
			want: []string{"POINTS_100", "POINTS_500", "LEVEL_5"},
		},
		{
			name:      "level_only",
			oldPoints: 390, newPoints: 410, oldLevel: 4, newLevel: 5,
			want: []string{"LEVEL_5"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := codesOf(CrossedAchievements(tc.oldPoints, tc.newPoints, tc.oldLevel, tc.newLevel))
			if len(got) != len(tc.want) {
				t.Fatalf("CrossedAchievements=%v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("CrossedAchievements=%v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestCatalogIsCopied(t *testing.T) {
	first := Catalog()
	first[0].Code = "MUTATED"
	if Catalog()[0].Code == "MUTATED" {
		t.Fatal("Catalog returned shared backing storage")
	}
}
