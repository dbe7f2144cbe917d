package gamification

// Levels are flat 100-point bands: level 1 spans [0,99], level 2 [100,199].

const PointsPerLevel = 100

// LevelFor derives a level from a cumulative point total. Never below 1.
func LevelFor(points int) int {
	if points < 0 {
		return 1
	}
	return points/PointsPerLevel + 1
}

// MinPointsForLevel returns the lowest total that maps to level.
func MinPointsForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return (level - 1) * PointsPerLevel
}

type LevelProgress struct {
	NextLevel       int     `json:"next_level"`
	PointsRemaining int     `json:"points_remaining"`
	ProgressPercent float64 `json:"progress_percent"`
}

// ProgressFor reports how far into the current level band a point total sits.
func ProgressFor(points int) LevelProgress {
	if points < 0 {
		points = 0
	}
	current := LevelFor(points)
	next := current + 1
	intoBand := points - MinPointsForLevel(current)
	percent := float64(intoBand) / float64(PointsPerLevel) * 100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return LevelProgress{
		NextLevel:       next,
		PointsRemaining: MinPointsForLevel(next) - points,
		ProgressPercent: percent,
	}
}
