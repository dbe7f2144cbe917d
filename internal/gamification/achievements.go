package gamification

// Achievement metrics. Both are monotonically non-decreasing, so a
// threshold check against the old and new value is enough to detect an
// unlock exactly once.
const (
	MetricPoints = "points"
	MetricLevel  = "level"
)

type CatalogEntry struct {
	Code        string
	Name        string
	Description string
	Metric      string
	Threshold   int
}

var catalog = []CatalogEntry{
	{Code: "POINTS_100", Name: "Century", Description: "Earn 100 points", Metric: MetricPoints, Threshold: 100},
	{Code: "POINTS_500", Name: "High Roller", Description: "Earn 500 points", Metric: MetricPoints, Threshold: 500},
	{Code: "POINTS_1000", Name: "Point Machine", Description: "Earn 1000 points", Metric: MetricPoints, Threshold: 1000},
	{Code: "LEVEL_5", Name: "Regular", Description: "Reach level 5", Metric: MetricLevel, Threshold: 5},
	{Code: "LEVEL_10", Name: "Veteran", Description: "Reach level 10", Metric: MetricLevel, Threshold: 10},
	{Code: "LEVEL_20", Name: "Pillar", Description: "Reach level 20", Metric: MetricLevel, Threshold: 20},
}

// Catalog returns the static achievement catalog.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}

// CrossedAchievements returns the catalog entries whose threshold the new
// value reaches but the old value had not. Pure comparison, no state.
func CrossedAchievements(oldPoints, newPoints, oldLevel, newLevel int) []CatalogEntry {
	var crossed []CatalogEntry
	for _, entry := range catalog {
		var oldVal, newVal int
		switch entry.Metric {
		case MetricPoints:
			oldVal, newVal = oldPoints, newPoints
		case MetricLevel:
			oldVal, newVal = oldLevel, newLevel
		default:
			continue
		}
		if oldVal < entry.Threshold && newVal >= entry.Threshold {
			crossed = append(crossed, entry)
		}
	}
	return crossed
}
