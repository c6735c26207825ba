package stats

import (
	"math"

	"github.com/verte-zerg/shotlog/internal/model"
)

const (
	ratioStdDevDivisor = 2.0
	timeStdDevDivisor  = 10.0
	minImprovingRatio  = -0.1
	maxStableTimeDrift = 2.0
)

// ShotTrends compares the older and newer halves of a window of shots.
type ShotTrends struct {
	DaysAnalyzed                int
	TotalShots                  int
	ShotsPerDay                 float64
	FirstHalfAvgBrewRatio       float64
	SecondHalfAvgBrewRatio      float64
	BrewRatioTrend              float64
	FirstHalfAvgExtractionTime  float64
	SecondHalfAvgExtractionTime float64
	ExtractionTimeTrend         float64
	IsImproving                 bool
}

// ComputeShotTrends splits shots at the midpoint of their chronological order and
// compares the averages of both halves.
func ComputeShotTrends(shots []model.Shot, days int) ShotTrends {
	if len(shots) == 0 {
		return ShotTrends{DaysAnalyzed: days}
	}
	sorted := sortedByTime(shots)
	mid := len(sorted) / 2
	first := summarize(sorted[:mid])
	second := summarize(sorted[mid:])

	t := ShotTrends{
		DaysAnalyzed:                days,
		TotalShots:                  len(sorted),
		FirstHalfAvgBrewRatio:       first.avgRatio,
		SecondHalfAvgBrewRatio:      second.avgRatio,
		FirstHalfAvgExtractionTime:  first.avgTime,
		SecondHalfAvgExtractionTime: second.avgTime,
	}
	if days > 0 {
		t.ShotsPerDay = float64(len(sorted)) / float64(days)
	}
	if first.total > 0 && second.total > 0 {
		t.BrewRatioTrend = second.avgRatio - first.avgRatio
		t.ExtractionTimeTrend = second.avgTime - first.avgTime
	}
	t.IsImproving = t.BrewRatioTrend > minImprovingRatio && math.Abs(t.ExtractionTimeTrend) < maxStableTimeDrift
	return t
}

// ConsistencyScore rates from 0 to 100 how tightly shots cluster around their mean
// brew ratio and extraction time. Fewer than two shots score 100.
func ConsistencyScore(shots []model.Shot) float64 {
	if len(shots) < 2 {
		return 100
	}
	s := summarize(shots)
	ratioScore := (1 - math.Min(StdDev(s.ratios)/ratioStdDevDivisor, 1)) * 50
	timeScore := (1 - math.Min(StdDev(s.extractTimes)/timeStdDevDivisor, 1)) * 50
	return math.Max(0, math.Min(100, ratioScore+timeScore))
}

// ImprovementTrend returns the optimal-time percentage of the newest quartile minus that
// of the oldest quartile. Fewer than four shots yield 0.
func ImprovementTrend(shots []model.Shot) float64 {
	if len(shots) < 4 {
		return 0
	}
	sorted := sortedByTime(shots)
	q := len(sorted) / 4
	oldest := summarize(sorted[:q])
	newest := summarize(sorted[len(sorted)-q:])
	return newest.optimalPct - oldest.optimalPct
}
