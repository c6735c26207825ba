package stats

import (
	"sort"
	"time"

	"github.com/verte-zerg/shotlog/internal/model"
)

const recentShotCount = 7

// BeanAnalytics summarizes the shots pulled with a single bean.
type BeanAnalytics struct {
	TotalShots                  int
	AvgBrewRatio                float64
	AvgExtractionTime           float64
	AvgWeightIn                 float64
	AvgWeightOut                float64
	OptimalExtractionPercentage float64
	TypicalRatioPercentage      float64
	BestShot                    *model.Shot
	ConsistencyScore            float64
	ImprovementTrend            float64
	FirstShotDate               time.Time
	LastShotDate                time.Time
}

// OverallStatistics summarizes shots across every bean.
type OverallStatistics struct {
	TotalShots                  int
	UniqueBeans                 int
	AvgBrewRatio                float64
	AvgExtractionTime           float64
	AvgWeightIn                 float64
	AvgWeightOut                float64
	OptimalExtractionPercentage float64
	TypicalRatioPercentage      float64
	MostUsedGrinderSetting      string
	RecentAvgBrewRatio          float64
	ConsistencyScore            float64
	FirstShotDate               time.Time
	LastShotDate                time.Time
}

type summary struct {
	total        int
	avgRatio     float64
	avgTime      float64
	avgIn        float64
	avgOut       float64
	optimalPct   float64
	typicalPct   float64
	first, last  time.Time
	ratios       []float64
	extractTimes []float64
}

func summarize(shots []model.Shot) summary {
	s := summary{
		total:        len(shots),
		ratios:       make([]float64, 0, len(shots)),
		extractTimes: make([]float64, 0, len(shots)),
	}
	if len(shots) == 0 {
		return s
	}
	var sumIn, sumOut float64
	optimal, typical := 0, 0
	s.first, s.last = shots[0].Timestamp, shots[0].Timestamp
	for _, shot := range shots {
		s.ratios = append(s.ratios, shot.BrewRatio())
		s.extractTimes = append(s.extractTimes, float64(shot.ExtractionTimeSeconds))
		sumIn += shot.CoffeeWeightIn
		sumOut += shot.CoffeeWeightOut
		if shot.IsOptimalExtractionTime() {
			optimal++
		}
		if shot.IsTypicalBrewRatio() {
			typical++
		}
		if shot.Timestamp.Before(s.first) {
			s.first = shot.Timestamp
		}
		if shot.Timestamp.After(s.last) {
			s.last = shot.Timestamp
		}
	}
	n := float64(len(shots))
	s.avgRatio = Mean(s.ratios)
	s.avgTime = Mean(s.extractTimes)
	s.avgIn = sumIn / n
	s.avgOut = sumOut / n
	s.optimalPct = percentage(optimal, len(shots))
	s.typicalPct = percentage(typical, len(shots))
	return s
}

// ComputeBeanAnalytics computes per-bean statistics. Empty input yields the zero value.
func ComputeBeanAnalytics(shots []model.Shot) BeanAnalytics {
	if len(shots) == 0 {
		return BeanAnalytics{}
	}
	s := summarize(shots)
	return BeanAnalytics{
		TotalShots:                  s.total,
		AvgBrewRatio:                s.avgRatio,
		AvgExtractionTime:           s.avgTime,
		AvgWeightIn:                 s.avgIn,
		AvgWeightOut:                s.avgOut,
		OptimalExtractionPercentage: s.optimalPct,
		TypicalRatioPercentage:      s.typicalPct,
		BestShot:                    BestShot(shots),
		ConsistencyScore:            ConsistencyScore(shots),
		ImprovementTrend:            ImprovementTrend(shots),
		FirstShotDate:               s.first,
		LastShotDate:                s.last,
	}
}

// ComputeOverallStatistics computes statistics across beans. Empty input yields the zero value.
func ComputeOverallStatistics(shots []model.Shot) OverallStatistics {
	if len(shots) == 0 {
		return OverallStatistics{}
	}
	s := summarize(shots)
	beans := map[string]struct{}{}
	for _, shot := range shots {
		beans[shot.BeanID] = struct{}{}
	}
	return OverallStatistics{
		TotalShots:                  s.total,
		UniqueBeans:                 len(beans),
		AvgBrewRatio:                s.avgRatio,
		AvgExtractionTime:           s.avgTime,
		AvgWeightIn:                 s.avgIn,
		AvgWeightOut:                s.avgOut,
		OptimalExtractionPercentage: s.optimalPct,
		TypicalRatioPercentage:      s.typicalPct,
		MostUsedGrinderSetting:      mostUsedGrinderSetting(shots),
		RecentAvgBrewRatio:          recentAvgBrewRatio(shots, recentShotCount),
		ConsistencyScore:            ConsistencyScore(shots),
		FirstShotDate:               s.first,
		LastShotDate:                s.last,
	}
}

// BestShot returns a copy of the highest scoring shot, or nil for no shots.
// A shot scores 2 for an optimal time and 2 for a typical ratio; the first maximum wins.
func BestShot(shots []model.Shot) *model.Shot {
	if len(shots) == 0 {
		return nil
	}
	bestIdx, bestScore := 0, -1
	for i, shot := range shots {
		if score := shotScore(shot); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	best := shots[bestIdx]
	return &best
}

func shotScore(shot model.Shot) int {
	score := 0
	if shot.IsOptimalExtractionTime() {
		score += 2
	}
	if shot.IsTypicalBrewRatio() {
		score += 2
	}
	return score
}

func mostUsedGrinderSetting(shots []model.Shot) string {
	groups := groupBySetting(shots)
	best := ""
	bestCount := 0
	for _, g := range groups {
		if len(g.shots) > bestCount {
			best, bestCount = g.setting, len(g.shots)
		}
	}
	return best
}

func recentAvgBrewRatio(shots []model.Shot, n int) float64 {
	recent := sortedByTime(shots)
	if len(recent) > n {
		recent = recent[len(recent)-n:]
	}
	ratios := make([]float64, len(recent))
	for i, shot := range recent {
		ratios[i] = shot.BrewRatio()
	}
	return Mean(ratios)
}

// sortedByTime returns a copy of shots in ascending timestamp order, stable on ties.
func sortedByTime(shots []model.Shot) []model.Shot {
	out := make([]model.Shot, len(shots))
	copy(out, shots)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
