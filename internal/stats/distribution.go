package stats

import (
	"sort"

	"github.com/verte-zerg/shotlog/internal/model"
)

// Bucket is one histogram bin.
type Bucket struct {
	Label string
	Count int
}

// GrinderSettingStats aggregates the shots pulled at one grinder setting.
type GrinderSettingStats struct {
	Setting                     string
	ShotCount                   int
	AvgBrewRatio                float64
	AvgExtractionTime           float64
	OptimalExtractionPercentage float64
}

// GrinderSettingAnalysis lists settings by usage and names the best performing one.
type GrinderSettingAnalysis struct {
	Settings      []GrinderSettingStats
	Best          *GrinderSettingStats
	TotalSettings int
}

// BrewRatioAnalysis describes the distribution of brew ratios.
type BrewRatioAnalysis struct {
	Count          int
	Avg            float64
	Min            float64
	Max            float64
	Median         float64
	TypicalPercent float64
	Distribution   []Bucket
}

// ExtractionTimeAnalysis describes the distribution of extraction times.
type ExtractionTimeAnalysis struct {
	Count          int
	Avg            float64
	Min            int
	Max            int
	Median         float64
	OptimalPercent float64
	Distribution   []Bucket
}

var (
	ratioBucketLabels = []string{"<1.5", "1.5-2.0", "2.0-2.5", "2.5-3.0", ">3.0"}
	timeBucketLabels  = []string{"<20s", "20-24s", "25-30s", "31-35s", ">35s"}
)

type settingGroup struct {
	setting string
	shots   []model.Shot
}

// groupBySetting groups shots by exact grinder setting in first-seen order.
func groupBySetting(shots []model.Shot) []settingGroup {
	index := map[string]int{}
	var groups []settingGroup
	for _, shot := range shots {
		i, ok := index[shot.GrinderSetting]
		if !ok {
			i = len(groups)
			index[shot.GrinderSetting] = i
			groups = append(groups, settingGroup{setting: shot.GrinderSetting})
		}
		groups[i].shots = append(groups[i].shots, shot)
	}
	return groups
}

// ComputeGrinderSettingAnalysis groups shots by grinder setting, most used first.
func ComputeGrinderSettingAnalysis(shots []model.Shot) GrinderSettingAnalysis {
	groups := groupBySetting(shots)
	if len(groups) == 0 {
		return GrinderSettingAnalysis{}
	}
	settings := make([]GrinderSettingStats, 0, len(groups))
	for _, g := range groups {
		s := summarize(g.shots)
		settings = append(settings, GrinderSettingStats{
			Setting:                     g.setting,
			ShotCount:                   s.total,
			AvgBrewRatio:                s.avgRatio,
			AvgExtractionTime:           s.avgTime,
			OptimalExtractionPercentage: s.optimalPct,
		})
	}
	sort.SliceStable(settings, func(i, j int) bool {
		return settings[i].ShotCount > settings[j].ShotCount
	})

	bestIdx := 0
	for i, s := range settings {
		if s.OptimalExtractionPercentage > settings[bestIdx].OptimalExtractionPercentage {
			bestIdx = i
		}
	}
	best := settings[bestIdx]
	return GrinderSettingAnalysis{
		Settings:      settings,
		Best:          &best,
		TotalSettings: len(settings),
	}
}

// ComputeBrewRatioAnalysis summarizes brew ratios. Buckets are half-open so every
// shot lands in exactly one; 3.0 stays in the last typical bucket.
func ComputeBrewRatioAnalysis(shots []model.Shot) BrewRatioAnalysis {
	if len(shots) == 0 {
		return BrewRatioAnalysis{Distribution: emptyBuckets(ratioBucketLabels)}
	}
	s := summarize(shots)
	lo, hi := minMax(s.ratios)
	buckets := emptyBuckets(ratioBucketLabels)
	for _, r := range s.ratios {
		buckets[ratioBucket(r)].Count++
	}
	return BrewRatioAnalysis{
		Count:          s.total,
		Avg:            s.avgRatio,
		Min:            lo,
		Max:            hi,
		Median:         Median(s.ratios),
		TypicalPercent: s.typicalPct,
		Distribution:   buckets,
	}
}

// ComputeExtractionTimeAnalysis summarizes extraction times in whole-second buckets.
func ComputeExtractionTimeAnalysis(shots []model.Shot) ExtractionTimeAnalysis {
	if len(shots) == 0 {
		return ExtractionTimeAnalysis{Distribution: emptyBuckets(timeBucketLabels)}
	}
	s := summarize(shots)
	lo, hi := minMax(s.extractTimes)
	buckets := emptyBuckets(timeBucketLabels)
	for _, shot := range shots {
		buckets[timeBucket(shot.ExtractionTimeSeconds)].Count++
	}
	return ExtractionTimeAnalysis{
		Count:          s.total,
		Avg:            s.avgTime,
		Min:            int(lo),
		Max:            int(hi),
		Median:         Median(s.extractTimes),
		OptimalPercent: s.optimalPct,
		Distribution:   buckets,
	}
}

func ratioBucket(r float64) int {
	switch {
	case r < 1.5:
		return 0
	case r < 2.0:
		return 1
	case r < 2.5:
		return 2
	case r <= 3.0:
		return 3
	default:
		return 4
	}
}

func timeBucket(sec int) int {
	switch {
	case sec < 20:
		return 0
	case sec < model.OptimalTimeMin:
		return 1
	case sec <= model.OptimalTimeMax:
		return 2
	case sec <= 35:
		return 3
	default:
		return 4
	}
}

func emptyBuckets(labels []string) []Bucket {
	out := make([]Bucket, len(labels))
	for i, l := range labels {
		out[i] = Bucket{Label: l}
	}
	return out
}
