// Package advice lists improvement suggestions for shots.
package advice

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/shotlog/internal/model"
	"github.com/verte-zerg/shotlog/internal/stats"
)

// Type is the improvement category of a suggestion.
type Type int

// Suggestion categories.
const (
	GrindFiner Type = iota + 1
	GrindCoarser
	IncreaseYield
	DecreaseYield
	ImproveConsistency
)

func (t Type) String() string {
	switch t {
	case GrindFiner:
		return "GRIND_FINER"
	case GrindCoarser:
		return "GRIND_COARSER"
	case IncreaseYield:
		return "INCREASE_YIELD"
	case DecreaseYield:
		return "DECREASE_YIELD"
	case ImproveConsistency:
		return "IMPROVE_CONSISTENCY"
	default:
		return ""
	}
}

// Priority orders suggestions.
type Priority int

// Priorities.
const (
	Low Priority = iota + 1
	Medium
	High
)

func (p Priority) String() string {
	switch p {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return ""
	}
}

// Range is a closed interval.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies in the interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// ShotRecommendation is one suggestion ready for display.
type ShotRecommendation struct {
	Type         Type
	Priority     Priority
	CurrentValue float64
	TargetRange  Range
	Context      map[string]string
}

const consistencyThreshold = 75.0

var (
	timeRange        = Range{Min: model.OptimalTimeMin, Max: model.OptimalTimeMax}
	ratioRange       = Range{Min: model.TypicalRatioMin, Max: model.TypicalRatioMax}
	consistencyRange = Range{Min: consistencyThreshold, Max: 100}
)

var templates = map[Type]string{
	GrindFiner:         "Shot ran {time}s, faster than {min}-{max}s. Grind finer than {grind}.",
	GrindCoarser:       "Shot ran {time}s, slower than {min}-{max}s. Grind coarser than {grind}.",
	IncreaseYield:      "Ratio 1:{ratio} is below 1:{min}. Pull a longer shot.",
	DecreaseYield:      "Ratio 1:{ratio} is above 1:{max}. Stop the shot earlier.",
	ImproveConsistency: "Consistency is {score}/100 over {shots} shots. Keep dose and grind steady.",
}

// Message renders the display copy for the suggestion.
func (r ShotRecommendation) Message() string {
	tmpl, ok := templates[r.Type]
	if !ok {
		return ""
	}
	pairs := make([]string, 0, len(r.Context)*2)
	for k, v := range r.Context {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// ForShot suggests fixes for a single shot's timing and ratio.
func ForShot(shot model.Shot) []ShotRecommendation {
	var out []ShotRecommendation
	t := float64(shot.ExtractionTimeSeconds)
	if !timeRange.Contains(t) {
		typ := GrindFiner
		if t > timeRange.Max {
			typ = GrindCoarser
		}
		out = append(out, ShotRecommendation{
			Type:         typ,
			Priority:     priorityFor(distance(t, timeRange), 2, 5),
			CurrentValue: t,
			TargetRange:  timeRange,
			Context: map[string]string{
				"time":  fmt.Sprintf("%d", shot.ExtractionTimeSeconds),
				"min":   fmt.Sprintf("%.0f", timeRange.Min),
				"max":   fmt.Sprintf("%.0f", timeRange.Max),
				"grind": shot.GrinderSetting,
			},
		})
	}
	ratio := shot.BrewRatio()
	if shot.CoffeeWeightIn > 0 && !ratioRange.Contains(ratio) {
		typ := IncreaseYield
		if ratio > ratioRange.Max {
			typ = DecreaseYield
		}
		out = append(out, ShotRecommendation{
			Type:         typ,
			Priority:     priorityFor(distance(ratio, ratioRange), 0.2, 0.5),
			CurrentValue: ratio,
			TargetRange:  ratioRange,
			Context: map[string]string{
				"ratio": fmt.Sprintf("%.1f", ratio),
				"min":   fmt.Sprintf("%.1f", ratioRange.Min),
				"max":   fmt.Sprintf("%.1f", ratioRange.Max),
			},
		})
	}
	sortByPriority(out)
	return out
}

// ForHistory suggests fixes for the newest shot and, with at least three shots,
// for inconsistency across the history.
func ForHistory(shots []model.Shot) []ShotRecommendation {
	if len(shots) == 0 {
		return nil
	}
	latest := shots[0]
	for _, s := range shots[1:] {
		if !s.Timestamp.Before(latest.Timestamp) {
			latest = s
		}
	}
	out := ForShot(latest)
	if len(shots) >= 3 {
		score := stats.ConsistencyScore(shots)
		if score < consistencyThreshold {
			priority := Medium
			if score < 50 {
				priority = High
			}
			out = append(out, ShotRecommendation{
				Type:         ImproveConsistency,
				Priority:     priority,
				CurrentValue: score,
				TargetRange:  consistencyRange,
				Context: map[string]string{
					"score": fmt.Sprintf("%.0f", score),
					"shots": fmt.Sprintf("%d", len(shots)),
				},
			})
		}
	}
	sortByPriority(out)
	return out
}

func distance(v float64, r Range) float64 {
	switch {
	case v < r.Min:
		return r.Min - v
	case v > r.Max:
		return v - r.Max
	default:
		return 0
	}
}

func priorityFor(d, medium, high float64) Priority {
	switch {
	case d > high:
		return High
	case d > medium:
		return Medium
	default:
		return Low
	}
}

func sortByPriority(recs []ShotRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority > recs[j].Priority
	})
}
