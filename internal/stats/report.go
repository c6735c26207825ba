package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/verte-zerg/shotlog/internal/model"
	"github.com/verte-zerg/shotlog/internal/store"
)

// DefaultTrendDays is the trend window used when none is configured.
const DefaultTrendDays = 30

var now = time.Now

// Report contains precomputed data for stats rendering.
type Report struct {
	Config      model.StatsConfig
	Bean        *model.Bean
	Shots       []model.Shot
	Analytics   BeanAnalytics
	Overall     OverallStatistics
	Trends      ShotTrends
	Grinder     GrinderSettingAnalysis
	BrewRatio   BrewRatioAnalysis
	Extraction  ExtractionTimeAnalysis
	WindowShots []model.Shot
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	if cfg.Days <= 0 {
		cfg.Days = DefaultTrendDays
	}
	report := Report{Config: cfg}
	if cfg.BeanID != "" {
		bean, err := st.GetBean(ctx, cfg.BeanID)
		if err != nil {
			return Report{}, fmt.Errorf("load bean %s: %w", cfg.BeanID, err)
		}
		report.Bean = &bean
	}

	shots, err := st.ListShots(ctx, model.ShotFilter{
		BeanID: cfg.BeanID,
		Since:  cfg.Since,
		Last:   cfg.Last,
	})
	if err != nil {
		return Report{}, fmt.Errorf("list shots: %w", err)
	}
	report.Shots = shots
	report.Analytics = ComputeBeanAnalytics(shots)
	report.Overall = ComputeOverallStatistics(shots)
	report.Trends = ComputeShotTrends(shotsSince(shots, now().AddDate(0, 0, -cfg.Days)), cfg.Days)
	report.Grinder = ComputeGrinderSettingAnalysis(shots)
	report.BrewRatio = ComputeBrewRatioAnalysis(shots)
	report.Extraction = ComputeExtractionTimeAnalysis(shots)
	report.WindowShots = lastShots(shots, cfg.CurveWindow)
	return report, nil
}

func shotsSince(shots []model.Shot, cutoff time.Time) []model.Shot {
	var out []model.Shot
	for _, s := range shots {
		if !s.Timestamp.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

func lastShots(shots []model.Shot, window int) []model.Shot {
	if window <= 0 || len(shots) <= window {
		return shots
	}
	return shots[len(shots)-window:]
}
