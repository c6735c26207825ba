package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/shotlog/internal/model"
	"github.com/verte-zerg/shotlog/internal/store"
)

func TestBuildReport(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "shotlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	bean, err := st.CreateBean(ctx, "Kenya AA", nil)
	require.NoError(t, err)
	other, err := st.CreateBean(ctx, "Brazil", nil)
	require.NoError(t, err)

	fixedNow := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	prevNow := now
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() { now = prevNow })

	// Two old shots fall outside the 7 day trend window.
	ages := []time.Duration{20 * 24 * time.Hour, 10 * 24 * time.Hour, 3 * 24 * time.Hour, 2 * 24 * time.Hour, 24 * time.Hour}
	for i, age := range ages {
		_, err := st.InsertShot(ctx, model.Shot{
			BeanID:                bean.ID,
			CoffeeWeightIn:        18,
			CoffeeWeightOut:       36,
			ExtractionTimeSeconds: 24 + i,
			GrinderSetting:        "5",
			Timestamp:             fixedNow.Add(-age),
		})
		require.NoError(t, err)
	}
	_, err = st.InsertShot(ctx, model.Shot{
		BeanID:                other.ID,
		CoffeeWeightIn:        18,
		CoffeeWeightOut:       40,
		ExtractionTimeSeconds: 30,
		GrinderSetting:        "7",
		Timestamp:             fixedNow.Add(-time.Hour),
	})
	require.NoError(t, err)

	report, err := BuildReport(ctx, st, model.StatsConfig{BeanID: bean.ID, Days: 7, CurveWindow: 2})
	require.NoError(t, err)
	require.NotNil(t, report.Bean)
	assert.Equal(t, "Kenya AA", report.Bean.Name)
	assert.Len(t, report.Shots, 5)
	assert.Equal(t, 5, report.Analytics.TotalShots)
	assert.Equal(t, 3, report.Trends.TotalShots)
	assert.Equal(t, 7, report.Trends.DaysAnalyzed)
	require.Len(t, report.WindowShots, 2)
	assert.Equal(t, 28, report.WindowShots[1].ExtractionTimeSeconds)
	assert.Equal(t, 1, report.Grinder.TotalSettings)

	all, err := BuildReport(ctx, st, model.StatsConfig{Last: 3})
	require.NoError(t, err)
	assert.Nil(t, all.Bean)
	assert.Equal(t, 3, all.Overall.TotalShots)
	assert.Equal(t, 2, all.Overall.UniqueBeans)
	assert.Equal(t, DefaultTrendDays, all.Config.Days)

	_, err = BuildReport(ctx, st, model.StatsConfig{BeanID: "missing"})
	assert.Error(t, err)
}

func TestRenderSummaryAndTables(t *testing.T) {
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	shots := []model.Shot{
		mkShot("a", 18, 36, 27, "5", 0),
		mkShot("a", 18, 40, 22, "4.5", time.Hour),
		mkShot("a", 18, 36, 28, "5", 2*time.Hour),
	}
	for i := range shots {
		shots[i].Timestamp = base.Add(time.Duration(i) * time.Hour)
	}
	report := Report{
		Bean:       &model.Bean{Name: "Kenya AA"},
		Shots:      shots,
		Analytics:  ComputeBeanAnalytics(shots),
		Trends:     ComputeShotTrends(shots, 30),
		Grinder:    ComputeGrinderSettingAnalysis(shots),
		BrewRatio:  ComputeBrewRatioAnalysis(shots),
		Extraction: ComputeExtractionTimeAnalysis(shots),
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, report))
	for _, want := range []string{"Bean: Kenya AA", "Shots: 3", "Optimal time: 66.7%", "Last 30 days: 3 shots"} {
		assert.Contains(t, buf.String(), want)
	}

	buf.Reset()
	require.NoError(t, RenderGrinderTable(&buf, report.Grinder))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4, "header, 2 rows and footer:\n%s", buf.String())
	assert.True(t, strings.HasPrefix(lines[1], "5 *"), "most used and best setting first, got %q", lines[1])

	buf.Reset()
	require.NoError(t, RenderDistributions(&buf, report.BrewRatio, report.Extraction))
	assert.Contains(t, buf.String(), "25-30s")
	assert.Contains(t, buf.String(), "2.0-2.5")

	buf.Reset()
	require.NoError(t, RenderCurves(&buf, shots, 2, PlotOptions{Width: 20, Height: 4}))
	assert.Contains(t, buf.String(), "Brew ratio (moving average, window 2)")
	assert.Contains(t, buf.String(), "target 25.0-30.0s")
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, Report{}))
	assert.Equal(t, "No shots found.", strings.TrimSpace(buf.String()))

	buf.Reset()
	require.NoError(t, RenderGrinderTable(&buf, GrinderSettingAnalysis{}))
	assert.Equal(t, "No grinder settings recorded.", strings.TrimSpace(buf.String()))
}
