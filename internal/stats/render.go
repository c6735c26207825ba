package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/shotlog/internal/model"
)

const histogramWidth = 30

// RenderSummary writes the headline numbers of the report.
func RenderSummary(w io.Writer, r Report) error {
	if len(r.Shots) == 0 {
		_, err := fmt.Fprintln(w, "No shots found.")
		return err
	}
	var b strings.Builder
	if r.Bean != nil {
		a := r.Analytics
		fmt.Fprintf(&b, "Bean: %s\n", r.Bean.Name)
		fmt.Fprintf(&b, "Shots: %d (%s to %s)\n", a.TotalShots, a.FirstShotDate.Local().Format("2006-01-02"), a.LastShotDate.Local().Format("2006-01-02"))
		fmt.Fprintf(&b, "Avg dose/yield: %.1fg -> %.1fg  ratio 1:%.2f  time %.1fs\n", a.AvgWeightIn, a.AvgWeightOut, a.AvgBrewRatio, a.AvgExtractionTime)
		fmt.Fprintf(&b, "Optimal time: %.1f%%  typical ratio: %.1f%%\n", a.OptimalExtractionPercentage, a.TypicalRatioPercentage)
		fmt.Fprintf(&b, "Consistency: %.0f/100  improvement: %+.1f pts\n", a.ConsistencyScore, a.ImprovementTrend)
		if a.BestShot != nil {
			fmt.Fprintf(&b, "Best shot: %s  %.1fg -> %.1fg in %ds at %s\n",
				a.BestShot.Timestamp.Local().Format("2006-01-02 15:04"), a.BestShot.CoffeeWeightIn,
				a.BestShot.CoffeeWeightOut, a.BestShot.ExtractionTimeSeconds, a.BestShot.GrinderSetting)
		}
	} else {
		o := r.Overall
		fmt.Fprintf(&b, "Shots: %d across %d beans\n", o.TotalShots, o.UniqueBeans)
		fmt.Fprintf(&b, "Avg dose/yield: %.1fg -> %.1fg  ratio 1:%.2f  time %.1fs\n", o.AvgWeightIn, o.AvgWeightOut, o.AvgBrewRatio, o.AvgExtractionTime)
		fmt.Fprintf(&b, "Optimal time: %.1f%%  typical ratio: %.1f%%\n", o.OptimalExtractionPercentage, o.TypicalRatioPercentage)
		fmt.Fprintf(&b, "Consistency: %.0f/100  recent ratio 1:%.2f  usual grind %s\n", o.ConsistencyScore, o.RecentAvgBrewRatio, o.MostUsedGrinderSetting)
	}
	t := r.Trends
	fmt.Fprintf(&b, "Last %d days: %d shots (%.1f/day)", t.DaysAnalyzed, t.TotalShots, t.ShotsPerDay)
	if t.TotalShots > 1 {
		state := "drifting"
		if t.IsImproving {
			state = "steady"
		}
		fmt.Fprintf(&b, "  ratio %+.2f  time %+.1fs  %s", t.BrewRatioTrend, t.ExtractionTimeTrend, state)
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderGrinderTable writes per-setting statistics, most used first.
func RenderGrinderTable(w io.Writer, g GrinderSettingAnalysis) error {
	if len(g.Settings) == 0 {
		_, err := fmt.Fprintln(w, "No grinder settings recorded.")
		return err
	}
	headers := []string{"Setting", "Shots", "Avg Ratio", "Avg Time", "Optimal"}
	rows := make([][]string, 0, len(g.Settings))
	for _, s := range g.Settings {
		setting := s.Setting
		if g.Best != nil && s.Setting == g.Best.Setting {
			setting += " *"
		}
		rows = append(rows, []string{
			setting,
			fmt.Sprintf("%d", s.ShotCount),
			fmt.Sprintf("1:%.2f", s.AvgBrewRatio),
			fmt.Sprintf("%.1fs", s.AvgExtractionTime),
			fmt.Sprintf("%.1f%%", s.OptimalExtractionPercentage),
		})
	}
	lines := formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true})
	lines = append(lines, fmt.Sprintf("%d settings; * best optimal-time rate", g.TotalSettings))
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// RenderDistributions writes brew ratio and extraction time histograms.
func RenderDistributions(w io.Writer, ratio BrewRatioAnalysis, extraction ExtractionTimeAnalysis) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Brew ratio  avg 1:%.2f  median 1:%.2f  range 1:%.2f-1:%.2f  typical %.1f%%\n",
		ratio.Avg, ratio.Median, ratio.Min, ratio.Max, ratio.TypicalPercent)
	writeHistogram(&b, ratio.Distribution, ratio.Count)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Extraction time  avg %.1fs  median %.1fs  range %d-%ds  optimal %.1f%%\n",
		extraction.Avg, extraction.Median, extraction.Min, extraction.Max, extraction.OptimalPercent)
	writeHistogram(&b, extraction.Distribution, extraction.Count)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeHistogram(b *strings.Builder, buckets []Bucket, total int) {
	rows := make([][]string, 0, len(buckets))
	for _, bucket := range buckets {
		bar := 0
		if total > 0 {
			bar = bucket.Count * histogramWidth / total
		}
		if bucket.Count > 0 && bar == 0 {
			bar = 1
		}
		rows = append(rows, []string{
			bucket.Label,
			fmt.Sprintf("%d", bucket.Count),
			fmt.Sprintf("%5.1f%%", percentage(bucket.Count, total)),
			strings.Repeat("█", bar),
		})
	}
	for _, line := range formatTable(nil, rows, map[int]bool{1: true}) {
		b.WriteString("  ")
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')
	}
}

// RenderCurves plots the moving averages of brew ratio and extraction time.
func RenderCurves(w io.Writer, shots []model.Shot, window int, opts PlotOptions) error {
	if len(shots) == 0 {
		return nil
	}
	ratios := make([]float64, len(shots))
	times := make([]float64, len(shots))
	for i, s := range shots {
		ratios[i] = s.BrewRatio()
		times[i] = float64(s.ExtractionTimeSeconds)
	}
	ratioOpts := opts
	ratioOpts.Band = &Band{Min: model.TypicalRatioMin, Max: model.TypicalRatioMax}
	title := fmt.Sprintf("Brew ratio (moving average, window %d)", max(window, 1))
	if err := PlotSeries(w, title, []Series{{Name: "ratio", Values: MovingAverage(ratios, window)}}, ratioOpts); err != nil {
		return err
	}
	timeOpts := opts
	timeOpts.Unit = "s"
	timeOpts.Band = &Band{Min: model.OptimalTimeMin, Max: model.OptimalTimeMax}
	title = fmt.Sprintf("Extraction time (moving average, window %d)", max(window, 1))
	return PlotSeries(w, title, []Series{{Name: "time", Values: MovingAverage(times, window)}}, timeOpts)
}
