package main

import (
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/shotlog/internal/config"
	"github.com/verte-zerg/shotlog/internal/model"
	"github.com/verte-zerg/shotlog/internal/stats"
	"github.com/verte-zerg/shotlog/internal/statsui"
	"github.com/verte-zerg/shotlog/internal/store"
)

var (
	statsBean        string
	statsSince       string
	statsLast        int
	statsDays        int
	statsCurveWindow int
	statsPlain       bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show brewing statistics",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsBean, "bean", "", "bean id or name (default: all beans)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N shots")
	cmd.Flags().IntVar(&statsDays, "days", defaultTrendDays, "trend window in days")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "days", &statsDays, fileCfg.Stats.Days)
	applyIntConfig(cmd, "last", &statsLast, fileCfg.Stats.Last)
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Stats.CurveWindow)

	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsDays <= 0 {
		return fmt.Errorf("--days must be > 0")
	}
	if statsCurveWindow <= 0 {
		return fmt.Errorf("--curve-window must be > 0")
	}
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation(dateLayout, statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	return withStore(func(st *store.Store) error {
		cfg := model.StatsConfig{
			Since:       sinceTime,
			Last:        statsLast,
			Days:        statsDays,
			CurveWindow: statsCurveWindow,
		}
		if statsBean != "" {
			bean, err := resolveBean(commandContext(cmd), st, statsBean)
			if err != nil {
				return err
			}
			cfg.BeanID = bean.ID
		}

		if statsPlain {
			report, err := stats.BuildReport(commandContext(cmd), st, cfg)
			if err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}
			return writeReport(cmd.OutOrStdout(), report)
		}

		program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	})
}

func writeReport(w io.Writer, r stats.Report) error {
	if err := stats.RenderSummary(w, r); err != nil {
		return err
	}
	if len(r.Shots) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := stats.RenderGrinderTable(w, r.Grinder); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := stats.RenderDistributions(w, r.BrewRatio, r.Extraction); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return stats.RenderCurves(w, r.Shots, r.Config.CurveWindow, stats.PlotOptions{})
}
