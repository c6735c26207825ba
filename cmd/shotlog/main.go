// Package main provides the CLI entrypoint for shotlog.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/shotlog/internal/config"
	"github.com/verte-zerg/shotlog/internal/grind"
	"github.com/verte-zerg/shotlog/internal/logger"
	"github.com/verte-zerg/shotlog/internal/model"
	"github.com/verte-zerg/shotlog/internal/store"
	"github.com/verte-zerg/shotlog/internal/tui"
)

const (
	defaultCurveWindow = 10
	defaultTrendDays   = 30
)

var (
	dbPath  string
	verbose bool
	log     = zerolog.Nop()

	brewGrindStep      float64
	brewTargetTime     int
	brewSecondsPerStep int
	brewMaxSteps       int
	brewDose           float64

	entryBean string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shotlog",
		Short:         "Espresso shot log with grind recommendations",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			log = logger.SetVerbose(logger.New(cmd.Name()), verbose)
		},
		RunE: runEntryCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "path to the SQLite database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&entryBean, "bean", "", "bean id or name (default: most recent active bean)")
	addBrewFlags(rootCmd)

	rootCmd.AddCommand(newBeanCmd())
	rootCmd.AddCommand(newShotCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addBrewFlags(cmd *cobra.Command) {
	def := model.DefaultBrewConfig()
	cmd.Flags().Float64Var(&brewGrindStep, "grind-step", def.GrindStep, "grinder units per recommendation step")
	cmd.Flags().IntVar(&brewTargetTime, "target-time", def.TargetSeconds, "target extraction time in seconds")
	cmd.Flags().IntVar(&brewSecondsPerStep, "seconds-per-step", def.SecondsPerStep, "seconds of deviation per grind step")
	cmd.Flags().IntVar(&brewMaxSteps, "max-steps", def.MaxSteps, "largest adjustment suggested at once")
	cmd.Flags().Float64Var(&brewDose, "dose", def.DefaultDose, "dose in grams")
}

// loadBrewConfig merges the config file into the brew flags that were not set explicitly.
func loadBrewConfig(cmd *cobra.Command) (model.BrewConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.BrewConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "grind-step", &brewGrindStep, fileCfg.Brew.GrindStep)
	applyIntConfig(cmd, "target-time", &brewTargetTime, fileCfg.Brew.TargetTime)
	applyIntConfig(cmd, "seconds-per-step", &brewSecondsPerStep, fileCfg.Brew.SecondsPerStep)
	applyIntConfig(cmd, "max-steps", &brewMaxSteps, fileCfg.Brew.MaxSteps)
	applyFloatConfig(cmd, "dose", &brewDose, fileCfg.Brew.Dose)

	cfg := model.BrewConfig{
		GrindStep:      brewGrindStep,
		TargetSeconds:  brewTargetTime,
		SecondsPerStep: brewSecondsPerStep,
		MaxSteps:       brewMaxSteps,
		DefaultDose:    brewDose,
	}
	if err := validateBrewConfig(cfg); err != nil {
		return model.BrewConfig{}, err
	}
	return cfg, nil
}

func validateBrewConfig(cfg model.BrewConfig) error {
	if cfg.GrindStep <= 0 {
		return fmt.Errorf("--grind-step must be > 0")
	}
	if cfg.TargetSeconds <= 0 {
		return fmt.Errorf("--target-time must be > 0")
	}
	if cfg.SecondsPerStep <= 0 {
		return fmt.Errorf("--seconds-per-step must be > 0")
	}
	if cfg.MaxSteps < 1 {
		return fmt.Errorf("--max-steps must be >= 1")
	}
	if cfg.DefaultDose < 0 {
		return fmt.Errorf("--dose must be >= 0")
	}
	return nil
}

func runEntryCmd(cmd *cobra.Command, _ []string) error {
	brew, err := loadBrewConfig(cmd)
	if err != nil {
		return err
	}
	return withStore(func(st *store.Store) error {
		bean, err := resolveBean(commandContext(cmd), st, entryBean)
		if err != nil {
			return err
		}
		m := tui.NewModel(st, grind.New(brew), bean, brew.DefaultDose, log)
		program := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run TUI: %w", err)
		}
		return nil
	})
}

// withStore opens the database for the duration of fn.
func withStore(fn func(st *store.Store) error) error {
	st, err := store.OpenWithLogger(dbPath, log)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to close db")
		}
	}()
	return fn(st)
}

// resolveBean finds the named bean, or the most recently added active bean when
// no name is given.
func resolveBean(ctx context.Context, st *store.Store, idOrName string) (model.Bean, error) {
	if strings.TrimSpace(idOrName) != "" {
		bean, err := st.FindBean(ctx, strings.TrimSpace(idOrName))
		if errors.Is(err, store.ErrNotFound) {
			return model.Bean{}, fmt.Errorf("bean %q not found (see: shotlog bean list)", idOrName)
		}
		if err != nil {
			return model.Bean{}, fmt.Errorf("failed to load bean: %w", err)
		}
		return bean, nil
	}
	beans, err := st.ListBeans(ctx, false)
	if err != nil {
		return model.Bean{}, fmt.Errorf("failed to list beans: %w", err)
	}
	if len(beans) == 0 {
		return model.Bean{}, fmt.Errorf("no active beans; add one with: shotlog bean add <name>")
	}
	return beans[len(beans)-1], nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		tmpl := config.Template(model.DefaultBrewConfig(), defaultTrendDays, defaultCurveWindow)
		if err := os.WriteFile(path, []byte(tmpl), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		log.Debug().Str("path", path).Msg("wrote config template")
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}
