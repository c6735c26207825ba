// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/shotlog/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Brew  BrewConfig  `toml:"brew"`
	Stats StatsConfig `toml:"stats"`
}

// BrewConfig maps grind recommendation settings.
type BrewConfig struct {
	GrindStep      *float64 `toml:"grind-step"`
	TargetTime     *int     `toml:"target-time"`
	SecondsPerStep *int     `toml:"seconds-per-step"`
	MaxSteps       *int     `toml:"max-steps"`
	Dose           *float64 `toml:"dose"`
}

// StatsConfig maps stats view settings.
type StatsConfig struct {
	Days        *int `toml:"days"`
	Last        *int `toml:"last"`
	CurveWindow *int `toml:"curve-window"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template renders a commented config file listing the given defaults.
func Template(brew model.BrewConfig, days, curveWindow int) string {
	return fmt.Sprintf(`# shotlog configuration
# Uncomment a value to enable it. CLI flags override config values.

[brew]
# grind-step = %.2f        # Grinder units per recommendation step
# target-time = %d         # Target extraction time in seconds
# seconds-per-step = %d     # Seconds of deviation per grind step
# max-steps = %d            # Largest adjustment suggested at once
# dose = %.1f              # Default dose in grams for the entry form

[stats]
# days = %d                # Trend window in days
# last = 0                 # Limit to the last N shots (0 = all)
# curve-window = %d        # Moving average window for curves
`,
		brew.GrindStep,
		brew.TargetSeconds,
		brew.SecondsPerStep,
		brew.MaxSteps,
		brew.DefaultDose,
		days,
		curveWindow,
	)
}
