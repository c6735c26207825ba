// Package model defines shared data structures.
package model

import (
	"errors"
	"time"
)

const (
	// OptimalTimeMin is the shortest extraction time considered optimal, in seconds.
	OptimalTimeMin = 25
	// OptimalTimeMax is the longest extraction time considered optimal, in seconds.
	OptimalTimeMax = 30
	// TypicalRatioMin is the lowest brew ratio considered typical for espresso.
	TypicalRatioMin = 1.5
	// TypicalRatioMax is the highest brew ratio considered typical for espresso.
	TypicalRatioMax = 3.0
)

// Shot captures one recorded espresso extraction.
type Shot struct {
	ID                    string
	BeanID                string
	CoffeeWeightIn        float64
	CoffeeWeightOut       float64
	ExtractionTimeSeconds int
	GrinderSetting        string
	Notes                 string
	Timestamp             time.Time
}

// BrewRatio returns yield divided by dose, or 0 when the dose is not positive.
func (s Shot) BrewRatio() float64 {
	if s.CoffeeWeightIn <= 0 {
		return 0
	}
	return s.CoffeeWeightOut / s.CoffeeWeightIn
}

// IsOptimalExtractionTime reports whether the shot ran within the optimal window.
func (s Shot) IsOptimalExtractionTime() bool {
	return s.ExtractionTimeSeconds >= OptimalTimeMin && s.ExtractionTimeSeconds <= OptimalTimeMax
}

// IsTypicalBrewRatio reports whether the brew ratio is within the typical espresso range.
func (s Shot) IsTypicalBrewRatio() bool {
	r := s.BrewRatio()
	return r >= TypicalRatioMin && r <= TypicalRatioMax
}

// Validate checks the recorded fields before a shot is stored.
func (s Shot) Validate() error {
	switch {
	case s.BeanID == "":
		return errors.New("bean is required")
	case s.CoffeeWeightIn <= 0:
		return errors.New("dose must be > 0")
	case s.CoffeeWeightOut < 0:
		return errors.New("yield must be >= 0")
	case s.ExtractionTimeSeconds < 0:
		return errors.New("extraction time must be >= 0")
	}
	return nil
}

// Bean describes a coffee that shots are pulled with.
type Bean struct {
	ID                 string
	Name               string
	RoastDate          *time.Time
	CreatedAt          time.Time
	IsActive           bool
	LastGrinderSetting *string
}

// ShotFilter narrows the shots returned by the store.
type ShotFilter struct {
	BeanID string
	Since  *time.Time
	Last   int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	BeanID      string
	Since       *time.Time
	Last        int
	Days        int
	CurveWindow int
}

// BrewConfig tunes the grind recommendation engine.
type BrewConfig struct {
	GrindStep      float64
	TargetSeconds  int
	SecondsPerStep int
	MaxSteps       int
	DefaultDose    float64
}

// DefaultBrewConfig returns the built-in grind recommendation settings.
func DefaultBrewConfig() BrewConfig {
	return BrewConfig{
		GrindStep:      0.5,
		TargetSeconds:  27,
		SecondsPerStep: 3,
		MaxSteps:       5,
		DefaultDose:    18,
	}
}
