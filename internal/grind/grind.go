// Package grind turns a shot's timing and taste into a grinder adjustment.
package grind

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/verte-zerg/shotlog/internal/model"
)

// Direction is the way the grinder should move.
type Direction int

// Directions. Finer lowers the grinder number.
const (
	Finer Direction = iota + 1
	Coarser
)

func (d Direction) String() string {
	switch d {
	case Finer:
		return "finer"
	case Coarser:
		return "coarser"
	default:
		return ""
	}
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	if d == Finer {
		return Coarser
	}
	return Finer
}

// Confidence expresses how strongly the signals support a recommendation.
type Confidence int

// Confidence levels.
const (
	Low Confidence = iota + 1
	Medium
	High
)

func (c Confidence) String() string {
	switch c {
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

// Recommendation is a single grinder adjustment suggestion.
type Recommendation struct {
	CurrentGrindSetting     string
	SuggestedGrindSetting   string
	Direction               Direction
	Steps                   int
	Explanation             string
	ExtractionTimeDeviation int
	TasteIssue              model.TastePrimary
	Confidence              Confidence
}

// Input carries the signals for one shot.
type Input struct {
	ExtractionTimeSeconds int
	GrinderSetting        string
	Taste                 model.TastePrimary
	Strength              model.TasteSecondary
}

// Engine computes grind recommendations. It holds only configuration.
type Engine struct {
	cfg  model.BrewConfig
	step decimal.Decimal
}

// New returns an Engine. Non-positive settings fall back to the defaults.
func New(cfg model.BrewConfig) *Engine {
	def := model.DefaultBrewConfig()
	if cfg.GrindStep <= 0 {
		cfg.GrindStep = def.GrindStep
	}
	if cfg.TargetSeconds <= 0 {
		cfg.TargetSeconds = def.TargetSeconds
	}
	if cfg.SecondsPerStep <= 0 {
		cfg.SecondsPerStep = def.SecondsPerStep
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = def.MaxSteps
	}
	return &Engine{cfg: cfg, step: decimal.NewFromFloat(cfg.GrindStep)}
}

// ForShot is Recommend for a recorded shot.
func (e *Engine) ForShot(shot model.Shot, taste model.TastePrimary, strength model.TasteSecondary) (Recommendation, bool) {
	return e.Recommend(Input{
		ExtractionTimeSeconds: shot.ExtractionTimeSeconds,
		GrinderSetting:        shot.GrinderSetting,
		Taste:                 taste,
		Strength:              strength,
	})
}

// Recommend returns a suggestion, or false when none applies: the shot is on target,
// it tasted perfect, or the grinder setting is not a number.
func (e *Engine) Recommend(in Input) (Recommendation, bool) {
	if in.Taste == model.TastePerfect {
		return Recommendation{}, false
	}
	deviation := in.ExtractionTimeSeconds - e.cfg.TargetSeconds
	timing := e.timingDirection(in.ExtractionTimeSeconds)
	taste := tasteDirection(in.Taste)

	var (
		dir        Direction
		steps      int
		confidence Confidence
		conflict   bool
	)
	switch {
	case taste == 0 && timing == 0:
		return Recommendation{}, false
	case taste == 0:
		dir, steps, confidence = timing, e.stepsFor(deviation), Medium
	case timing == 0:
		dir, steps, confidence = taste, 1, Medium
	case taste == timing:
		dir, steps, confidence = taste, e.stepsFor(deviation), High
	default:
		dir, steps, confidence, conflict = taste, 1, Low, true
	}
	steps = e.applyStrength(steps, in.Taste, in.Strength)

	suggested, err := AdjustSetting(in.GrinderSetting, dir, steps, e.step)
	if err != nil {
		return Recommendation{}, false
	}
	rec := Recommendation{
		CurrentGrindSetting:     in.GrinderSetting,
		SuggestedGrindSetting:   suggested,
		Direction:               dir,
		Steps:                   steps,
		ExtractionTimeDeviation: deviation,
		TasteIssue:              in.Taste,
		Confidence:              confidence,
	}
	rec.Explanation = explain(rec, timing, conflict)
	return rec, true
}

func (e *Engine) stepsFor(deviation int) int {
	if deviation < 0 {
		deviation = -deviation
	}
	steps := deviation / e.cfg.SecondsPerStep
	if steps < 1 {
		steps = 1
	}
	if steps > e.cfg.MaxSteps {
		steps = e.cfg.MaxSteps
	}
	return steps
}

func (e *Engine) applyStrength(steps int, taste model.TastePrimary, strength model.TasteSecondary) int {
	if taste == model.TasteNone {
		return steps
	}
	switch strength {
	case model.StrengthStrong:
		steps++
	case model.StrengthWeak:
		steps--
	}
	if steps < 1 {
		steps = 1
	}
	if steps > e.cfg.MaxSteps {
		steps = e.cfg.MaxSteps
	}
	return steps
}

// timingDirection is zero inside the neutral band around the target. The band
// keeps the optimal window's offsets from the default target, so the default
// target yields exactly the optimal window.
func (e *Engine) timingDirection(sec int) Direction {
	lo, hi := e.neutralBand()
	switch {
	case sec < lo:
		return Finer
	case sec > hi:
		return Coarser
	default:
		return 0
	}
}

func (e *Engine) neutralBand() (int, int) {
	def := model.DefaultBrewConfig().TargetSeconds
	return e.cfg.TargetSeconds - (def - model.OptimalTimeMin), e.cfg.TargetSeconds + (model.OptimalTimeMax - def)
}

func tasteDirection(t model.TastePrimary) Direction {
	switch t {
	case model.TasteSour:
		return Finer
	case model.TasteBitter:
		return Coarser
	default:
		return 0
	}
}

// AdjustSetting moves a numeric grinder setting by steps*stepSize. Finer subtracts
// and coarser adds; negative scales are valid. The result keeps the larger of the
// setting's and the step's decimal places.
func AdjustSetting(setting string, dir Direction, steps int, stepSize decimal.Decimal) (string, error) {
	setting = strings.TrimSpace(setting)
	current, err := decimal.NewFromString(setting)
	if err != nil {
		return "", fmt.Errorf("grinder setting %q is not a number: %w", setting, err)
	}
	if dir != Finer && dir != Coarser {
		return "", fmt.Errorf("invalid direction %d", dir)
	}
	delta := stepSize.Mul(decimal.NewFromInt(int64(steps)))
	next := current.Add(delta)
	if dir == Finer {
		next = current.Sub(delta)
	}
	places := decimalPlaces(setting)
	if sp := -stepSize.Exponent(); sp > places {
		places = sp
	}
	return next.StringFixed(places), nil
}

func decimalPlaces(s string) int32 {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return int32(len(s) - i - 1)
	}
	return 0
}

func explain(rec Recommendation, timing Direction, conflict bool) string {
	var b strings.Builder
	switch {
	case conflict:
		fmt.Fprintf(&b, "Taste and timing conflict: tasted %s but ran %s. Trusting taste, try grinding %s",
			rec.TasteIssue, describeDeviation(rec.ExtractionTimeDeviation), rec.Direction)
	case rec.TasteIssue != model.TasteNone && timing != 0:
		fmt.Fprintf(&b, "Tasted %s and ran %s: try grinding %s",
			rec.TasteIssue, describeDeviation(rec.ExtractionTimeDeviation), rec.Direction)
	case rec.TasteIssue != model.TasteNone:
		fmt.Fprintf(&b, "Tasted %s and ran %s, within range: try grinding %s",
			rec.TasteIssue, describeDeviation(rec.ExtractionTimeDeviation), rec.Direction)
	default:
		fmt.Fprintf(&b, "Ran %s: try grinding %s", describeDeviation(rec.ExtractionTimeDeviation), rec.Direction)
	}
	unit := "steps"
	if rec.Steps == 1 {
		unit = "step"
	}
	fmt.Fprintf(&b, " by %d %s (%s -> %s).", rec.Steps, unit, rec.CurrentGrindSetting, rec.SuggestedGrindSetting)
	if conflict {
		b.WriteString(" Watch the next shot's time.")
	}
	return b.String()
}

func describeDeviation(dev int) string {
	switch {
	case dev < 0:
		return fmt.Sprintf("%ds too fast", -dev)
	case dev > 0:
		return fmt.Sprintf("%ds too slow", dev)
	default:
		return "on target"
	}
}
