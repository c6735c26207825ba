// Package generator builds sample shot histories.
package generator

import (
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/verte-zerg/shotlog/internal/model"
)

const secondsPerGrindUnit = 6.0

// Generator produces randomized shots that dial in toward a hidden ideal setting.
type Generator struct {
	rnd *rand.Rand
}

// Options describes the history to generate.
type Options struct {
	BeanID       string
	Count        int
	Start        time.Time
	Interval     time.Duration
	Dose         float64
	StartSetting float64
	GrindStep    float64
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Shots generates opts.Count shots in chronological order. After each shot that runs
// outside the optimal window the setting moves one step toward it, the way a
// barista follows the grind recommendation.
func (g *Generator) Shots(opts Options) []model.Shot {
	if opts.Count <= 0 {
		return nil
	}
	if opts.Interval <= 0 {
		opts.Interval = 24 * time.Hour
	}
	if opts.GrindStep <= 0 {
		opts.GrindStep = model.DefaultBrewConfig().GrindStep
	}
	if opts.Dose <= 0 {
		opts.Dose = model.DefaultBrewConfig().DefaultDose
	}
	ideal := opts.StartSetting + (g.rnd.Float64()*2-1)*4*opts.GrindStep
	setting := opts.StartSetting

	shots := make([]model.Shot, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		dose := jitter(g.rnd, opts.Dose, 0.3)
		seconds := 27 - (setting-ideal)*secondsPerGrindUnit
		seconds = math.Max(5, jitter(g.rnd, seconds, 2))
		ratio := jitter(g.rnd, 2.0, 0.25)
		shot := model.Shot{
			BeanID:                opts.BeanID,
			CoffeeWeightIn:        round1(dose),
			CoffeeWeightOut:       round1(dose * ratio),
			ExtractionTimeSeconds: int(math.Round(seconds)),
			GrinderSetting:        strconv.FormatFloat(setting, 'f', -1, 64),
			Timestamp:             opts.Start.Add(time.Duration(i) * opts.Interval),
		}
		shots = append(shots, shot)

		switch {
		case shot.ExtractionTimeSeconds < model.OptimalTimeMin:
			setting = math.Max(0, setting-opts.GrindStep)
		case shot.ExtractionTimeSeconds > model.OptimalTimeMax:
			setting += opts.GrindStep
		}
	}
	return shots
}

func jitter(rnd *rand.Rand, v, spread float64) float64 {
	return v + (rnd.Float64()*2-1)*spread
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
