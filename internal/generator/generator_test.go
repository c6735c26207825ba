package generator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShotsAreDeterministicPerSeed(t *testing.T) {
	opts := Options{BeanID: "b", Count: 10, Start: time.Unix(0, 0), StartSetting: 12}
	a := NewSeeded(42).Shots(opts)
	b := NewSeeded(42).Shots(opts)
	assert.Equal(t, a, b)
}

func TestShotsShape(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	shots := NewSeeded(7).Shots(Options{
		BeanID:       "bean",
		Count:        20,
		Start:        start,
		Interval:     time.Hour,
		StartSetting: 10,
	})
	require.Len(t, shots, 20)
	for i, s := range shots {
		require.NoError(t, s.Validate())
		assert.Equal(t, "bean", s.BeanID)
		assert.Equal(t, start.Add(time.Duration(i)*time.Hour), s.Timestamp)
		assert.InDelta(t, 18, s.CoffeeWeightIn, 0.31)
		assert.GreaterOrEqual(t, s.ExtractionTimeSeconds, 5)
	}
}

func TestShotsConvergeToOptimalWindow(t *testing.T) {
	shots := NewSeeded(3).Shots(Options{BeanID: "b", Count: 40, Start: time.Unix(0, 0), StartSetting: 10})
	optimal := 0
	for _, s := range shots[len(shots)-10:] {
		if abs(s.ExtractionTimeSeconds-27) <= 6 {
			optimal++
		}
	}
	assert.Equal(t, 10, optimal)
}

func TestShotsEmpty(t *testing.T) {
	assert.Nil(t, New().Shots(Options{Count: 0}))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
