package advice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/shotlog/internal/model"
)

func shot(in, out float64, sec int, at time.Time) model.Shot {
	return model.Shot{
		BeanID:                "bean",
		CoffeeWeightIn:        in,
		CoffeeWeightOut:       out,
		ExtractionTimeSeconds: sec,
		GrinderSetting:        "5",
		Timestamp:             at,
	}
}

func TestForShotIdealShotHasNoAdvice(t *testing.T) {
	assert.Empty(t, ForShot(shot(18, 36, 27, time.Unix(0, 0))))
}

func TestForShotFastAndLongRatio(t *testing.T) {
	recs := ForShot(shot(18, 60, 18, time.Unix(0, 0)))
	require.Len(t, recs, 2)

	assert.Equal(t, GrindFiner, recs[0].Type)
	assert.Equal(t, High, recs[0].Priority)
	assert.Equal(t, 18.0, recs[0].CurrentValue)
	assert.Equal(t, Range{Min: 25, Max: 30}, recs[0].TargetRange)
	assert.Equal(t, "Shot ran 18s, faster than 25-30s. Grind finer than 5.", recs[0].Message())

	assert.Equal(t, DecreaseYield, recs[1].Type)
	assert.Equal(t, Medium, recs[1].Priority)
	assert.Equal(t, "3.3", recs[1].Context["ratio"])
}

func TestForShotPriorityByDistance(t *testing.T) {
	recs := ForShot(shot(18, 36, 33, time.Unix(0, 0)))
	require.Len(t, recs, 1)
	assert.Equal(t, GrindCoarser, recs[0].Type)
	assert.Equal(t, Medium, recs[0].Priority)

	recs = ForShot(shot(18, 14, 27, time.Unix(0, 0)))
	require.Len(t, recs, 1)
	assert.Equal(t, IncreaseYield, recs[0].Type)
	assert.Equal(t, High, recs[0].Priority)
}

func TestForHistoryAddsConsistency(t *testing.T) {
	base := time.Unix(0, 0)
	shots := []model.Shot{
		shot(18, 18, 15, base),
		shot(18, 72, 45, base.Add(time.Minute)),
		shot(18, 36, 27, base.Add(2*time.Minute)),
	}
	recs := ForHistory(shots)
	require.Len(t, recs, 1)
	assert.Equal(t, ImproveConsistency, recs[0].Type)
	assert.Equal(t, High, recs[0].Priority)
	assert.Equal(t, "3", recs[0].Context["shots"])
}

func TestForHistoryEmpty(t *testing.T) {
	assert.Nil(t, ForHistory(nil))
}

func TestTypeStrings(t *testing.T) {
	assert.Equal(t, "GRIND_FINER", GrindFiner.String())
	assert.Equal(t, "high", High.String())
}
