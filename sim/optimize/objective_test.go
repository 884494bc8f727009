package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObjective(t *testing.T) {
	obj, err := ParseObjective("")
	require.NoError(t, err)
	assert.Equal(t, ObjectiveThroughputPerCost, obj)

	obj, err = ParseObjective("weighted")
	require.NoError(t, err)
	assert.Equal(t, ObjectiveWeighted, obj)

	_, err = ParseObjective("cheapest")
	assert.Error(t, err)
}

func TestScore(t *testing.T) {
	tests := []struct {
		obj  Objective
		want float64
	}{
		{ObjectiveMaxThroughput, 30},
		{ObjectiveThroughputPerCost, 30.0 / 1.5},
		{ObjectiveWeighted, 30 - 0.01*500},
	}
	for _, tt := range tests {
		t.Run(string(tt.obj), func(t *testing.T) {
			assert.InDelta(t, tt.want, score(tt.obj, 30, 500, DefaultCostScale, DefaultLambda), 1e-12)
		})
	}
}

func TestCapitalCost(t *testing.T) {
	base := referenceLine(t)

	t.Run("unchanged line is free", func(t *testing.T) {
		assert.Equal(t, 0.0, CapitalCost(base, base.Clone()))
	})

	t.Run("added machines and a speedup", func(t *testing.T) {
		// GIVEN two extra cutters and drilling sped up from 4.5 to 3.0
		cfg := base.Clone()
		cfg.Stations[0].Capacity = 3
		cfg.Stations[1].ProcMean = 3.0

		// THEN 2×150 + 2×(1/3)×180
		assert.InDelta(t, 300+120, CapitalCost(base, cfg), 1e-9)
	})

	t.Run("halving the mean costs the speedup price", func(t *testing.T) {
		cfg := base.Clone()
		cfg.Stations[3].ProcMean = base.Stations[3].ProcMean / 2
		assert.InDelta(t, base.Stations[3].SpeedupCost, CapitalCost(base, cfg), 1e-9)
	})

	t.Run("removals and slowdowns earn nothing", func(t *testing.T) {
		cfg := base.Clone()
		cfg.Stations[2].Capacity = 1
		cfg.Stations[0].ProcMean = 6.0
		assert.Equal(t, 0.0, CapitalCost(base, cfg))
	})
}
