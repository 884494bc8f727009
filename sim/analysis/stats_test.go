package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDistribution_Empty_ZeroValue(t *testing.T) {
	assert.Equal(t, Distribution{}, NewDistribution(nil))
}

func TestNewDistribution_SingleValue_NoSpread(t *testing.T) {
	d := NewDistribution([]float64{7})
	assert.Equal(t, 1, d.Count)
	assert.Equal(t, 7.0, d.Mean)
	assert.Equal(t, 0.0, d.StdDev)
	assert.Equal(t, 7.0, d.P99)
}

func TestNewDistribution_KnownSample(t *testing.T) {
	// GIVEN an unsorted sample 1..5
	values := []float64{5, 1, 4, 2, 3}

	// WHEN summarized
	d := NewDistribution(values)

	// THEN moments and percentiles match hand computation
	assert.Equal(t, 5, d.Count)
	assert.InDelta(t, 3, d.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), d.StdDev, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5)/3, d.CV, 1e-12)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 5.0, d.Max)
	assert.InDelta(t, 3, d.P50, 1e-12)
	assert.InDelta(t, 4.6, d.P90, 1e-12)
	// input is untouched
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, values)
}

func TestPercentile_Interpolates(t *testing.T) {
	sorted := []float64{10, 20}
	assert.Equal(t, 10.0, Percentile(sorted, 0))
	assert.Equal(t, 15.0, Percentile(sorted, 50))
	assert.Equal(t, 20.0, Percentile(sorted, 100))
	assert.Equal(t, 0.0, Percentile(nil, 50))
}
