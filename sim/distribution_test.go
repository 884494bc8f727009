package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDistribution_Aliases(t *testing.T) {
	tests := []struct {
		in   string
		want Distribution
	}{
		{"", DistExponential},
		{"exp", DistExponential},
		{"Exponential", DistExponential},
		{"gaussian", DistNormal},
		{" normal ", DistNormal},
		{"constant", DistDeterministic},
		{"det", DistDeterministic},
		{"gamma", DistGamma},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDistribution(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDistribution("weibull")
	assert.Error(t, err)
}

func TestNewSampler_SampleMeansConverge(t *testing.T) {
	tests := []struct {
		name   string
		dist   Distribution
		spread float64
	}{
		{"exponential", DistExponential, 0},
		{"normal", DistNormal, 0.5},
		{"deterministic", DistDeterministic, 0},
		{"gamma", DistGamma, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN a sampler with mean 4
			s, err := NewSampler(tt.dist, 4, tt.spread)
			require.NoError(t, err)
			assert.InDelta(t, 4, s.Mean(), 1e-9)

			// WHEN drawing many samples
			rng := rand.New(rand.NewSource(1))
			const n = 50000
			sum := 0.0
			for i := 0; i < n; i++ {
				v := s.Sample(rng)
				require.GreaterOrEqual(t, v, 0.0)
				sum += v
			}

			// THEN the sample mean is close to 4
			assert.InDelta(t, 4, sum/n, 0.15)
		})
	}
}

func TestNewSampler_InvalidParameters(t *testing.T) {
	_, err := NewSampler(DistExponential, 0, 0)
	assert.Error(t, err)
	_, err = NewSampler(DistNormal, 1, -1)
	assert.Error(t, err)
	_, err = NewSampler(DistGamma, 1, 0)
	assert.Error(t, err)
	_, err = NewSampler("weibull", 1, 0)
	assert.Error(t, err)
}
