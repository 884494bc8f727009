package validate

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/line-sim/line-sim/sim"
	"github.com/line-sim/line-sim/sim/internal/testutil"
	"github.com/line-sim/line-sim/sim/line"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func TestValidate_EmptyRealSample_ReturnsSentinel(t *testing.T) {
	// GIVEN a simulated sample and an empty real one
	simulated := Sample{ThroughputPerHour: 20, LeadTimes: []float64{10, 12}}

	// WHEN validated
	res := Validate(simulated, Sample{})

	// THEN the result is flagged, never a plausible score
	assert.Equal(t, StatusInsufficientData, res.Status)
	assert.Equal(t, ReasonEmptySample, res.Reason)
	assert.Equal(t, InsufficientScore, res.Score)
	assert.True(t, errors.Is(res.Err(), ErrInsufficientData))
	assert.Empty(t, res.Errors)
}

func TestValidate_DegenerateInputs(t *testing.T) {
	tests := []struct {
		name   string
		sim    Sample
		real   Sample
		reason string
	}{
		{"zero throughput", Sample{ThroughputPerHour: 5, LeadTimes: []float64{1}}, Sample{ThroughputPerHour: 0, LeadTimes: []float64{3}}, ReasonZeroMean},
		{"zero lead times", Sample{ThroughputPerHour: 5, LeadTimes: []float64{1}}, Sample{ThroughputPerHour: 5, LeadTimes: []float64{0, 0}}, ReasonZeroMean},
		{"empty simulation", Sample{}, Sample{ThroughputPerHour: 5, LeadTimes: []float64{3}}, ReasonEmptySimSample},
		{"NaN real lead time", Sample{ThroughputPerHour: 12, LeadTimes: []float64{10, 20, 30}}, Sample{ThroughputPerHour: 12, LeadTimes: []float64{10, math.NaN(), 30}}, ReasonInvalidSample},
		{"NaN real throughput", Sample{ThroughputPerHour: 12, LeadTimes: []float64{10, 20, 30}}, Sample{ThroughputPerHour: math.NaN(), LeadTimes: []float64{10, 20, 30}}, ReasonInvalidSample},
		{"infinite real throughput", Sample{ThroughputPerHour: 12, LeadTimes: []float64{10, 20, 30}}, Sample{ThroughputPerHour: math.Inf(1), LeadTimes: []float64{10, 20, 30}}, ReasonInvalidSample},
		{"infinite simulated lead time", Sample{ThroughputPerHour: 12, LeadTimes: []float64{10, math.Inf(-1)}}, Sample{ThroughputPerHour: 12, LeadTimes: []float64{10, 20, 30}}, ReasonInvalidSample},
		{"NaN simulated throughput", Sample{ThroughputPerHour: math.NaN(), LeadTimes: []float64{10}}, Sample{ThroughputPerHour: 12, LeadTimes: []float64{10, 20, 30}}, ReasonInvalidSample},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.sim, tt.real)
			assert.Equal(t, StatusInsufficientData, res.Status)
			assert.Equal(t, tt.reason, res.Reason)
			assert.Equal(t, -1.0, res.Score)
			assert.ErrorIs(t, res.Err(), ErrInsufficientData)
		})
	}
}

func TestValidate_RelativeErrorsAndScore(t *testing.T) {
	// GIVEN real throughput 20/h, lead times mean 10 median 10
	real := Sample{ThroughputPerHour: 20, LeadTimes: []float64{8, 10, 12}}
	// AND a simulation 10% high on throughput and 20% high on lead time
	simulated := Sample{ThroughputPerHour: 22, LeadTimes: []float64{14, 12, 10}}

	// WHEN validated
	res := Validate(simulated, real)

	// THEN each metric error is relative to the real value
	require.NoError(t, res.Err())
	require.Len(t, res.Errors, 3)
	assert.Equal(t, "throughput_per_hour", res.Errors[0].Metric)
	assert.InDelta(t, 0.1, res.Errors[0].RelError, 1e-12)
	assert.InDelta(t, 0.2, res.Errors[1].RelError, 1e-12)
	assert.InDelta(t, 0.2, res.Errors[2].RelError, 1e-12)
	assert.InDelta(t, 1-0.5/3, res.Score, 1e-12)
	assert.Greater(t, res.KS, 0.0)
	assert.LessOrEqual(t, res.KS, 1.0)
}

func TestValidate_IdenticalSamples_PerfectScore(t *testing.T) {
	s := Sample{ThroughputPerHour: 18, LeadTimes: []float64{5, 9, 7, 11}}
	res := Validate(s, s)
	assert.Equal(t, 1.0, res.Score)
	assert.Equal(t, 0.0, res.KS)
}

func TestValidate_LargeErrors_ClampToZero(t *testing.T) {
	res := Validate(
		Sample{ThroughputPerHour: 100, LeadTimes: []float64{100}},
		Sample{ThroughputPerHour: 10, LeadTimes: []float64{10}},
	)
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, 0.0, res.Score)
}

func TestValidate_DoesNotReorderInputs(t *testing.T) {
	lt := []float64{3, 1, 2}
	Validate(Sample{ThroughputPerHour: 1, LeadTimes: lt}, Sample{ThroughputPerHour: 1, LeadTimes: []float64{2, 1}})
	assert.Equal(t, []float64{3, 1, 2}, lt)
}

func TestPerturbConfig(t *testing.T) {
	base := sim.DefaultLineConfig()
	base.Stations[0].MTBF, base.Stations[0].MTTR = 100, 5

	cfg := PerturbConfig(base, rand.New(rand.NewSource(1)))

	for i, st := range cfg.Stations {
		ratio := st.ProcMean / base.Stations[i].ProcMean
		assert.GreaterOrEqual(t, ratio, 0.9, st.Name)
		assert.Less(t, ratio, 1.2, st.Name)
	}
	assert.InDelta(t, 80.0, cfg.Stations[0].MTBF, 1e-12)
	assert.Equal(t, 0.0, cfg.Stations[1].MTBF)
	assert.InDelta(t, 2.1, cfg.InterarrivalMean, 1e-12)
	assert.Equal(t, 3.0, base.Stations[0].ProcMean, "base must not change")
}

func TestSyntheticRealSample_ValidatesAgainstSimulation(t *testing.T) {
	// GIVEN the reference line and a synthetic plant sample derived from it
	cfg, err := sim.ParseLineConfig(testutil.ReferenceLineYAML(t))
	require.NoError(t, err)
	real, err := SyntheticRealSample(context.Background(), cfg, 7)
	require.NoError(t, err)
	again, err := SyntheticRealSample(context.Background(), cfg, 7)
	require.NoError(t, err)
	assert.Equal(t, real, again)

	// WHEN the unperturbed simulation is validated against it
	res, err := line.RunSimulation(context.Background(), cfg, line.Options{})
	require.NoError(t, err)
	v := Validate(SampleFromResult(res), real)

	// THEN a score in [0, 1] is produced
	require.NoError(t, v.Err())
	testutil.AssertUnitInterval(t, "score", v.Score)
	testutil.AssertUnitInterval(t, "ks", v.KS)
}

func TestSampleFromResult_MeasuredCompletionsOnly(t *testing.T) {
	res := &line.Result{Products: []line.ProductRecord{
		{Completed: true, Measured: true, LeadTime: 4},
		{Completed: true, Measured: false, LeadTime: 9},
		{Completed: false},
		{Completed: true, Measured: true, LeadTime: 6},
	}}
	res.Line.ThroughputPerHour = 12

	s := SampleFromResult(res)

	assert.Equal(t, []float64{4, 6}, s.LeadTimes)
	assert.Equal(t, 12.0, s.ThroughputPerHour)
}
