package validate

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/line-sim/line-sim/sim"
	"github.com/line-sim/line-sim/sim/line"
)

// Perturbations applied by SyntheticRealSample to stand in for plant data.
const (
	procScaleMin     = 0.9
	procScaleMax     = 1.2
	mtbfScale        = 0.8
	arrivalScale     = 1.05
	leadTimeNoiseStd = 2.0
)

// PerturbConfig returns base with every processing mean scaled by U(0.9, 1.2),
// MTBF shortened by 20% and arrivals spaced 5% further apart.
func PerturbConfig(base sim.LineConfig, rng *rand.Rand) sim.LineConfig {
	cfg := base.Clone()
	for i := range cfg.Stations {
		st := &cfg.Stations[i]
		st.ProcMean *= procScaleMin + rng.Float64()*(procScaleMax-procScaleMin)
		st.MTBF *= mtbfScale
	}
	cfg.InterarrivalMean *= arrivalScale
	return cfg
}

// SyntheticRealSample simulates a perturbed copy of base and adds Gaussian
// measurement noise to the lead times. The same base and seed reproduce the
// same sample.
func SyntheticRealSample(ctx context.Context, base sim.LineConfig, seed int64) (Sample, error) {
	rng := rand.New(rand.NewSource(seed))
	cfg := PerturbConfig(base, rng)
	cfg.Seed = seed
	res, err := line.RunSimulation(ctx, cfg, line.Options{})
	if err != nil {
		return Sample{}, fmt.Errorf("simulating synthetic real sample: %w", err)
	}
	s := SampleFromResult(res)
	for i := range s.LeadTimes {
		s.LeadTimes[i] += rng.NormFloat64() * leadTimeNoiseStd
	}
	logrus.Debugf("synthetic real sample: seed=%d, %d lead times, %.2f units/h", seed, len(s.LeadTimes), s.ThroughputPerHour)
	return s, nil
}
