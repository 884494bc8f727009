package sim

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Distribution names a duration distribution family.
type Distribution string

const (
	DistExponential   Distribution = "exponential"
	DistNormal        Distribution = "normal"
	DistDeterministic Distribution = "deterministic"
	DistGamma         Distribution = "gamma"
)

// distAliases maps accepted spellings onto canonical names.
var distAliases = map[string]Distribution{
	"":              DistExponential,
	"exp":           DistExponential,
	"exponential":   DistExponential,
	"normal":        DistNormal,
	"gaussian":      DistNormal,
	"det":           DistDeterministic,
	"deterministic": DistDeterministic,
	"constant":      DistDeterministic,
	"gamma":         DistGamma,
}

// ParseDistribution canonicalises a distribution name.
func ParseDistribution(name string) (Distribution, error) {
	d, ok := distAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("unknown distribution type %q", name)
	}
	return d, nil
}

// Sampler draws non-negative durations.
type Sampler interface {
	Sample(rng *rand.Rand) float64
	Mean() float64
}

// ExponentialSampler produces exponentially distributed durations.
type ExponentialSampler struct {
	mean float64
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) float64 {
	return rng.ExpFloat64() * s.mean
}

func (s *ExponentialSampler) Mean() float64 { return s.mean }

// NormalSampler produces Gaussian durations truncated at zero.
type NormalSampler struct {
	mean, stdDev float64
}

func (s *NormalSampler) Sample(rng *rand.Rand) float64 {
	if s.stdDev == 0 {
		return s.mean
	}
	return math.Max(0, rng.NormFloat64()*s.stdDev+s.mean)
}

func (s *NormalSampler) Mean() float64 { return s.mean }

// DeterministicSampler always returns the same value.
type DeterministicSampler struct {
	value float64
}

func (s *DeterministicSampler) Sample(_ *rand.Rand) float64 { return s.value }

func (s *DeterministicSampler) Mean() float64 { return s.value }

// GammaSampler produces Gamma distributed durations with a given mean and
// coefficient of variation. CV > 1 yields bursty arrivals.
type GammaSampler struct {
	shape float64 // 1/CV²
	scale float64 // mean·CV²
}

func (s *GammaSampler) Sample(rng *rand.Rand) float64 {
	return gammaRand(rng, s.shape, s.scale)
}

func (s *GammaSampler) Mean() float64 { return s.shape * s.scale }

// gammaRand samples from Gamma(shape, scale) using Marsaglia-Tsang's method.
// For shape < 1: Gamma(shape) = Gamma(shape+1) * U^(1/shape).
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		u := rng.Float64()
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		x := rng.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// NewSampler creates a Sampler. spread is the standard deviation for normal and
// the coefficient of variation for gamma; it is ignored otherwise.
func NewSampler(dist Distribution, mean, spread float64) (Sampler, error) {
	if mean <= 0 || math.IsNaN(mean) || math.IsInf(mean, 0) {
		return nil, fmt.Errorf("distribution mean must be positive, got %v", mean)
	}
	switch dist {
	case DistExponential:
		return &ExponentialSampler{mean: mean}, nil
	case DistNormal:
		if spread < 0 {
			return nil, fmt.Errorf("normal distribution std dev must be >= 0, got %v", spread)
		}
		return &NormalSampler{mean: mean, stdDev: spread}, nil
	case DistDeterministic:
		return &DeterministicSampler{value: mean}, nil
	case DistGamma:
		if spread <= 0 {
			return nil, fmt.Errorf("gamma distribution requires cv > 0, got %v", spread)
		}
		cv2 := spread * spread
		return &GammaSampler{shape: 1.0 / cv2, scale: mean * cv2}, nil
	default:
		return nil, fmt.Errorf("unknown distribution type %q", dist)
	}
}
