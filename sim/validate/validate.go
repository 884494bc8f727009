// Package validate compares a simulated line against observations of the real
// one and scores how closely they agree.
package validate

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/line-sim/line-sim/sim/analysis"
	"github.com/line-sim/line-sim/sim/line"
)

// ErrInsufficientData is returned by Result.Err when a sample cannot support
// a comparison.
var ErrInsufficientData = errors.New("insufficient data for validation")

// InsufficientScore is the sentinel score of a comparison that could not run.
// It lies outside [0, 1] so it is never mistaken for a real score.
const InsufficientScore = -1.0

// Status of a comparison.
type Status string

const (
	StatusOK               Status = "ok"
	StatusInsufficientData Status = "insufficient_data"
)

// Reason codes for StatusInsufficientData.
const (
	ReasonEmptySample    = "empty_sample"
	ReasonZeroMean       = "zero_mean"
	ReasonEmptySimSample = "empty_sim_sample"
	ReasonInvalidSample  = "invalid_sample" // NaN or infinite values
)

// Sample is an observed or simulated measurement period.
type Sample struct {
	ThroughputPerHour float64   `json:"throughput_per_hour"`
	LeadTimes         []float64 `json:"lead_times"` // minutes, one per completed product
}

// SampleFromResult takes the measured-window completions of a simulation.
func SampleFromResult(res *line.Result) Sample {
	s := Sample{ThroughputPerHour: res.Line.ThroughputPerHour}
	for _, p := range res.Products {
		if p.Completed && p.Measured {
			s.LeadTimes = append(s.LeadTimes, p.LeadTime)
		}
	}
	return s
}

// MetricError is the relative error of one metric, |sim − real| / real.
type MetricError struct {
	Metric   string  `json:"metric"`
	Real     float64 `json:"real"`
	Sim      float64 `json:"sim"`
	RelError float64 `json:"rel_error"`
}

// Result is the outcome of Validate.
type Result struct {
	Status Status        `json:"status"`
	Reason string        `json:"reason,omitempty"`
	Score  float64       `json:"score"` // 1 − mean relative error, clamped to [0, 1]
	Errors []MetricError `json:"errors"`
	// KS is the two-sample Kolmogorov–Smirnov distance between the lead-time
	// distributions.
	KS float64 `json:"ks"`
}

// Err returns ErrInsufficientData when the comparison could not run.
func (r Result) Err() error {
	if r.Status == StatusInsufficientData {
		return ErrInsufficientData
	}
	return nil
}

// Validate compares a simulated sample with a real one. It never divides by a
// zero real value: degenerate inputs yield StatusInsufficientData with the
// sentinel score and a reason code.
func Validate(simulated, real Sample) Result {
	if len(real.LeadTimes) == 0 {
		return insufficient(ReasonEmptySample)
	}
	if len(simulated.LeadTimes) == 0 {
		return insufficient(ReasonEmptySimSample)
	}
	if !finite(real) || !finite(simulated) {
		return insufficient(ReasonInvalidSample)
	}
	realSorted := sortedCopy(real.LeadTimes)
	simSorted := sortedCopy(simulated.LeadTimes)
	realMean := stat.Mean(realSorted, nil)
	realMedian := analysis.Percentile(realSorted, 50)
	if real.ThroughputPerHour <= 0 || realMean <= 0 || realMedian <= 0 {
		return insufficient(ReasonZeroMean)
	}

	res := Result{Status: StatusOK}
	res.Errors = []MetricError{
		relError("throughput_per_hour", real.ThroughputPerHour, simulated.ThroughputPerHour),
		relError("mean_lead_time", realMean, stat.Mean(simSorted, nil)),
		relError("median_lead_time", realMedian, analysis.Percentile(simSorted, 50)),
	}
	sum := 0.0
	for _, e := range res.Errors {
		sum += e.RelError
	}
	res.Score = math.Max(0, math.Min(1, 1-sum/float64(len(res.Errors))))
	res.KS = stat.KolmogorovSmirnov(simSorted, nil, realSorted, nil)
	return res
}

func finite(s Sample) bool {
	if math.IsNaN(s.ThroughputPerHour) || math.IsInf(s.ThroughputPerHour, 0) {
		return false
	}
	for _, v := range s.LeadTimes {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func insufficient(reason string) Result {
	return Result{Status: StatusInsufficientData, Reason: reason, Score: InsufficientScore}
}

func relError(metric string, real, simulated float64) MetricError {
	return MetricError{Metric: metric, Real: real, Sim: simulated, RelError: math.Abs(simulated-real) / real}
}

func sortedCopy(v []float64) []float64 {
	out := append([]float64(nil), v...)
	sort.Float64s(out)
	return out
}
