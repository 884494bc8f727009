// Package analysis derives station and line metrics from a raw replication
// record and ranks stations by how strongly they constrain the line.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Distribution summarises a sample. All fields are zero for an empty sample.
type Distribution struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	CV     float64 `json:"cv"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
}

// NewDistribution computes summary statistics of values. The input is not modified.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	d := Distribution{
		Count: len(sorted),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		P50:   Percentile(sorted, 50),
		P90:   Percentile(sorted, 90),
		P95:   Percentile(sorted, 95),
		P99:   Percentile(sorted, 99),
	}
	if len(sorted) == 1 {
		d.Mean = sorted[0]
	} else {
		d.Mean, d.StdDev = stat.MeanStdDev(sorted, nil)
	}
	if d.Mean > 0 {
		d.CV = d.StdDev / d.Mean
	}
	return d
}

// Percentile returns the p-th percentile (0..100) of sorted data using linear
// interpolation between closest ranks. Returns 0 for empty input.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	rank := p / 100.0 * float64(n-1)
	lowerIdx := int(math.Floor(rank))
	upperIdx := int(math.Ceil(rank))
	if upperIdx >= n {
		return sorted[n-1]
	}
	if lowerIdx == upperIdx {
		return sorted[lowerIdx]
	}
	return sorted[lowerIdx] + (sorted[upperIdx]-sorted[lowerIdx])*(rank-float64(lowerIdx))
}
