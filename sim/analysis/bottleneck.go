package analysis

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/line-sim/line-sim/sim"
)

// BottleneckScore is one station's composite constraint score. The component
// fields hold the normalized criteria that were weighted into Score.
type BottleneckScore struct {
	Station     string  `json:"station"`
	Rank        int     `json:"rank"` // 1 = primary constraint
	Score       float64 `json:"score"`
	Utilization float64 `json:"utilization"`
	Queue       float64 `json:"queue"`
	Wait        float64 `json:"wait"`
	Variability float64 `json:"variability"`
}

// ScoreBottlenecks ranks stations by Σ wᵢ·norm(criterionᵢ) over utilization,
// average queue, average wait and cycle-time variability. Normalization is
// applied per criterion across stations. Ties keep line order.
func ScoreBottlenecks(stations []StationMetrics, settings sim.BottleneckSettings) []BottleneckScore {
	if len(stations) == 0 {
		return nil
	}
	w := settings.Weights
	if w == (sim.BottleneckWeights{}) {
		w = sim.DefaultBottleneckWeights()
	}
	mode := settings.Normalization
	if mode == "" {
		mode = sim.NormalizeMinMax
	}

	column := func(f func(StationMetrics) float64) []float64 {
		out := make([]float64, len(stations))
		for i, s := range stations {
			out[i] = f(s)
		}
		return normalize(out, mode)
	}
	util := column(func(s StationMetrics) float64 { return s.Utilization })
	queue := column(func(s StationMetrics) float64 { return s.AvgQueue })
	wait := column(func(s StationMetrics) float64 { return s.AvgWait })
	variability := column(func(s StationMetrics) float64 { return s.CycleTimeCV })

	scores := make([]BottleneckScore, len(stations))
	for i, s := range stations {
		scores[i] = BottleneckScore{
			Station:     s.Name,
			Utilization: util[i],
			Queue:       queue[i],
			Wait:        wait[i],
			Variability: variability[i],
			Score: w.Utilization*util[i] + w.Queue*queue[i] +
				w.Wait*wait[i] + w.Variability*variability[i],
		}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	for i := range scores {
		scores[i].Rank = i + 1
	}
	logrus.Debugf("primary bottleneck: %s (score %.3f)", scores[0].Station, scores[0].Score)
	return scores
}

// normalize scales values across stations. Degenerate columns (no spread, or
// all zero for max scaling) normalize to zero.
func normalize(values []float64, mode sim.Normalization) []float64 {
	out := make([]float64, len(values))
	switch mode {
	case sim.NormalizeMax:
		hi := 0.0
		for _, v := range values {
			hi = math.Max(hi, v)
		}
		if hi == 0 {
			return out
		}
		for i, v := range values {
			out[i] = v / hi
		}
	case sim.NormalizeZScore:
		mean, std := stat.PopMeanStdDev(values, nil)
		if std == 0 || math.IsNaN(std) {
			return out
		}
		for i, v := range values {
			out[i] = (v - mean) / std
		}
	default:
		lo, hi := values[0], values[0]
		for _, v := range values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi == lo {
			return out
		}
		for i, v := range values {
			out[i] = (v - lo) / (hi - lo)
		}
	}
	return out
}

// Primary returns the rank-1 station name, or "" for an empty ranking.
func Primary(scores []BottleneckScore) string {
	if len(scores) == 0 {
		return ""
	}
	return scores[0].Station
}
