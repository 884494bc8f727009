// Package report shapes a simulation result into chart-ready data: downsampled
// time series, a lead-time histogram, gantt rows and per-station state
// breakdowns. It draws nothing itself.
package report

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/line-sim/line-sim/sim/line"
)

const (
	DefaultMaxPoints     = 200
	DefaultBins          = 10
	DefaultGanttProducts = 20
)

// Options bounds the size of a Report. Zero values select the defaults.
type Options struct {
	MaxPoints     int
	Bins          int
	GanttProducts int
}

// Bar is one station in the utilization chart.
type Bar struct {
	Station     string  `json:"station"`
	Utilization float64 `json:"utilization"`
	Fill        RGBA    `json:"fill"`
	Border      RGBA    `json:"border"`
}

// Histogram is a binned distribution. len(Edges) == len(Counts)+1.
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []int     `json:"counts"`
	Labels []string  `json:"labels"`
}

// GanttRow is one processing interval of one product at one station.
type GanttRow struct {
	Product  string  `json:"product"`
	Station  string  `json:"station"`
	Start    float64 `json:"start"`
	Finish   float64 `json:"finish"`
	Duration float64 `json:"duration"`
	Color    RGBA    `json:"color"`
}

// StateBreakdown is the share of the measured window a station spent busy,
// idle and down. Busy is per parallel unit; the three shares sum to 1.
type StateBreakdown struct {
	Station string  `json:"station"`
	Busy    float64 `json:"busy"`
	Idle    float64 `json:"idle"`
	Down    float64 `json:"down"`
}

// Report is the data contract consumed by a dashboard.
type Report struct {
	RunID       string             `json:"run_id"`
	Bottleneck  string             `json:"bottleneck"`
	Utilization []Bar              `json:"utilization"`
	Series      []line.SeriesPoint `json:"series"`
	LeadTime    Histogram          `json:"lead_time"`
	Gantt       []GanttRow         `json:"gantt"`
	States      []StateBreakdown   `json:"states"`
}

// Build assembles the report of one simulation.
func Build(res *line.Result, opts Options) *Report {
	if opts.MaxPoints <= 0 {
		opts.MaxPoints = DefaultMaxPoints
	}
	if opts.Bins <= 0 {
		opts.Bins = DefaultBins
	}
	if opts.GanttProducts <= 0 {
		opts.GanttProducts = DefaultGanttProducts
	}

	r := &Report{
		RunID:      res.RunID,
		Bottleneck: res.PrimaryBottleneck,
		Series:     Downsample(res.Series, opts.MaxPoints),
		Gantt:      Gantt(res, opts.GanttProducts),
		States:     States(res),
	}
	for i, sm := range res.StationMetrics {
		fill := StationColor(i)
		if sm.Name == res.PrimaryBottleneck {
			fill = ColorBottleneck
		}
		r.Utilization = append(r.Utilization, Bar{Station: sm.Name, Utilization: sm.Utilization, Fill: fill, Border: fill.Opaque()})
	}
	var leadTimes []float64
	for _, p := range res.Products {
		if p.Completed && p.Measured {
			leadTimes = append(leadTimes, p.LeadTime)
		}
	}
	r.LeadTime = NewHistogram(leadTimes, opts.Bins)
	return r
}

// Downsample keeps at most limit points, evenly strided, always keeping the
// first and last.
func Downsample(points []line.SeriesPoint, limit int) []line.SeriesPoint {
	if limit < 2 || len(points) <= limit {
		return points
	}
	out := make([]line.SeriesPoint, 0, limit)
	step := float64(len(points)-1) / float64(limit-1)
	for i := 0; i < limit; i++ {
		out = append(out, points[int(math.Round(float64(i)*step))])
	}
	return out
}

// NewHistogram bins values into equal-width bins spanning their range.
func NewHistogram(values []float64, bins int) Histogram {
	if len(values) == 0 || bins <= 0 {
		return Histogram{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi == lo {
		hi = lo + 1
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram needs the last divider strictly above the maximum.
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	h := Histogram{Edges: edges, Counts: make([]int, bins), Labels: make([]string, bins)}
	for i, c := range counts {
		h.Counts[i] = int(c)
		h.Labels[i] = fmt.Sprintf("%d-%d", int(edges[i]), int(edges[i+1]))
	}
	return h
}

// Gantt lists the finished processing intervals of the first n products.
func Gantt(res *line.Result, n int) []GanttRow {
	index := make(map[string]int, len(res.Stations))
	for i, name := range res.Stations {
		index[name] = i
	}
	var rows []GanttRow
	for i, p := range res.Products {
		if i >= n {
			break
		}
		for _, st := range p.Stages {
			if st.End <= 0 || st.End < st.Start {
				continue
			}
			rows = append(rows, GanttRow{
				Product:  p.ID,
				Station:  st.Station,
				Start:    st.Start,
				Finish:   st.End,
				Duration: st.End - st.Start,
				Color:    StationColor(index[st.Station]),
			})
		}
	}
	return rows
}

// States splits each station's measured window into busy, idle and down shares.
func States(res *line.Result) []StateBreakdown {
	window := res.Line.Window
	out := make([]StateBreakdown, len(res.StationMetrics))
	for i, sm := range res.StationMetrics {
		b := StateBreakdown{Station: sm.Name, Busy: sm.Utilization}
		if window > 0 {
			b.Down = sm.DownTime / window
		}
		b.Idle = math.Max(0, 1-b.Busy-b.Down)
		out[i] = b
	}
	return out
}
