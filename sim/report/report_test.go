package report

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/line-sim/line-sim/sim"
	"github.com/line-sim/line-sim/sim/analysis"
	"github.com/line-sim/line-sim/sim/line"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func TestRGBA_Opaque(t *testing.T) {
	fill := RGBA{R: 255, G: 140, B: 0, A: 0.6}

	border := fill.Opaque()

	assert.Equal(t, RGBA{R: 255, G: 140, B: 0, A: 1}, border)
	assert.Equal(t, 0.6, fill.A, "receiver unchanged")
	assert.Equal(t, "rgba(255, 140, 0, 0.6)", fill.String())
	assert.Equal(t, "rgba(255, 140, 0, 1)", border.String())
	assert.Equal(t, border, border.Opaque())
}

func TestRGBA_WithAlpha_Clamps(t *testing.T) {
	c := RGBA{R: 1, G: 2, B: 3}
	assert.Equal(t, 0.0, c.WithAlpha(-3).A)
	assert.Equal(t, 1.0, c.WithAlpha(7).A)
	assert.Equal(t, 0.25, c.WithAlpha(0.25).A)
}

func TestStationColor_CyclesPalette(t *testing.T) {
	assert.Equal(t, StationColor(0), StationColor(len(palette)))
	assert.NotEqual(t, StationColor(0), StationColor(1))
}

func TestDownsample(t *testing.T) {
	points := make([]line.SeriesPoint, 101)
	for i := range points {
		points[i].Time = float64(i)
	}

	got := Downsample(points, 11)

	require.Len(t, got, 11)
	for i, p := range got {
		assert.Equal(t, float64(i*10), p.Time)
	}
	assert.Len(t, Downsample(points[:5], 11), 5)
}

func TestNewHistogram(t *testing.T) {
	// GIVEN lead times spanning 0..10
	values := []float64{10, 0, 1, 2, 2, 5, 9}

	// WHEN binned into 5
	h := NewHistogram(values, 5)

	// THEN edges are equal width and every value is counted once
	assert.Equal(t, []float64{0, 2, 4, 6, 8, 10}, h.Edges)
	assert.Equal(t, []int{2, 2, 1, 0, 2}, h.Counts)
	assert.Equal(t, "0-2", h.Labels[0])
	assert.Equal(t, "8-10", h.Labels[4])
}

func TestNewHistogram_Degenerate(t *testing.T) {
	assert.Empty(t, NewHistogram(nil, 10).Counts)

	h := NewHistogram([]float64{3, 3, 3}, 2)
	assert.Equal(t, []int{3, 0}, h.Counts)
}

func TestGantt_FinishedStagesOfFirstProducts(t *testing.T) {
	res := &line.Result{
		Stations: []string{"Cut", "Drill"},
		Products: []line.ProductRecord{
			{ID: "P0", Stages: []sim.StageTimes{{Station: "Cut", Start: 0, End: 3}, {Station: "Drill", Start: 3, End: 7}}},
			{ID: "P1", Stages: []sim.StageTimes{{Station: "Cut", Start: 3, End: 5}, {Station: "Drill", Start: 7}}},
			{ID: "P2", Stages: []sim.StageTimes{{Station: "Cut", Start: 5, End: 6}}},
		},
	}

	rows := Gantt(res, 2)

	require.Len(t, rows, 3)
	assert.Equal(t, GanttRow{Product: "P0", Station: "Drill", Start: 3, Finish: 7, Duration: 4, Color: StationColor(1)}, rows[1])
	assert.Equal(t, "P1", rows[2].Product)
}

func TestStates_SharesSumToOne(t *testing.T) {
	res := &line.Result{
		Line: analysis.LineMetrics{Window: 100},
		StationMetrics: []analysis.StationMetrics{
			{Name: "A", Utilization: 0.5, DownTime: 20},
			{Name: "B", Utilization: 0.25},
		},
	}

	states := States(res)

	assert.Equal(t, StateBreakdown{Station: "A", Busy: 0.5, Idle: 0.3, Down: 0.2}, roundState(states[0]))
	assert.Equal(t, StateBreakdown{Station: "B", Busy: 0.25, Idle: 0.75}, states[1])
}

func roundState(s StateBreakdown) StateBreakdown {
	r := func(v float64) float64 { return float64(int(v*1e9+0.5)) / 1e9 }
	s.Busy, s.Idle, s.Down = r(s.Busy), r(s.Idle), r(s.Down)
	return s
}

func TestBuild_ReferenceLine(t *testing.T) {
	// GIVEN a full simulation of the default line with a failing station
	cfg := sim.DefaultLineConfig()
	cfg.Stations[1].MTBF, cfg.Stations[1].MTTR = 60, 5
	res, err := line.RunSimulation(context.Background(), cfg, line.Options{})
	require.NoError(t, err)

	// WHEN the report is built with tight limits
	r := Build(res, Options{MaxPoints: 10, Bins: 6, GanttProducts: 5})

	// THEN every section respects them and the bottleneck is highlighted
	assert.Len(t, r.Series, 10)
	assert.Equal(t, res.Series[len(res.Series)-1], r.Series[9])
	require.Len(t, r.LeadTime.Counts, 6)
	total := 0
	for _, c := range r.LeadTime.Counts {
		total += c
	}
	assert.Equal(t, res.Line.Completed, total)
	for _, row := range r.Gantt {
		assert.Contains(t, []string{"P0", "P1", "P2", "P3", "P4"}, row.Product)
		assert.Greater(t, row.Duration, 0.0)
	}
	require.Len(t, r.Utilization, 4)
	for _, bar := range r.Utilization {
		if bar.Station == res.PrimaryBottleneck {
			assert.Equal(t, ColorBottleneck, bar.Fill)
		}
		assert.Equal(t, 1.0, bar.Border.A)
	}
	for _, s := range r.States {
		assert.InDelta(t, 1.0, s.Busy+s.Idle+s.Down, 1e-9, s.Station)
	}
}
