// Package line runs one complete simulation of a production line and shapes the
// outcome into the tables consumed downstream: station metrics, product records,
// time series, cost breakdown and bottleneck ranking.
package line

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/line-sim/line-sim/sim"
	"github.com/line-sim/line-sim/sim/analysis"
	"github.com/line-sim/line-sim/sim/trace"
)

// runNamespace scopes run IDs derived from configurations.
var runNamespace = uuid.MustParse("6f1c2a7e-3b52-4f0e-9d0a-2c5e8b1d4a93")

var canonicalJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Options tunes RunSimulation.
type Options struct {
	TraceLevel trace.TraceLevel
}

// ProductRecord is one product's row: timestamps per station and its lead time.
type ProductRecord struct {
	ID             string           `json:"id"`
	ArrivalTime    float64          `json:"arrival_time"`
	CompletionTime float64          `json:"completion_time"`
	LeadTime       float64          `json:"lead_time"`
	Completed      bool             `json:"completed"`
	Measured       bool             `json:"measured"` // completed at or after warm-up
	Priority       int              `json:"priority"`
	Stages         []sim.StageTimes `json:"stages"`
}

// SeriesPoint is one sample of the line's time series.
type SeriesPoint struct {
	Time       float64 `json:"time"`
	QueueLen   []int   `json:"queue_len"` // per station, line order
	TotalQueue int     `json:"total_queue"`
	WIP        int     `json:"wip"`
	Completed  int     `json:"completed"`
	// ThroughputPerHour is the cumulative measured completion rate up to Time.
	ThroughputPerHour float64 `json:"throughput_per_hour"`
}

// Result is the complete outcome of one simulation.
type Result struct {
	RunID             string                     `json:"run_id"`
	Seed              int64                      `json:"seed"`
	Stations          []string                   `json:"stations"`
	Line              analysis.LineMetrics       `json:"line"`
	StationMetrics    []analysis.StationMetrics  `json:"station_metrics"`
	Bottlenecks       []analysis.BottleneckScore `json:"bottlenecks"`
	PrimaryBottleneck string                     `json:"primary_bottleneck"`
	Products          []ProductRecord            `json:"products"`
	Series            []SeriesPoint              `json:"series"`
	Cost              sim.CostBreakdown          `json:"cost"`
	EventsFired       uint64                     `json:"events_fired"`
	InsufficientData  bool                       `json:"insufficient_data"`
	Reason            string                     `json:"reason,omitempty"`

	Record *sim.RunRecord         `json:"-"`
	Trace  *trace.SimulationTrace `json:"-"`
}

// Err returns sim.ErrDegenerateRun when the run produced no measured completions.
func (r *Result) Err() error {
	if r.InsufficientData {
		return sim.ErrDegenerateRun
	}
	return nil
}

// RunSimulation validates cfg, runs one replication with cfg.Seed and analyzes it.
// Configuration problems are returned as *sim.ConfigError; a cancelled ctx
// returns sim.ErrRunAborted. A run without measured completions is not an
// error: the Result is flagged InsufficientData.
func RunSimulation(ctx context.Context, cfg sim.LineConfig, opts Options) (*Result, error) {
	s, err := sim.NewSimulator(cfg, sim.Options{TraceLevel: opts.TraceLevel})
	if err != nil {
		return nil, err
	}
	rec, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	res, err := Analyze(rec)
	if err != nil {
		return nil, err
	}
	logrus.Infof("run %s: seed=%d completed=%d throughput=%.2f/h primary bottleneck=%s",
		res.RunID, res.Seed, res.Line.Completed, res.Line.ThroughputPerHour, res.PrimaryBottleneck)
	return res, nil
}

// Analyze shapes a raw replication record into a Result.
func Analyze(rec *sim.RunRecord) (*Result, error) {
	id, err := RunID(rec.Config)
	if err != nil {
		return nil, err
	}
	stations := analysis.AnalyzeStations(rec)
	scores := analysis.ScoreBottlenecks(stations, rec.Config.Bottleneck)
	res := &Result{
		RunID:             id,
		Seed:              rec.Seed,
		Stations:          make([]string, len(rec.Stations)),
		Line:              analysis.AnalyzeLine(rec),
		StationMetrics:    stations,
		Bottlenecks:       scores,
		PrimaryBottleneck: analysis.Primary(scores),
		Products:          productRecords(rec),
		Series:            series(rec),
		Cost:              rec.Cost,
		EventsFired:       rec.EventsFired,
		InsufficientData:  rec.InsufficientData,
		Reason:            rec.Reason,
		Record:            rec,
		Trace:             rec.Trace,
	}
	for i, st := range rec.Stations {
		res.Stations[i] = st.Name
	}
	return res, nil
}

// RunID derives a stable identifier from the full configuration, seed included.
func RunID(cfg sim.LineConfig) (string, error) {
	data, err := canonicalJSON.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encoding configuration for run id: %w", err)
	}
	return uuid.NewSHA1(runNamespace, data).String(), nil
}

func productRecords(rec *sim.RunRecord) []ProductRecord {
	out := make([]ProductRecord, len(rec.Products))
	for i, p := range rec.Products {
		out[i] = ProductRecord{
			ID:             p.ID,
			ArrivalTime:    p.ArrivalTime,
			CompletionTime: p.CompletionTime,
			LeadTime:       p.LeadTime(),
			Completed:      p.Completed,
			Measured:       p.Completed && p.CompletionTime >= rec.WindowStart,
			Priority:       p.Priority,
			Stages:         p.Stages,
		}
	}
	return out
}

func series(rec *sim.RunRecord) []SeriesPoint {
	out := make([]SeriesPoint, len(rec.Series))
	for i, pt := range rec.Series {
		sp := SeriesPoint{
			Time:       pt.Time,
			QueueLen:   pt.Queues,
			TotalQueue: pt.TotalQueue,
			WIP:        pt.WIP,
			Completed:  pt.Completed,
		}
		if elapsed := pt.Time - rec.WindowStart; elapsed > 0 {
			sp.ThroughputPerHour = float64(pt.Completed) / elapsed * 60
		}
		out[i] = sp
	}
	return out
}
