package optimize

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/line-sim/line-sim/sim"
)

// Status is the outcome of evaluating one configuration.
type Status string

const (
	StatusOK               Status = "ok"
	StatusFailed           Status = "failed"
	StatusInsufficientData Status = "insufficient_data"
)

// Stat is a mean and sample standard deviation across replications.
type Stat struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

func newStat(values []float64) Stat {
	switch len(values) {
	case 0:
		return Stat{}
	case 1:
		return Stat{Mean: values[0]}
	}
	mean, std := stat.MeanStdDev(values, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return Stat{Mean: mean, StdDev: std}
}

// ReplicationResult is the reduced outcome of one replication.
type ReplicationResult struct {
	Seed             int64     `json:"seed"`
	Aborted          bool      `json:"aborted"`
	InsufficientData bool      `json:"insufficient_data"`
	Completed        int       `json:"completed"`
	Throughput       float64   `json:"throughput"` // completions per hour
	LeadTime         float64   `json:"lead_time"`  // mean
	Utilization      []float64 `json:"utilization"`
	BottleneckScores []float64 `json:"bottleneck_scores"`
	Cost             float64   `json:"cost"`
	CostPerUnit      float64   `json:"cost_per_unit"`
}

// StationStat is a per-station aggregate in line order.
type StationStat struct {
	Station string `json:"station"`
	Stat
}

// ScenarioResult is the aggregated outcome of one configuration. It is not
// modified after Optimize returns.
type ScenarioResult struct {
	ID     string         `json:"id"`
	Index  int            `json:"index"` // enumeration order, -1 for the baseline
	Params []Param        `json:"params"`
	Config sim.LineConfig `json:"-"`

	Seeds        []int64             `json:"seeds"`
	Replications []ReplicationResult `json:"replications"`

	Throughput  Stat          `json:"throughput"`
	LeadTime    Stat          `json:"lead_time"`
	Utilization []StationStat `json:"utilization"`
	Cost        Stat          `json:"cost"`
	CapitalCost float64       `json:"capital_cost"`
	Score       float64       `json:"score"`

	Bottleneck            string  `json:"bottleneck"`
	BottleneckUtilization float64 `json:"bottleneck_utilization"`

	Status   Status `json:"status"`
	Reason   string `json:"reason,omitempty"`
	Feasible bool   `json:"feasible"`
	Pareto   bool   `json:"pareto"`
	Rank     int    `json:"rank"` // 1 = best; 0 when not ranked

	ThroughputImprovementPct float64 `json:"throughput_improvement_pct"`
	LeadTimeReductionPct     float64 `json:"lead_time_reduction_pct"`
	// CostEffectiveness is throughput improvement % per unit of capital cost.
	CostEffectiveness float64 `json:"cost_effectiveness"`
}

// OK reports whether the scenario produced usable aggregates.
func (r *ScenarioResult) OK() bool { return r.Status == StatusOK }

// aggregate reduces finished replications. Aborted replications are discarded.
func (r *ScenarioResult) aggregate() {
	var tp, lt, cost []float64
	n := len(r.Config.Stations)
	utils := make([][]float64, n)
	scores := make([]float64, n)
	kept := 0
	for _, rep := range r.Replications {
		if rep.Aborted {
			continue
		}
		kept++
		tp = append(tp, rep.Throughput)
		cost = append(cost, rep.Cost)
		if !rep.InsufficientData {
			lt = append(lt, rep.LeadTime)
		}
		for i := 0; i < n && i < len(rep.Utilization); i++ {
			utils[i] = append(utils[i], rep.Utilization[i])
			scores[i] += rep.BottleneckScores[i]
		}
	}

	switch {
	case kept == 0:
		r.Status, r.Reason = StatusFailed, "all replications aborted"
		return
	case len(lt) == 0:
		r.Status, r.Reason = StatusInsufficientData, sim.ErrDegenerateRun.Error()
	default:
		r.Status = StatusOK
	}

	r.Throughput = newStat(tp)
	r.LeadTime = newStat(lt)
	r.Cost = newStat(cost)
	r.Utilization = make([]StationStat, n)
	best := -1
	for i, st := range r.Config.Stations {
		r.Utilization[i] = StationStat{Station: st.Name, Stat: newStat(utils[i])}
		if best < 0 || scores[i] > scores[best] {
			best = i
		}
	}
	if best >= 0 {
		r.Bottleneck = r.Utilization[best].Station
		r.BottleneckUtilization = r.Utilization[best].Mean
	}
}

// compareTo fills the improvement fields against the baseline.
func (r *ScenarioResult) compareTo(base *ScenarioResult) {
	if !r.OK() || !base.OK() {
		return
	}
	if base.Throughput.Mean > 0 {
		r.ThroughputImprovementPct = (r.Throughput.Mean - base.Throughput.Mean) / base.Throughput.Mean * 100
	}
	if base.LeadTime.Mean > 0 {
		r.LeadTimeReductionPct = (base.LeadTime.Mean - r.LeadTime.Mean) / base.LeadTime.Mean * 100
	}
	if r.CapitalCost > 0 {
		r.CostEffectiveness = r.ThroughputImprovementPct / r.CapitalCost
	}
}

// markPareto flags the results not dominated on {throughput ↑, capital ↓}
// among OK, feasible results.
func markPareto(results []ScenarioResult) {
	for i := range results {
		a := &results[i]
		if !a.OK() || !a.Feasible {
			continue
		}
		dominated := false
		for j := range results {
			b := &results[j]
			if i == j || !b.OK() || !b.Feasible {
				continue
			}
			if b.Throughput.Mean >= a.Throughput.Mean && b.CapitalCost <= a.CapitalCost &&
				(b.Throughput.Mean > a.Throughput.Mean || b.CapitalCost < a.CapitalCost) {
				dominated = true
				break
			}
		}
		a.Pareto = !dominated
	}
}
