// Package optimize searches a discrete configuration space around a base line:
// every candidate is simulated over the same replication seeds, aggregated, scored
// against its capital cost and compared with the base configuration.
package optimize

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/line-sim/line-sim/sim"
	"github.com/line-sim/line-sim/sim/analysis"
)

// DefaultReplications is the number of replications per configuration.
const DefaultReplications = 5

var scenarioNamespace = uuid.MustParse("0b8e4c1d-7a26-4f3b-a5d9-9e2f61c7b380")

// Options tunes a search. Zero values select defaults.
type Options struct {
	Replications int
	// BaseSeed seeds replication r with BaseSeed+r in every configuration;
	// 0 uses the base configuration's seed.
	BaseSeed  int64
	Objective Objective
	CostScale float64
	Lambda    float64
	// Workers bounds concurrent replications; 0 uses GOMAXPROCS.
	Workers int
	// ReplicationTimeout is the wall-clock budget of one replication; 0 = none.
	ReplicationTimeout time.Duration
	// MaxCapitalCost marks costlier configurations infeasible; 0 = unlimited.
	MaxCapitalCost    float64
	MaxConfigurations int
	Registerer        prometheus.Registerer
}

func (o Options) withDefaults(base sim.LineConfig) (Options, error) {
	if o.Replications <= 0 {
		o.Replications = DefaultReplications
	}
	if o.BaseSeed == 0 {
		o.BaseSeed = base.Seed
	}
	obj, err := ParseObjective(string(o.Objective))
	if err != nil {
		return o, &sim.ConfigError{Field: "objective", Reason: err.Error()}
	}
	o.Objective = obj
	if o.CostScale <= 0 {
		o.CostScale = DefaultCostScale
	}
	if o.Lambda <= 0 {
		o.Lambda = DefaultLambda
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.MaxCapitalCost < 0 {
		return o, &sim.ConfigError{Field: "max_capital_cost", Reason: "must be >= 0"}
	}
	return o, nil
}

// Seeds returns the replication seeds shared by every configuration.
func (o Options) Seeds() []int64 {
	seeds := make([]int64, o.Replications)
	for r := range seeds {
		seeds[r] = o.BaseSeed + int64(r)
	}
	return seeds
}

// Outcome is the result of a search.
type Outcome struct {
	Objective Objective        `json:"objective"`
	Seeds     []int64          `json:"seeds"`
	Baseline  ScenarioResult   `json:"baseline"`
	Results   []ScenarioResult `json:"results"` // enumeration order
	// Recommendations are ordered as produced: throughput, ROI, bottleneck, lead time.
	Recommendations []Recommendation `json:"recommendations"`
	Evaluated       int              `json:"evaluated"`
	Failed          int              `json:"failed"`
}

// Ranked returns the results ordered by rank; unranked results come last in
// enumeration order.
func (o *Outcome) Ranked() []ScenarioResult {
	out := make([]ScenarioResult, len(o.Results))
	copy(out, o.Results)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Rank, out[j].Rank
		if ri == 0 || rj == 0 {
			return ri != 0 && rj == 0
		}
		return ri < rj
	})
	return out
}

// Optimize evaluates every configuration of axes around base. A configuration
// that is invalid, whose replications all abort, or that completes nothing is
// recorded with its status and the search continues. Only an invalid base,
// invalid axes or options, or cancellation of ctx fail the whole search.
func Optimize(ctx context.Context, base sim.LineConfig, axes Axes, opts Options) (*Outcome, error) {
	base = base.Clone()
	if err := base.Validate(); err != nil {
		return nil, err
	}
	opts, err := opts.withDefaults(base)
	if err != nil {
		return nil, err
	}
	candidates, err := axes.Enumerate(base, opts.MaxConfigurations)
	if err != nil {
		return nil, err
	}
	metrics, err := NewMetrics(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("registering optimizer metrics: %w", err)
	}
	seeds := opts.Seeds()
	logrus.Infof("optimizer: %d configurations × %d replications, objective %s, %d workers",
		len(candidates), len(seeds), opts.Objective, opts.Workers)

	scenarios := make([]ScenarioResult, len(candidates)+1)
	scenarios[0] = newScenario(-1, nil, base, base, seeds, opts)
	scenarios[0].ID = "baseline"
	for i, c := range candidates {
		scenarios[i+1] = newScenario(c.Index, c.Params, c.Config, base, seeds, opts)
	}

	// Each job writes only its own replication slot; reduction happens after Wait.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range scenarios {
		sc := &scenarios[i]
		if sc.Status == StatusFailed {
			continue
		}
		for r := range seeds {
			slot := &sc.Replications[r]
			cfg := sc.Config
			g.Go(func() error {
				return runReplication(gctx, cfg, slot, opts.ReplicationTimeout, metrics)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Outcome{Objective: opts.Objective, Seeds: seeds}
	for i := range scenarios {
		sc := &scenarios[i]
		if sc.Status != StatusFailed {
			sc.aggregate()
		}
		if sc.OK() {
			sc.Score = score(opts.Objective, sc.Throughput.Mean, sc.CapitalCost, opts.CostScale, opts.Lambda)
		}
		if i > 0 {
			metrics.scenarioDone(!sc.OK())
			if !sc.OK() {
				logrus.Warnf("configuration %d (%s) %s: %s", sc.Index, formatParams(sc.Params), sc.Status, sc.Reason)
			}
		}
	}
	out.Baseline = scenarios[0]
	out.Results = scenarios[1:]
	for i := range out.Results {
		out.Results[i].compareTo(&out.Baseline)
		out.Evaluated++
		if !out.Results[i].OK() {
			out.Failed++
		}
	}
	markPareto(out.Results)
	rank(out.Results)
	out.Recommendations = Recommend(out)
	logrus.Infof("optimizer: %d evaluated, %d failed", out.Evaluated, out.Failed)
	return out, nil
}

func newScenario(index int, params []Param, cfg, base sim.LineConfig, seeds []int64, opts Options) ScenarioResult {
	sc := ScenarioResult{
		Index:        index,
		Params:       params,
		Config:       cfg,
		Seeds:        append([]int64(nil), seeds...),
		Replications: make([]ReplicationResult, len(seeds)),
		Feasible:     true,
	}
	for r, s := range seeds {
		sc.Replications[r].Seed = s
	}
	sc.ID = scenarioID(params)
	if err := sc.Config.Validate(); err != nil {
		sc.Status, sc.Reason = StatusFailed, err.Error()
		return sc
	}
	sc.CapitalCost = CapitalCost(base, sc.Config)
	if opts.MaxCapitalCost > 0 && sc.CapitalCost > opts.MaxCapitalCost {
		sc.Feasible = false
	}
	return sc
}

// runReplication simulates cfg with the slot's seed. A replication that exceeds
// its own budget is marked aborted and its metrics are discarded; cancellation of
// the whole search is returned as an error.
func runReplication(ctx context.Context, cfg sim.LineConfig, slot *ReplicationResult, budget time.Duration, metrics *Metrics) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", sim.ErrRunAborted, err)
	}
	runCtx := ctx
	if budget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}
	cfg.Seed = slot.Seed
	start := time.Now()

	s, err := sim.NewSimulator(cfg, sim.Options{})
	if err != nil {
		// Validated before scheduling; only reachable through a programming error.
		return err
	}
	rec, err := s.Run(runCtx)
	if err != nil {
		if errors.Is(err, sim.ErrRunAborted) && ctx.Err() == nil {
			*slot = ReplicationResult{Seed: slot.Seed, Aborted: true}
			metrics.observeReplication("aborted", time.Since(start))
			logrus.Debugf("replication seed=%d aborted after %v", slot.Seed, budget)
			return nil
		}
		return err
	}

	stations := analysis.AnalyzeStations(rec)
	lm := analysis.AnalyzeLine(rec)
	scores := analysis.ScoreBottlenecks(stations, cfg.Bottleneck)
	byName := make(map[string]float64, len(scores))
	for _, sc := range scores {
		byName[sc.Station] = sc.Score
	}
	*slot = ReplicationResult{
		Seed:             slot.Seed,
		InsufficientData: rec.InsufficientData,
		Completed:        lm.Completed,
		Throughput:       lm.ThroughputPerHour,
		LeadTime:         lm.LeadTime.Mean,
		Utilization:      make([]float64, len(stations)),
		BottleneckScores: make([]float64, len(stations)),
		Cost:             rec.Cost.Total,
		CostPerUnit:      rec.Cost.PerUnit,
	}
	for i, st := range stations {
		slot.Utilization[i] = st.Utilization
		slot.BottleneckScores[i] = byName[st.Name]
	}
	status := "ok"
	if rec.InsufficientData {
		status = "insufficient_data"
	}
	metrics.observeReplication(status, time.Since(start))
	return nil
}

// rank orders OK, feasible results by score, ties by enumeration order.
func rank(results []ScenarioResult) {
	idx := make([]int, 0, len(results))
	for i := range results {
		results[i].Rank = 0
		if results[i].OK() && results[i].Feasible {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return results[idx[a]].Score > results[idx[b]].Score })
	for r, i := range idx {
		results[i].Rank = r + 1
	}
}

func scenarioID(params []Param) string {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(params)
	if err != nil {
		return uuid.Nil.String()
	}
	return uuid.NewSHA1(scenarioNamespace, data).String()
}

func formatParams(params []Param) string {
	if len(params) == 0 {
		return "base"
	}
	s := ""
	for i, p := range params {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s=%g", p.Name, p.Value)
	}
	return s
}
