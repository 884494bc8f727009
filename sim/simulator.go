// sim/simulator.go
package sim

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/line-sim/line-sim/sim/trace"
)

// Options tunes a single replication without changing its semantics.
type Options struct {
	TraceLevel trace.TraceLevel
}

// Simulator is one replication of a line: it owns the scheduler, the stations,
// the processes and the recorders. A Simulator runs once.
type Simulator struct {
	Config   LineConfig
	Sched    *Scheduler
	RNG      *PartitionedRNG
	Machines []*Machine
	Metrics  *MetricsStore
	Cost     *CostModel
	Trace    *trace.SimulationTrace // nil unless tracing is enabled

	rec      multiRecorder
	products []*Product
	wip      int
	ran      bool
}

// NewSimulator validates cfg and builds a ready-to-run replication.
// Configuration problems are reported as *ConfigError before any time advances.
func NewSimulator(cfg LineConfig, opts Options) (*Simulator, error) {
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !trace.IsValidTraceLevel(string(opts.TraceLevel)) {
		return nil, configErrorf("trace_level", "unknown trace level %q", opts.TraceLevel)
	}

	s := &Simulator{
		Config:  cfg,
		Sched:   NewScheduler(),
		RNG:     NewPartitionedRNG(cfg.Seed),
		Metrics: NewMetricsStore(cfg.WarmupTime, cfg.Stations),
		Cost:    NewCostModel(cfg.Costs, cfg.WarmupTime, cfg.Stations),
	}
	s.rec = multiRecorder{s.Metrics, s.Cost}

	if opts.TraceLevel != "" && opts.TraceLevel != trace.TraceLevelNone {
		s.Trace = trace.NewSimulationTrace(opts.TraceLevel)
		names := make([]string, len(cfg.Stations))
		for i, st := range cfg.Stations {
			names[i] = st.Name
		}
		s.rec = append(s.rec, &traceRecorder{st: s.Trace, names: names})
		if opts.TraceLevel == trace.TraceLevelEvents {
			s.Sched.OnFire = func(now float64, seq uint64, kind EventKind) {
				s.Trace.RecordEvent(trace.EventRecord{Clock: now, Seq: seq, Kind: string(kind)})
			}
		}
	}

	s.Machines = make([]*Machine, len(cfg.Stations))
	for i, st := range cfg.Stations {
		m, err := newMachine(st, i, s.Sched, s.rec, s.RNG)
		if err != nil {
			return nil, err
		}
		s.Machines[i] = m
	}
	return s, nil
}

// Run simulates up to SimTime and returns the raw record of the replication.
// A cancelled ctx aborts the run with ErrRunAborted and no record.
func (s *Simulator) Run(ctx context.Context) (*RunRecord, error) {
	if s.ran {
		return nil, fmt.Errorf("simulator already ran")
	}
	s.ran = true

	iat, err := NewArrivalSampler(s.Config)
	if err != nil {
		return nil, configErrorf("INTERARRIVAL_MEAN", "%v", err)
	}
	for _, m := range s.Machines {
		if m.Config.MTBF > 0 {
			fc, err := newFailureCycle(m, s.Sched, s.RNG)
			if err != nil {
				return nil, configErrorf("MACHINES."+m.Name, "%v", err)
			}
			fc.start(fc)
		}
	}
	gen := newArrivalGenerator(s, iat)
	gen.start(gen)
	mon := newMonitor(s)
	mon.start(mon)

	logrus.Debugf("Starting replication: seed=%d, sim_time=%.1f, warmup=%.1f, stations=%d",
		s.Config.Seed, s.Config.SimTime, s.Config.WarmupTime, len(s.Machines))

	if err := s.Sched.RunUntil(ctx, s.Config.SimTime); err != nil {
		return nil, err
	}
	rec := s.finalize()
	logrus.Debugf("Replication finished: seed=%d, events=%d, arrivals=%d, completed=%d",
		s.Config.Seed, rec.EventsFired, rec.Arrivals, len(rec.Completed))
	return rec, nil
}

func (s *Simulator) newProduct(now float64, priority int) *Product {
	p := &Product{
		ID:          fmt.Sprintf("P%d", len(s.products)),
		Seq:         len(s.products),
		Priority:    priority,
		ArrivalTime: now,
		Stages:      make([]StageTimes, 0, len(s.Machines)),
	}
	s.products = append(s.products, p)
	s.wip++
	s.rec.ProductArrived(now, p)
	s.rec.WIPChanged(now, s.wip)
	return p
}

func (s *Simulator) complete(p *Product, now float64) {
	p.CompletionTime = now
	p.Completed = true
	s.wip--
	s.rec.WIPChanged(now, s.wip)
	s.rec.ProductCompleted(now, p)
}

func (s *Simulator) finalize() *RunRecord {
	end := s.Sched.Now()
	s.Metrics.close(end)
	for _, m := range s.Machines {
		m.finalize(end)
	}

	rec := &RunRecord{
		Config:           s.Config,
		Seed:             s.Config.Seed,
		WindowStart:      s.Config.WarmupTime,
		WindowEnd:        end,
		Stations:         make([]StationRecord, len(s.Machines)),
		Products:         s.products,
		Completed:        s.Metrics.Completed,
		Arrivals:         s.Metrics.Arrivals,
		MeasuredArrivals: s.Metrics.MeasuredArrivals,
		CompletedTotal:   s.Metrics.CompletedTotal,
		WIPArea:          s.Metrics.WIP.Area(),
		MaxWIP:           int(s.Metrics.WIP.Max()),
		FinalWIP:         s.wip,
		Series:           s.Metrics.Series,
		Cost:             s.Cost.Breakdown(end),
		EventsFired:      s.Sched.Fired(),
		Trace:            s.Trace,
	}
	for i, m := range s.Machines {
		so := s.Metrics.Stations[i]
		rec.Stations[i] = StationRecord{
			Name:             m.Name,
			Capacity:         m.Capacity,
			BusyTime:         so.Busy.Area(),
			DownTime:         so.Down.Area(),
			QueueArea:        so.Queue.Area(),
			MaxQueue:         int(so.Queue.Max()),
			Waits:            so.Waits,
			ProcessingTimes:  so.ProcessingTimes,
			Arrivals:         so.Arrivals,
			Grants:           so.Grants,
			MeasuredArrivals: so.MeasuredArrivals,
			MeasuredGrants:   so.MeasuredGrants,
			Processed:        m.Processed(),
			Failures:         m.Failures(),
			TotalBusyTime:    m.busyTime,
			TotalDownTime:    m.downTime,
			FinalQueue:       m.QueueLen(),
			FinalHeld:        m.Held(),
		}
	}
	if len(rec.Completed) == 0 {
		rec.InsufficientData = true
		rec.Reason = ErrDegenerateRun.Error()
		logrus.Warnf("seed %d: %s", s.Config.Seed, rec.Reason)
	}
	return rec
}
