package sim

import (
	"context"
	"testing"
)

// singleStationLine returns a one-station line with deterministic arrivals and
// processing, so event times can be computed by hand.
func singleStationLine(procMean float64, capacity, arrivals int) LineConfig {
	return LineConfig{
		SimTime:          100,
		InterarrivalMean: 1,
		ArrivalProcess:   ArrivalDeterministic,
		MaxArrivals:      arrivals,
		Seed:             7,
		Stations: []StationConfig{
			{Name: "Press", Capacity: capacity, ProcMean: procMean, ProcDistribution: DistDeterministic},
		},
		Costs: CostRates{Labor: 1, Energy: 0.5, Downtime: 2, Holding: 0.1},
	}
}

// scheduleAt schedules fn at absolute time at on a scheduler still at time zero.
func scheduleAt(s *Scheduler, at float64, fn func(now float64)) {
	s.Schedule(at-s.Now(), FuncEvent{EventKind: EventWake, Fn: fn})
}

func mustRun(t *testing.T, cfg LineConfig, opts Options) *RunRecord {
	t.Helper()
	s, err := NewSimulator(cfg, opts)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	rec, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return rec
}

// probe is a minimal process that takes a unit of a resource, holds it, and
// records when it was granted.
type probe struct {
	procBase
	res     *Resource
	hold    float64
	granted []float64
	phase   int
}

func newProbe(name string, sched *Scheduler, res *Resource, hold float64) *probe {
	return &probe{procBase: newProcBase(name, sched), res: res, hold: hold}
}

func (p *probe) Resume(now float64) {
	switch p.phase {
	case 0:
		p.phase = 1
		if !p.res.Request(p, now) {
			return
		}
		fallthrough
	case 1:
		p.granted = append(p.granted, now)
		p.phase = 2
		p.sleep(p, p.hold)
	case 2:
		p.res.Release(now)
		p.finish()
	}
}
