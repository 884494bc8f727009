package sim

import (
	"fmt"
	"math/rand"
)

type failurePhase int

const (
	failurePhaseUp   failurePhase = iota // waiting for the next breakdown
	failurePhaseDown                     // waiting for the repair to finish
)

// failureCycle is the breakdown process of one station: exponential up-times with
// mean MTBF alternate with repairs drawn from the MTTR distribution.
type failureCycle struct {
	procBase
	machine *Machine
	rng     *rand.Rand
	ttf     Sampler
	ttr     Sampler
	phase   failurePhase
	started bool
}

func newFailureCycle(m *Machine, sched *Scheduler, rng *PartitionedRNG) (*failureCycle, error) {
	cfg := m.Config
	ttf, err := NewSampler(DistExponential, cfg.MTBF, 0)
	if err != nil {
		return nil, fmt.Errorf("station %s MTBF: %w", cfg.Name, err)
	}
	ttr, err := NewSampler(cfg.MTTRDistribution, cfg.MTTR, cfg.MTTRStdDev)
	if err != nil {
		return nil, fmt.Errorf("station %s MTTR: %w", cfg.Name, err)
	}
	return &failureCycle{
		procBase: newProcBase("failure:"+cfg.Name, sched),
		machine:  m,
		rng:      rng.ForSubsystem(SubsystemFailure(cfg.Name)),
		ttf:      ttf,
		ttr:      ttr,
	}, nil
}

func (f *failureCycle) Resume(now float64) {
	if !f.started {
		f.started = true
		f.phase = failurePhaseUp
		f.sleep(f, f.ttf.Sample(f.rng))
		return
	}
	switch f.phase {
	case failurePhaseUp:
		f.machine.fail(now)
		f.phase = failurePhaseDown
		f.sleep(f, f.ttr.Sample(f.rng))
	case failurePhaseDown:
		f.machine.repair(now)
		f.phase = failurePhaseUp
		f.sleep(f, f.ttf.Sample(f.rng))
	}
}
