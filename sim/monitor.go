package sim

// monitor samples queue lengths, WIP and cumulative completions at a fixed
// interval. Samples before the warm-up cutoff are not stored.
type monitor struct {
	procBase
	sim      *Simulator
	interval float64
}

func newMonitor(sim *Simulator) *monitor {
	return &monitor{
		procBase: newProcBase("monitor", sim.Sched),
		sim:      sim,
		interval: sim.Config.EffectiveMonitorInterval(),
	}
}

func (m *monitor) Resume(now float64) {
	if now > 0 {
		m.sim.Metrics.sample(now, m.sim.Machines, m.sim.wip)
	}
	m.sleep(m, m.interval)
}
