package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// MachineState is the failure state of a station.
type MachineState int

const (
	MachineUp MachineState = iota
	MachineDown
)

func (s MachineState) String() string {
	if s == MachineDown {
		return "down"
	}
	return "up"
}

// Machine couples a Resource with processing-time sampling and an optional
// failure/repair cycle. A failure takes the whole station down: every unit in
// process is paused with its remaining time kept, and no capacity is granted
// until the repair completes.
type Machine struct {
	Resource
	Config StationConfig

	state   MachineState
	procRNG *rand.Rand
	proc    Sampler

	active     []*journey // units holding capacity, processing or paused
	processing int        // active units not paused

	busyTime       float64 // cumulative unit-time spent processing, whole run
	downTime       float64 // cumulative time down, whole run
	lastBusyChange float64
	downSince      float64
	failures       int
	processed      int
}

func newMachine(cfg StationConfig, index int, sched *Scheduler, rec Recorder, rng *PartitionedRNG) (*Machine, error) {
	proc, err := NewSampler(cfg.ProcDistribution, cfg.ProcMean, cfg.ProcStdDev)
	if err != nil {
		return nil, fmt.Errorf("station %s processing time: %w", cfg.Name, err)
	}
	return &Machine{
		Resource: newResource(cfg.Name, index, cfg.Capacity, cfg.QueueDiscipline, sched, rec),
		Config:   cfg,
		state:    MachineUp,
		procRNG:  rng.ForSubsystem(SubsystemProcessing(cfg.Name)),
		proc:     proc,
	}, nil
}

// State returns whether the station is up or down.
func (m *Machine) State() MachineState { return m.state }

// Processing returns the number of units actively processing.
func (m *Machine) Processing() int { return m.processing }

// Failures returns how many times the station failed.
func (m *Machine) Failures() int { return m.failures }

// Processed returns how many units finished processing at this station.
func (m *Machine) Processed() int { return m.processed }

func (m *Machine) sampleProcessing() float64 {
	return m.proc.Sample(m.procRNG)
}

func (m *Machine) accrueBusy(now float64) {
	m.busyTime += float64(m.processing) * (now - m.lastBusyChange)
	m.lastBusyChange = now
}

func (m *Machine) setProcessing(now float64, n int) {
	m.accrueBusy(now)
	m.processing = n
	m.rec.BusyChanged(now, m.Index, n)
}

func (m *Machine) beginProcessing(j *journey, now float64) {
	m.active = append(m.active, j)
	m.setProcessing(now, m.processing+1)
}

func (m *Machine) endProcessing(j *journey, now float64, duration float64) {
	for i, a := range m.active {
		if a == j {
			m.active = append(m.active[:i], m.active[i+1:]...)
			break
		}
	}
	m.processed++
	m.setProcessing(now, m.processing-1)
	m.rec.ProcessingDone(now, m.Index, duration)
}

// fail takes the station down, pausing every unit in process.
func (m *Machine) fail(now float64) {
	if m.state == MachineDown {
		return
	}
	logrus.Debugf("[t=%.3f] station %s down (%d in process)", now, m.Name, len(m.active))
	m.state = MachineDown
	m.failures++
	m.downSince = now
	m.block()
	for _, j := range m.active {
		j.pause(now)
	}
	m.setProcessing(now, 0)
	m.rec.DownChanged(now, m.Index, true)
}

// repair brings the station back up, resuming paused units with their remaining
// processing time and granting free capacity to waiters.
func (m *Machine) repair(now float64) {
	if m.state == MachineUp {
		return
	}
	logrus.Debugf("[t=%.3f] station %s repaired", now, m.Name)
	m.state = MachineUp
	m.downTime += now - m.downSince
	for _, j := range m.active {
		j.resumeProcessing(now)
	}
	m.setProcessing(now, len(m.active))
	m.rec.DownChanged(now, m.Index, false)
	m.unblock(now)
}

// finalize closes the cumulative accumulators at the end of the run.
func (m *Machine) finalize(end float64) {
	m.accrueBusy(end)
	if m.state == MachineDown {
		m.downTime += end - m.downSince
		m.downSince = end
	}
}
