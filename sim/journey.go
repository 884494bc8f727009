package sim

import "github.com/sirupsen/logrus"

type journeyPhase int

const (
	phaseRequest    journeyPhase = iota // about to join the next station's queue
	phaseGranted                        // capacity granted, processing not started
	phaseProcessing                     // holding the station for the processing time
)

// journey is a product's traversal of the line: for every station in order,
// acquire capacity, hold it for the sampled processing time, release it.
type journey struct {
	procBase
	sim     *Simulator
	product *Product
	stage   int
	phase   journeyPhase

	remaining    float64 // processing time still owed at the current station
	segmentStart float64 // when the current uninterrupted processing segment began
}

func newJourney(sim *Simulator, p *Product) *journey {
	return &journey{
		procBase: newProcBase(p.ID, sim.Sched),
		sim:      sim,
		product:  p,
		phase:    phaseRequest,
	}
}

// Priority reports the product's priority to priority-ordered wait queues.
func (j *journey) Priority() int { return j.product.Priority }

func (j *journey) Resume(now float64) {
	for {
		m := j.sim.Machines[j.stage]
		switch j.phase {
		case phaseRequest:
			j.product.Stages = append(j.product.Stages, StageTimes{Station: m.Name, QueueEnter: now})
			j.phase = phaseGranted
			if !m.Request(j, now) {
				return
			}

		case phaseGranted:
			st := j.stageTimes()
			st.Start = now
			st.Wait = now - st.QueueEnter
			st.Processing = m.sampleProcessing()
			j.remaining = st.Processing
			j.phase = phaseProcessing
			m.beginProcessing(j, now)
			if m.state == MachineDown {
				// Granted by a zero-delay event that lost the race with a failure.
				j.pause(now)
				m.setProcessing(now, m.processing-1)
				return
			}
			j.segmentStart = now
			j.sleep(j, j.remaining)
			return

		case phaseProcessing:
			st := j.stageTimes()
			st.End = now
			j.remaining = 0
			m.endProcessing(j, now, st.Processing)
			m.Release(now)
			j.stage++
			if j.stage == len(j.sim.Machines) {
				j.finish()
				j.sim.complete(j.product, now)
				return
			}
			j.phase = phaseRequest
		}
	}
}

// pause suspends processing because the station failed.
func (j *journey) pause(now float64) {
	if j.phase != phaseProcessing {
		return
	}
	if j.state == ProcessWaitingForTime {
		j.remaining -= now - j.segmentStart
		if j.remaining < 0 {
			j.remaining = 0
		}
	}
	j.stageTimes().Interruptions++
	j.block()
	logrus.Tracef("[t=%.3f] %s paused at %s, %.3f remaining", now, j.product.ID, j.sim.Machines[j.stage].Name, j.remaining)
}

// resumeProcessing continues a paused unit after repair.
func (j *journey) resumeProcessing(now float64) {
	if j.phase != phaseProcessing || j.state != ProcessWaitingForResource {
		return
	}
	j.segmentStart = now
	j.sleep(j, j.remaining)
}

func (j *journey) stageTimes() *StageTimes {
	return &j.product.Stages[len(j.product.Stages)-1]
}
