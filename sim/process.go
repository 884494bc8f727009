package sim

// ProcessState is the suspension state of a cooperative process.
type ProcessState int

const (
	ProcessRunning ProcessState = iota
	ProcessWaitingForTime
	ProcessWaitingForResource
	ProcessDone
)

func (s ProcessState) String() string {
	switch s {
	case ProcessRunning:
		return "running"
	case ProcessWaitingForTime:
		return "waiting-for-time"
	case ProcessWaitingForResource:
		return "waiting-for-resource"
	case ProcessDone:
		return "done"
	}
	return "unknown"
}

// Process is a cooperative unit of execution: the arrival generator, a product
// journey, a machine failure cycle. A process runs until it suspends (sleep or
// resource wait) and is resumed later by a scheduler event. Resume must not block.
type Process interface {
	Name() string
	State() ProcessState
	Resume(now float64)
	base() *procBase
}

// procBase carries the bookkeeping shared by every process. token increments on
// every suspension so that superseded wake-ups can be recognised.
type procBase struct {
	name  string
	state ProcessState
	token uint64
	sched *Scheduler
}

func newProcBase(name string, sched *Scheduler) procBase {
	return procBase{name: name, state: ProcessRunning, sched: sched}
}

func (p *procBase) Name() string        { return p.name }
func (p *procBase) State() ProcessState { return p.state }
func (p *procBase) base() *procBase     { return p }

// start schedules the first step of self at the current time.
func (p *procBase) start(self Process) {
	p.token++
	p.state = ProcessWaitingForTime
	p.sched.Schedule(0, &wakeEvent{kind: EventStart, proc: self, token: p.token})
}

// sleep suspends self for delay time units.
func (p *procBase) sleep(self Process, delay float64) {
	p.token++
	p.state = ProcessWaitingForTime
	p.sched.Schedule(delay, &wakeEvent{kind: EventWake, proc: self, token: p.token})
}

// block suspends self until someone calls grant. Any pending timed wake-up is
// invalidated.
func (p *procBase) block() {
	p.token++
	p.state = ProcessWaitingForResource
}

// grant resumes a blocked process with a zero-delay event so that the grant is
// ordered after whatever the releasing process is still doing at this instant.
func (p *procBase) grant(self Process) {
	p.sched.Schedule(0, &wakeEvent{kind: EventGrant, proc: self, token: p.token})
}

func (p *procBase) finish() {
	p.token++
	p.state = ProcessDone
}
