package sim

// EventKind names what a scheduled event does. Used for logging and tracing only;
// ordering never depends on it.
type EventKind string

const (
	EventStart EventKind = "start" // a new process takes its first step
	EventWake  EventKind = "wake"  // a timed delay elapsed
	EventGrant EventKind = "grant" // station capacity handed to a waiting process
)

// Event defines the interface for all simulation events.
// Fire is invoked by the Scheduler once the clock reaches the event's time.
type Event interface {
	Kind() EventKind
	Fire(now float64)
}

// wakeEvent resumes a process. It carries the process token observed when it was
// scheduled; if the process has since been suspended again (e.g. preempted by a
// machine failure) the event is stale and does nothing.
type wakeEvent struct {
	kind  EventKind
	proc  Process
	token uint64
}

func (e *wakeEvent) Kind() EventKind { return e.kind }

// Fire resumes the process unless the wake-up has been superseded.
func (e *wakeEvent) Fire(now float64) {
	b := e.proc.base()
	if b.token != e.token || b.state == ProcessDone {
		return
	}
	b.state = ProcessRunning
	e.proc.Resume(now)
}

// FuncEvent adapts a plain function into an Event.
type FuncEvent struct {
	EventKind EventKind
	Fn        func(now float64)
}

func (e FuncEvent) Kind() EventKind { return e.EventKind }

func (e FuncEvent) Fire(now float64) { e.Fn(now) }
