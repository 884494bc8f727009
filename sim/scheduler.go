package sim

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// ErrRunAborted is returned when a run is cancelled through its context before
// reaching the horizon. Partial results of an aborted run must be discarded.
var ErrRunAborted = errors.New("simulation run aborted")

// ctxPollInterval is how many events are fired between context checks.
const ctxPollInterval = 1024

type scheduledEvent struct {
	at  float64
	seq uint64
	ev  Event
}

// eventHeap implements heap.Interface with deterministic ordering.
// Order by: timestamp → insertion sequence.
type eventHeap []*scheduledEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*scheduledEvent))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return item
}

// Scheduler owns the simulation clock and the pending event queue.
// It is not safe for concurrent use; each replication has its own.
type Scheduler struct {
	now     float64
	queue   eventHeap
	nextSeq uint64
	fired   uint64

	// OnFire, if set, observes every event right before it runs.
	OnFire func(now float64, seq uint64, kind EventKind)
}

// NewScheduler creates a scheduler with the clock at zero.
func NewScheduler() *Scheduler {
	return &Scheduler{queue: make(eventHeap, 0, 64)}
}

// Now returns the current simulation time.
func (s *Scheduler) Now() float64 { return s.now }

// Pending returns the number of events not yet fired.
func (s *Scheduler) Pending() int { return len(s.queue) }

// Fired returns the number of events executed so far.
func (s *Scheduler) Fired() uint64 { return s.fired }

// Schedule inserts ev at now+delay. Events with equal time fire in insertion order.
func (s *Scheduler) Schedule(delay float64, ev Event) {
	if delay < 0 || math.IsNaN(delay) {
		panic(fmt.Sprintf("Schedule: invalid delay %v", delay))
	}
	s.nextSeq++
	heap.Push(&s.queue, &scheduledEvent{at: s.now + delay, seq: s.nextSeq, ev: ev})
}

// RunUntil fires events in time order until the queue is empty or the next event
// lies beyond until. The clock is left at until. Events scheduled exactly at until
// still fire.
func (s *Scheduler) RunUntil(ctx context.Context, until float64) error {
	for len(s.queue) > 0 {
		if s.queue[0].at > until {
			break
		}
		if s.fired%ctxPollInterval == 0 && ctx.Err() != nil {
			logrus.Debugf("[t=%.3f] run aborted after %d events", s.now, s.fired)
			return fmt.Errorf("%w: %v", ErrRunAborted, ctx.Err())
		}
		next := heap.Pop(&s.queue).(*scheduledEvent)
		if next.at < s.now {
			panic(fmt.Sprintf("Clock went backwards: %v < %v", next.at, s.now))
		}
		s.now = next.at
		s.fired++
		if s.OnFire != nil {
			s.OnFire(s.now, next.seq, next.ev.Kind())
		}
		next.ev.Fire(s.now)
	}
	if until > s.now {
		s.now = until
	}
	return nil
}
