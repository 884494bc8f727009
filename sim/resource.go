package sim

import "fmt"

// Resource is a capacitated station: at most Capacity processes hold it at once,
// the rest wait in the order of the station's queue discipline. Capacity released while processes are waiting is
// reserved for the head of the queue immediately and handed over through a
// zero-delay grant event.
type Resource struct {
	Name     string
	Index    int
	Capacity int

	held    int  // units granted and not yet released
	blocked bool // no new grants while set (station down)
	waitQ   WaitQueue

	sched *Scheduler
	rec   Recorder

	requests int // Request calls over the whole run
	grants   int // grants over the whole run
}

func newResource(name string, index, capacity int, discipline QueueDiscipline, sched *Scheduler, rec Recorder) Resource {
	return Resource{
		Name:     name,
		Index:    index,
		Capacity: capacity,
		waitQ:    WaitQueue{Discipline: discipline},
		sched:    sched,
		rec:      rec,
	}
}

// Request asks for one unit of capacity on behalf of p. It returns true when the
// unit is granted immediately; otherwise p is suspended in the wait queue and will
// be resumed by a grant event.
func (r *Resource) Request(p Process, now float64) bool {
	r.requests++
	r.rec.StationArrival(now, r.Index)
	if !r.blocked && r.held < r.Capacity && r.waitQ.Len() == 0 {
		r.held++
		r.grants++
		r.rec.Granted(now, r.Index, 0)
		return true
	}
	p.base().block()
	r.waitQ.Enqueue(p, now)
	r.rec.QueueChanged(now, r.Index, r.waitQ.Len())
	return false
}

// Release returns one unit of capacity and grants it to the next waiter, if any.
func (r *Resource) Release(now float64) {
	if r.held == 0 {
		panic(fmt.Sprintf("Release: station %s has no held capacity", r.Name))
	}
	r.held--
	r.dispatch(now)
}

// dispatch grants free capacity to waiters in queue order.
func (r *Resource) dispatch(now float64) {
	for !r.blocked && r.held < r.Capacity {
		p, enqueuedAt, ok := r.waitQ.Dequeue()
		if !ok {
			return
		}
		r.held++
		r.grants++
		r.rec.QueueChanged(now, r.Index, r.waitQ.Len())
		r.rec.Granted(now, r.Index, now-enqueuedAt)
		p.base().grant(p)
	}
}

func (r *Resource) block() { r.blocked = true }

func (r *Resource) unblock(now float64) {
	r.blocked = false
	r.dispatch(now)
}

// Held returns the number of granted, unreleased units.
func (r *Resource) Held() int { return r.held }

// QueueLen returns the number of waiting processes.
func (r *Resource) QueueLen() int { return r.waitQ.Len() }

// Requests returns the number of acquire attempts over the whole run.
func (r *Resource) Requests() int { return r.requests }

// Grants returns the number of grants issued over the whole run.
func (r *Resource) Grants() int { return r.grants }
