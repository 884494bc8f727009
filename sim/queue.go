// Implements the WaitQueue, which holds the processes waiting for station capacity.

package sim

import (
	"fmt"
	"sort"
	"strings"
)

// QueueDiscipline selects the order in which a station serves its waiters.
type QueueDiscipline string

const (
	// DisciplineFIFO serves waiters in enqueue order.
	DisciplineFIFO QueueDiscipline = "fifo"
	// DisciplinePriority serves the highest product priority first, FIFO within
	// a priority level.
	DisciplinePriority QueueDiscipline = "priority"
)

// Prioritized is implemented by processes that carry a priority. Higher values
// are served first under DisciplinePriority; other processes count as 0.
type Prioritized interface {
	Priority() int
}

func priorityOf(p Process) int {
	if pp, ok := p.(Prioritized); ok {
		return pp.Priority()
	}
	return 0
}

type waitEntry struct {
	proc       Process
	enqueuedAt float64
	priority   int
}

// WaitQueue represents the queue of processes waiting to acquire a Resource.
// The zero value is a FIFO queue.
type WaitQueue struct {
	Discipline QueueDiscipline
	queue      []waitEntry
}

// Enqueue adds a process to the wait queue. Under DisciplinePriority it is placed
// behind every waiter of equal or higher priority.
func (wq *WaitQueue) Enqueue(p Process, now float64) {
	e := waitEntry{proc: p, enqueuedAt: now, priority: priorityOf(p)}
	if wq.Discipline != DisciplinePriority {
		wq.queue = append(wq.queue, e)
		return
	}
	// The queue stays sorted by priority, descending.
	i := sort.Search(len(wq.queue), func(k int) bool { return wq.queue[k].priority < e.priority })
	wq.queue = append(wq.queue, waitEntry{})
	copy(wq.queue[i+1:], wq.queue[i:])
	wq.queue[i] = e
}

func (wq *WaitQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, e := range wq.queue {
		sb.WriteString(fmt.Sprintf("%s@%.3f", e.proc.Name(), e.enqueuedAt))
		if i < len(wq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of waiting processes.
func (wq *WaitQueue) Len() int {
	return len(wq.queue)
}

// Peek returns the process at the front of the queue without removing it.
// Returns nil if the queue is empty.
func (wq *WaitQueue) Peek() Process {
	if len(wq.queue) == 0 {
		return nil
	}
	return wq.queue[0].proc
}

// Dequeue removes the front entry, returning the process and its enqueue time.
func (wq *WaitQueue) Dequeue() (Process, float64, bool) {
	if len(wq.queue) == 0 {
		return nil, 0, false
	}
	head := wq.queue[0]
	wq.queue[0] = waitEntry{}
	wq.queue = wq.queue[1:]
	return head.proc, head.enqueuedAt, true
}
