package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWaitQueue_Dequeue_IsFIFOWithEnqueueTimes(t *testing.T) {
	// GIVEN a queue with processes [A, B] enqueued at 1 and 2
	s := NewScheduler()
	wq := &WaitQueue{}
	a := newProbe("A", s, nil, 0)
	b := newProbe("B", s, nil, 0)
	wq.Enqueue(a, 1)
	wq.Enqueue(b, 2)

	// WHEN both are dequeued
	first, at1, ok1 := wq.Dequeue()
	second, at2, ok2 := wq.Dequeue()
	_, _, ok3 := wq.Dequeue()

	// THEN they come out in arrival order with their enqueue times
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.False(t, ok3)
	assert.Equal(t, Process(a), first)
	assert.Equal(t, Process(b), second)
	assert.Equal(t, 1.0, at1)
	assert.Equal(t, 2.0, at2)
}

func TestWaitQueue_Peek_DoesNotRemove(t *testing.T) {
	s := NewScheduler()
	wq := &WaitQueue{}
	assert.Nil(t, wq.Peek())

	a := newProbe("A", s, nil, 0)
	wq.Enqueue(a, 0)

	assert.Equal(t, Process(a), wq.Peek())
	assert.Equal(t, 1, wq.Len())
	assert.Equal(t, "[A@0.000]", wq.String())
}

type prioritizedProbe struct {
	*probe
	priority int
}

func (p prioritizedProbe) Priority() int { return p.priority }

func TestWaitQueue_PriorityDiscipline_HighestFirstThenFIFO(t *testing.T) {
	// GIVEN a priority queue receiving low, high, low, high in that order
	s := NewScheduler()
	wq := &WaitQueue{Discipline: DisciplinePriority}
	low1 := prioritizedProbe{newProbe("low1", s, nil, 0), 0}
	high1 := prioritizedProbe{newProbe("high1", s, nil, 0), 2}
	low2 := prioritizedProbe{newProbe("low2", s, nil, 0), 0}
	high2 := prioritizedProbe{newProbe("high2", s, nil, 0), 2}
	mid := newProbe("plain", s, nil, 0) // no priority, counts as 0
	wq.Enqueue(low1, 1)
	wq.Enqueue(high1, 2)
	wq.Enqueue(low2, 3)
	wq.Enqueue(high2, 4)
	wq.Enqueue(mid, 5)

	// WHEN drained
	var order []string
	var times []float64
	for wq.Len() > 0 {
		p, at, _ := wq.Dequeue()
		order = append(order, p.Name())
		times = append(times, at)
	}

	// THEN higher priorities come first and equal priorities keep enqueue order
	assert.Equal(t, []string{"high1", "high2", "low1", "low2", "plain"}, order)
	assert.Equal(t, []float64{2, 4, 1, 3, 5}, times)
}

func TestWaitQueue_ZeroValue_IgnoresPriority(t *testing.T) {
	s := NewScheduler()
	wq := &WaitQueue{}
	wq.Enqueue(prioritizedProbe{newProbe("low", s, nil, 0), 0}, 1)
	wq.Enqueue(prioritizedProbe{newProbe("high", s, nil, 0), 5}, 2)

	first, _, _ := wq.Dequeue()
	assert.Equal(t, "low", first.Name())
}
