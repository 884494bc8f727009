// Package trace provides state-transition recording for determinism audits and
// debugging. This package has no dependencies on sim/; it stores pure data types.
package trace

// EventRecord captures one fired scheduler event.
type EventRecord struct {
	Clock float64
	Seq   uint64
	Kind  string
}

// TransitionRecord captures one observable state change of the line.
type TransitionRecord struct {
	Clock     float64
	Kind      string // arrival, grant, busy, down, up, done, complete
	Station   string // empty for line-level transitions
	ProductID string // set for arrival and complete
	Value     float64
}
