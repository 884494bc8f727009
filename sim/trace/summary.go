package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEvents       int
	TotalTransitions  int
	EventsByKind      map[string]int
	FailuresByStation map[string]int
	GrantsByStation   map[string]int
	Completions       int
	LastClock         float64
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		EventsByKind:      make(map[string]int),
		FailuresByStation: make(map[string]int),
		GrantsByStation:   make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalEvents = len(st.Events)
	for _, e := range st.Events {
		summary.EventsByKind[e.Kind]++
		if e.Clock > summary.LastClock {
			summary.LastClock = e.Clock
		}
	}

	summary.TotalTransitions = len(st.Transitions)
	for _, t := range st.Transitions {
		switch t.Kind {
		case "down":
			summary.FailuresByStation[t.Station]++
		case "grant":
			summary.GrantsByStation[t.Station]++
		case "complete":
			summary.Completions++
		}
		if t.Clock > summary.LastClock {
			summary.LastClock = t.Clock
		}
	}
	return summary
}
