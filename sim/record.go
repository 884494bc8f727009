package sim

import "github.com/line-sim/line-sim/sim/trace"

// StationRecord is the raw outcome of one station. Fields without a Total prefix
// or a whole-run comment cover the measured window only.
type StationRecord struct {
	Name     string
	Capacity int

	BusyTime        float64 // unit-time spent processing
	DownTime        float64
	QueueArea       float64 // ∫ queue length dt
	MaxQueue        int
	Waits           []float64
	ProcessingTimes []float64

	Arrivals         int // whole run
	Grants           int // whole run
	MeasuredArrivals int
	MeasuredGrants   int
	Processed        int // whole run
	Failures         int // whole run
	TotalBusyTime    float64
	TotalDownTime    float64
	FinalQueue       int
	FinalHeld        int
}

// RunRecord is everything one replication produced, before analysis.
type RunRecord struct {
	Config      LineConfig
	Seed        int64
	WindowStart float64
	WindowEnd   float64

	Stations  []StationRecord
	Products  []*Product // every product created, creation order
	Completed []*Product // completed inside the measured window, completion order

	Arrivals         int
	MeasuredArrivals int
	CompletedTotal   int
	WIPArea          float64
	MaxWIP           int
	FinalWIP         int

	Series      []SeriesPoint
	Cost        CostBreakdown
	EventsFired uint64

	InsufficientData bool
	Reason           string

	Trace *trace.SimulationTrace
}

// Window returns the length of the measured window.
func (r *RunRecord) Window() float64 {
	return r.WindowEnd - r.WindowStart
}

// Err returns ErrDegenerateRun for a run without measured completions.
func (r *RunRecord) Err() error {
	if r.InsufficientData {
		return ErrDegenerateRun
	}
	return nil
}
