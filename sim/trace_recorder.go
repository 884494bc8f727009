package sim

import "github.com/line-sim/line-sim/sim/trace"

// traceRecorder turns observer callbacks into trace transition records.
type traceRecorder struct {
	st    *trace.SimulationTrace
	names []string
}

func (t *traceRecorder) add(now float64, kind string, station int, productID string, v float64) {
	name := ""
	if station >= 0 {
		name = t.names[station]
	}
	t.st.RecordTransition(trace.TransitionRecord{Clock: now, Kind: kind, Station: name, ProductID: productID, Value: v})
}

func (t *traceRecorder) ProductArrived(now float64, p *Product) {
	t.add(now, "arrival", -1, p.ID, 0)
}

func (t *traceRecorder) StationArrival(now float64, station int) {
	t.add(now, "request", station, "", 0)
}

func (t *traceRecorder) QueueChanged(now float64, station int, length int) {
	t.add(now, "queue", station, "", float64(length))
}

func (t *traceRecorder) Granted(now float64, station int, wait float64) {
	t.add(now, "grant", station, "", wait)
}

func (t *traceRecorder) BusyChanged(now float64, station int, processing int) {
	t.add(now, "busy", station, "", float64(processing))
}

func (t *traceRecorder) DownChanged(now float64, station int, down bool) {
	kind := "up"
	if down {
		kind = "down"
	}
	t.add(now, kind, station, "", 0)
}

func (t *traceRecorder) ProcessingDone(now float64, station int, duration float64) {
	t.add(now, "done", station, "", duration)
}

func (t *traceRecorder) WIPChanged(now float64, wip int) {
	t.add(now, "wip", -1, "", float64(wip))
}

func (t *traceRecorder) ProductCompleted(now float64, p *Product) {
	t.add(now, "complete", -1, p.ID, p.LeadTime())
}
