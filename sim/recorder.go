package sim

// Recorder observes the state changes produced by a running line. All callbacks
// are invoked synchronously from the event loop with non-decreasing now.
type Recorder interface {
	// ProductArrived fires when a product enters the system.
	ProductArrived(now float64, p *Product)
	// StationArrival fires when a product joins a station's queue or is granted
	// capacity immediately.
	StationArrival(now float64, station int)
	// QueueChanged reports the new wait-queue length of a station.
	QueueChanged(now float64, station int, length int)
	// Granted reports a capacity grant and how long the product waited for it.
	Granted(now float64, station int, wait float64)
	// BusyChanged reports how many units of a station are actively processing.
	BusyChanged(now float64, station int, processing int)
	// DownChanged reports a station failing (down=true) or being repaired.
	DownChanged(now float64, station int, down bool)
	// ProcessingDone reports a finished processing step and its sampled duration.
	ProcessingDone(now float64, station int, duration float64)
	// WIPChanged reports the number of products in the system.
	WIPChanged(now float64, wip int)
	// ProductCompleted fires when a product leaves the last station.
	ProductCompleted(now float64, p *Product)
}

// NopRecorder implements Recorder with no-ops; embed it to observe a subset.
type NopRecorder struct{}

func (NopRecorder) ProductArrived(float64, *Product)     {}
func (NopRecorder) StationArrival(float64, int)          {}
func (NopRecorder) QueueChanged(float64, int, int)       {}
func (NopRecorder) Granted(float64, int, float64)        {}
func (NopRecorder) BusyChanged(float64, int, int)        {}
func (NopRecorder) DownChanged(float64, int, bool)       {}
func (NopRecorder) ProcessingDone(float64, int, float64) {}
func (NopRecorder) WIPChanged(float64, int)              {}
func (NopRecorder) ProductCompleted(float64, *Product)   {}

// multiRecorder fans callbacks out in registration order.
type multiRecorder []Recorder

func (m multiRecorder) ProductArrived(now float64, p *Product) {
	for _, r := range m {
		r.ProductArrived(now, p)
	}
}

func (m multiRecorder) StationArrival(now float64, station int) {
	for _, r := range m {
		r.StationArrival(now, station)
	}
}

func (m multiRecorder) QueueChanged(now float64, station int, length int) {
	for _, r := range m {
		r.QueueChanged(now, station, length)
	}
}

func (m multiRecorder) Granted(now float64, station int, wait float64) {
	for _, r := range m {
		r.Granted(now, station, wait)
	}
}

func (m multiRecorder) BusyChanged(now float64, station int, processing int) {
	for _, r := range m {
		r.BusyChanged(now, station, processing)
	}
}

func (m multiRecorder) DownChanged(now float64, station int, down bool) {
	for _, r := range m {
		r.DownChanged(now, station, down)
	}
}

func (m multiRecorder) ProcessingDone(now float64, station int, duration float64) {
	for _, r := range m {
		r.ProcessingDone(now, station, duration)
	}
}

func (m multiRecorder) WIPChanged(now float64, wip int) {
	for _, r := range m {
		r.WIPChanged(now, wip)
	}
}

func (m multiRecorder) ProductCompleted(now float64, p *Product) {
	for _, r := range m {
		r.ProductCompleted(now, p)
	}
}
