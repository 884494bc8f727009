// Tracks line-wide and per-station observations such as:
// queue occupancy, utilization, waits, processing times, WIP and completions.

package sim

// StationObservations holds what MetricsStore saw at one station. Time-weighted
// signals and sample lists cover the measured window only; the run totals cover
// the whole run and exist for conservation checks.
type StationObservations struct {
	Name     string
	Capacity int

	Queue *TimeWeighted // wait-queue length
	Busy  *TimeWeighted // units processing
	Down  *TimeWeighted // 1 while the station is down

	Waits           []float64 // grant - enqueue, for grants in the window
	ProcessingTimes []float64 // sampled processing times, for steps finished in the window

	Arrivals         int // whole run
	Grants           int // whole run
	MeasuredArrivals int
	MeasuredGrants   int
}

// SeriesPoint is one monitor sample.
type SeriesPoint struct {
	Time       float64
	Queues     []int // per station, line order
	TotalQueue int
	WIP        int
	Completed  int // cumulative measured completions
}

// MetricsStore is the append-only ledger of observations for one replication.
// Observations stamped before WarmupTime are dropped from every derived
// statistic; the state they describe is still simulated.
type MetricsStore struct {
	WarmupTime float64
	Stations   []*StationObservations
	WIP        *TimeWeighted

	Arrivals         int // whole run
	MeasuredArrivals int
	CompletedTotal   int        // whole run
	Completed        []*Product // completed at or after WarmupTime, completion order
	Series           []SeriesPoint
}

// NewMetricsStore creates a store for the given stations.
func NewMetricsStore(warmup float64, stations []StationConfig) *MetricsStore {
	ms := &MetricsStore{
		WarmupTime: warmup,
		Stations:   make([]*StationObservations, len(stations)),
		WIP:        NewTimeWeighted(warmup),
	}
	for i, s := range stations {
		ms.Stations[i] = &StationObservations{
			Name:     s.Name,
			Capacity: s.Capacity,
			Queue:    NewTimeWeighted(warmup),
			Busy:     NewTimeWeighted(warmup),
			Down:     NewTimeWeighted(warmup),
		}
	}
	return ms
}

func (ms *MetricsStore) measured(now float64) bool {
	return now >= ms.WarmupTime
}

func (ms *MetricsStore) ProductArrived(now float64, _ *Product) {
	ms.Arrivals++
	if ms.measured(now) {
		ms.MeasuredArrivals++
	}
}

func (ms *MetricsStore) StationArrival(now float64, station int) {
	so := ms.Stations[station]
	so.Arrivals++
	if ms.measured(now) {
		so.MeasuredArrivals++
	}
}

func (ms *MetricsStore) QueueChanged(now float64, station int, length int) {
	ms.Stations[station].Queue.Set(now, float64(length))
}

func (ms *MetricsStore) Granted(now float64, station int, wait float64) {
	so := ms.Stations[station]
	so.Grants++
	if ms.measured(now) {
		so.MeasuredGrants++
		so.Waits = append(so.Waits, wait)
	}
}

func (ms *MetricsStore) BusyChanged(now float64, station int, processing int) {
	ms.Stations[station].Busy.Set(now, float64(processing))
}

func (ms *MetricsStore) DownChanged(now float64, station int, down bool) {
	v := 0.0
	if down {
		v = 1
	}
	ms.Stations[station].Down.Set(now, v)
}

func (ms *MetricsStore) ProcessingDone(now float64, station int, duration float64) {
	if ms.measured(now) {
		so := ms.Stations[station]
		so.ProcessingTimes = append(so.ProcessingTimes, duration)
	}
}

func (ms *MetricsStore) WIPChanged(now float64, wip int) {
	ms.WIP.Set(now, float64(wip))
}

func (ms *MetricsStore) ProductCompleted(now float64, p *Product) {
	ms.CompletedTotal++
	if ms.measured(now) {
		ms.Completed = append(ms.Completed, p)
	}
}

// sample appends a time-series point.
func (ms *MetricsStore) sample(now float64, machines []*Machine, wip int) {
	if !ms.measured(now) {
		return
	}
	pt := SeriesPoint{
		Time:      now,
		Queues:    make([]int, len(machines)),
		WIP:       wip,
		Completed: len(ms.Completed),
	}
	for i, m := range machines {
		pt.Queues[i] = m.QueueLen()
		pt.TotalQueue += pt.Queues[i]
	}
	ms.Series = append(ms.Series, pt)
}

// close integrates every time-weighted signal up to end.
func (ms *MetricsStore) close(end float64) {
	ms.WIP.Close(end)
	for _, so := range ms.Stations {
		so.Queue.Close(end)
		so.Busy.Close(end)
		so.Down.Close(end)
	}
}
