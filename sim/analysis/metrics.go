package analysis

import (
	"github.com/line-sim/line-sim/sim"
)

// StationMetrics are the measured-window statistics of one station.
type StationMetrics struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`

	// Utilization is busy time per parallel unit over the window, in [0, 1].
	Utilization  float64 `json:"utilization"`
	BusyTime     float64 `json:"busy_time"`
	DownTime     float64 `json:"down_time"`
	Availability float64 `json:"availability"`

	AvgQueue float64 `json:"avg_queue"`
	MaxQueue int     `json:"max_queue"`
	AvgWait  float64 `json:"avg_wait"`

	Wait       Distribution `json:"wait"`
	Processing Distribution `json:"processing"`
	// CycleTimeCV is the coefficient of variation of measured processing times.
	CycleTimeCV float64 `json:"cycle_time_cv"`

	Arrivals          int     `json:"arrivals"`
	Grants            int     `json:"grants"`
	Processed         int     `json:"processed"`
	Failures          int     `json:"failures"`
	ThroughputPerHour float64 `json:"throughput_per_hour"`
}

// LineMetrics are the line-level statistics of the measured window.
type LineMetrics struct {
	Window            float64      `json:"window"`
	Arrivals          int          `json:"arrivals"`
	Completed         int          `json:"completed"`
	Throughput        float64      `json:"throughput"` // completions per minute
	ThroughputPerHour float64      `json:"throughput_per_hour"`
	LeadTime          Distribution `json:"lead_time"`
	AvgWIP            float64      `json:"avg_wip"`
	MaxWIP            int          `json:"max_wip"`
	InsufficientData  bool         `json:"insufficient_data"`
	Reason            string       `json:"reason,omitempty"`
}

// AnalyzeStations derives per-station metrics, in line order.
func AnalyzeStations(rec *sim.RunRecord) []StationMetrics {
	window := rec.Window()
	out := make([]StationMetrics, len(rec.Stations))
	for i, st := range rec.Stations {
		sm := StationMetrics{
			Name:       st.Name,
			Capacity:   st.Capacity,
			BusyTime:   st.BusyTime,
			DownTime:   st.DownTime,
			MaxQueue:   st.MaxQueue,
			Wait:       NewDistribution(st.Waits),
			Processing: NewDistribution(st.ProcessingTimes),
			Arrivals:   st.MeasuredArrivals,
			Grants:     st.MeasuredGrants,
			Processed:  len(st.ProcessingTimes),
			Failures:   st.Failures,
		}
		sm.AvgWait = sm.Wait.Mean
		sm.CycleTimeCV = sm.Processing.CV
		if window > 0 {
			sm.Utilization = st.BusyTime / (window * float64(st.Capacity))
			sm.Availability = 1 - st.DownTime/window
			sm.AvgQueue = st.QueueArea / window
			sm.ThroughputPerHour = float64(sm.Processed) / window * 60
		}
		out[i] = sm
	}
	return out
}

// AnalyzeLine derives line-level metrics.
func AnalyzeLine(rec *sim.RunRecord) LineMetrics {
	window := rec.Window()
	leads := make([]float64, len(rec.Completed))
	for i, p := range rec.Completed {
		leads[i] = p.LeadTime()
	}
	lm := LineMetrics{
		Window:           window,
		Arrivals:         rec.MeasuredArrivals,
		Completed:        len(rec.Completed),
		LeadTime:         NewDistribution(leads),
		MaxWIP:           rec.MaxWIP,
		InsufficientData: rec.InsufficientData,
		Reason:           rec.Reason,
	}
	if window > 0 {
		lm.Throughput = float64(lm.Completed) / window
		lm.ThroughputPerHour = lm.Throughput * 60
		lm.AvgWIP = rec.WIPArea / window
	}
	return lm
}
