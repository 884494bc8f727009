package sim

// CostBreakdown is the operating cost of the measured window.
type CostBreakdown struct {
	Labor    float64 `json:"labor"`
	Energy   float64 `json:"energy"`
	Downtime float64 `json:"downtime"`
	Holding  float64 `json:"holding"`
	Total    float64 `json:"total"`
	PerUnit  float64 `json:"per_unit"` // Total / completed products; 0 when nothing completed
}

// CostModel accumulates operating cost from the same observer callbacks that
// feed the MetricsStore. Labor accrues for every staffed machine over the whole
// window; energy only while processing; downtime while a station is down;
// holding for every product in the system.
type CostModel struct {
	NopRecorder
	Rates CostRates

	warmup    float64
	staffed   int
	busy      []*TimeWeighted
	down      []*TimeWeighted
	wip       *TimeWeighted
	completed int
}

// NewCostModel creates a cost model for the given stations.
func NewCostModel(rates CostRates, warmup float64, stations []StationConfig) *CostModel {
	cm := &CostModel{
		Rates:  rates,
		warmup: warmup,
		busy:   make([]*TimeWeighted, len(stations)),
		down:   make([]*TimeWeighted, len(stations)),
		wip:    NewTimeWeighted(warmup),
	}
	for i, s := range stations {
		cm.staffed += s.Capacity
		cm.busy[i] = NewTimeWeighted(warmup)
		cm.down[i] = NewTimeWeighted(warmup)
	}
	return cm
}

func (cm *CostModel) BusyChanged(now float64, station int, processing int) {
	cm.busy[station].Set(now, float64(processing))
}

func (cm *CostModel) DownChanged(now float64, station int, down bool) {
	v := 0.0
	if down {
		v = 1
	}
	cm.down[station].Set(now, v)
}

func (cm *CostModel) WIPChanged(now float64, wip int) {
	cm.wip.Set(now, float64(wip))
}

func (cm *CostModel) ProductCompleted(now float64, _ *Product) {
	if now >= cm.warmup {
		cm.completed++
	}
}

// Breakdown closes the accumulators at end and returns the window's cost.
func (cm *CostModel) Breakdown(end float64) CostBreakdown {
	window := end - cm.warmup
	if window < 0 {
		window = 0
	}
	var busy, down float64
	for i := range cm.busy {
		cm.busy[i].Close(end)
		cm.down[i].Close(end)
		busy += cm.busy[i].Area()
		down += cm.down[i].Area()
	}
	cm.wip.Close(end)

	cb := CostBreakdown{
		Labor:    cm.Rates.Labor * window * float64(cm.staffed),
		Energy:   cm.Rates.Energy * busy,
		Downtime: cm.Rates.Downtime * down,
		Holding:  cm.Rates.Holding * cm.wip.Area(),
	}
	cb.Total = cb.Labor + cb.Energy + cb.Downtime + cb.Holding
	if cm.completed > 0 {
		cb.PerUnit = cb.Total / float64(cm.completed)
	}
	return cb
}
