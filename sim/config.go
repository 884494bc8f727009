package sim

import (
	"fmt"
	"math"
)

// DefaultMonitorInterval is the spacing of time-series samples when none is configured.
const DefaultMonitorInterval = 5.0

// StationConfig describes one capacitated station of the line.
type StationConfig struct {
	Name             string          // unique station name (e.g., "Cutting")
	Capacity         int             // parallel identical machines, >= 1
	ProcMean         float64         // mean processing time per unit, > 0
	ProcDistribution Distribution    // exponential (default), normal, deterministic
	ProcStdDev       float64         // normal distribution only
	MTBF             float64         // mean time between failures; 0 = never fails
	MTTR             float64         // mean time to repair, required when MTBF > 0
	MTTRDistribution Distribution    // repair duration family, exponential by default
	MTTRStdDev       float64         // normal distribution only
	UnitCost         float64         // capital cost of one additional parallel machine
	SpeedupCost      float64         // capital cost of halving ProcMean (prorated linearly)
	QueueDiscipline  QueueDiscipline // fifo (default) or priority
}

// CostRates groups the operating cost rates, all per simulated time unit.
type CostRates struct {
	Labor    float64 // per staffed machine (capacity unit) per time unit
	Energy   float64 // per busy machine per time unit
	Downtime float64 // per down station per time unit
	Holding  float64 // per product in system per time unit
}

// Normalization selects how bottleneck criteria are scaled across stations.
type Normalization string

const (
	NormalizeMinMax Normalization = "minmax"
	NormalizeMax    Normalization = "max"
	NormalizeZScore Normalization = "zscore"
)

// BottleneckWeights are the non-negative weights of the bottleneck score.
type BottleneckWeights struct {
	Utilization float64
	Queue       float64
	Wait        float64
	Variability float64 // cycle-time coefficient of variation, off by default
}

// DefaultBottleneckWeights returns the 0.4/0.3/0.3 utilization/queue/wait split.
func DefaultBottleneckWeights() BottleneckWeights {
	return BottleneckWeights{Utilization: 0.4, Queue: 0.3, Wait: 0.3}
}

// BottleneckSettings configures bottleneck scoring. Zero-value Weights select
// DefaultBottleneckWeights; a YAML weights block must set at least one weight.
type BottleneckSettings struct {
	Weights       BottleneckWeights
	Normalization Normalization
}

// ArrivalProcess selects the inter-arrival time distribution.
type ArrivalProcess string

const (
	ArrivalPoisson       ArrivalProcess = "poisson"
	ArrivalGamma         ArrivalProcess = "gamma"
	ArrivalDeterministic ArrivalProcess = "deterministic"
)

// PriorityClass is one product class of a priority mix. Each arriving product
// draws its class with probability proportional to Weight.
type PriorityClass struct {
	Priority int
	Weight   float64
}

// LineConfig is the complete description of one simulated line.
// Times are in minutes.
type LineConfig struct {
	SimTime          float64
	WarmupTime       float64
	InterarrivalMean float64
	ArrivalProcess   ArrivalProcess
	ArrivalCV        float64 // gamma arrivals only
	MonitorInterval  float64 // 0 = DefaultMonitorInterval
	MaxArrivals      int     // 0 = unlimited
	Seed             int64
	PriorityClasses  []PriorityClass // empty = every product has priority 0
	Stations         []StationConfig
	Costs            CostRates
	Bottleneck       BottleneckSettings
}

// DefaultLineConfig returns the reference four-station line.
func DefaultLineConfig() LineConfig {
	return LineConfig{
		SimTime:          8 * 60,
		WarmupTime:       0,
		InterarrivalMean: 2.0,
		ArrivalProcess:   ArrivalPoisson,
		MonitorInterval:  DefaultMonitorInterval,
		Seed:             42,
		Stations: []StationConfig{
			{Name: "Cutting", Capacity: 1, ProcMean: 3.0, ProcDistribution: DistExponential, UnitCost: 150, SpeedupCost: 200},
			{Name: "Drilling", Capacity: 1, ProcMean: 4.5, ProcDistribution: DistExponential, UnitCost: 120, SpeedupCost: 180},
			{Name: "Assembly", Capacity: 2, ProcMean: 6.0, ProcDistribution: DistExponential, UnitCost: 200, SpeedupCost: 250},
			{Name: "Painting", Capacity: 1, ProcMean: 2.5, ProcDistribution: DistExponential, UnitCost: 100, SpeedupCost: 150},
		},
		Costs: CostRates{
			Labor:    0.5,
			Energy:   0.2,
			Downtime: 2.0,
			Holding:  0.05,
		},
		Bottleneck: BottleneckSettings{
			Weights:       DefaultBottleneckWeights(),
			Normalization: NormalizeMinMax,
		},
	}
}

// Clone returns a deep copy.
func (c LineConfig) Clone() LineConfig {
	out := c
	out.Stations = make([]StationConfig, len(c.Stations))
	copy(out.Stations, c.Stations)
	if c.PriorityClasses != nil {
		out.PriorityClasses = append([]PriorityClass(nil), c.PriorityClasses...)
	}
	return out
}

// StationIndex returns the position of the named station, or -1.
func (c LineConfig) StationIndex(name string) int {
	for i, s := range c.Stations {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// MeasuredWindow returns the length of the post-warm-up interval.
func (c LineConfig) MeasuredWindow() float64 {
	return c.SimTime - c.WarmupTime
}

// EffectiveMonitorInterval returns the sampling interval in use.
func (c LineConfig) EffectiveMonitorInterval() float64 {
	if c.MonitorInterval <= 0 {
		return DefaultMonitorInterval
	}
	return c.MonitorInterval
}

// Validate checks the configuration and fills canonical defaults for empty
// enumerations. It returns a *ConfigError describing the first problem found.
func (c *LineConfig) Validate() error {
	if !finitePositive(c.SimTime) {
		return configErrorf("SIM_TIME", "must be positive, got %v", c.SimTime)
	}
	if c.WarmupTime < 0 || math.IsNaN(c.WarmupTime) {
		return configErrorf("WARMUP_TIME", "must be >= 0, got %v", c.WarmupTime)
	}
	if c.WarmupTime >= c.SimTime {
		return configErrorf("WARMUP_TIME", "must be less than SIM_TIME (%v), got %v", c.SimTime, c.WarmupTime)
	}
	if !finitePositive(c.InterarrivalMean) {
		return configErrorf("INTERARRIVAL_MEAN", "must be positive, got %v", c.InterarrivalMean)
	}
	switch c.ArrivalProcess {
	case "":
		c.ArrivalProcess = ArrivalPoisson
	case ArrivalPoisson, ArrivalDeterministic:
	case ArrivalGamma:
		if !finitePositive(c.ArrivalCV) {
			return configErrorf("ARRIVAL_CV", "gamma arrivals require a positive cv, got %v", c.ArrivalCV)
		}
	default:
		return configErrorf("ARRIVAL_PROCESS", "unknown arrival process %q", c.ArrivalProcess)
	}
	if c.MonitorInterval < 0 {
		return configErrorf("MONITOR_INTERVAL", "must be >= 0, got %v", c.MonitorInterval)
	}
	if c.MaxArrivals < 0 {
		return configErrorf("MAX_ARRIVALS", "must be >= 0, got %d", c.MaxArrivals)
	}
	if err := validatePriorityClasses(c.PriorityClasses); err != nil {
		return err
	}
	if len(c.Stations) == 0 {
		return configErrorf("MACHINES", "at least one station is required")
	}
	seen := make(map[string]bool, len(c.Stations))
	for i := range c.Stations {
		if err := c.Stations[i].validate(i); err != nil {
			return err
		}
		if seen[c.Stations[i].Name] {
			return configErrorf(fmt.Sprintf("MACHINES[%d].name", i), "duplicate station name %q", c.Stations[i].Name)
		}
		seen[c.Stations[i].Name] = true
	}
	if err := c.Costs.validate(); err != nil {
		return err
	}
	return c.Bottleneck.validate()
}

func (s *StationConfig) validate(i int) error {
	field := func(name string) string { return fmt.Sprintf("MACHINES[%d].%s", i, name) }
	if s.Name == "" {
		return configErrorf(field("name"), "is required")
	}
	if s.Capacity < 1 {
		return configErrorf(field("capacity"), "must be >= 1, got %d", s.Capacity)
	}
	if !finitePositive(s.ProcMean) {
		return configErrorf(field("proc_mean"), "must be positive, got %v", s.ProcMean)
	}
	d, err := ParseDistribution(string(s.ProcDistribution))
	if err != nil || d == DistGamma {
		return configErrorf(field("proc_distribution"), "unsupported distribution %q", s.ProcDistribution)
	}
	s.ProcDistribution = d
	if s.ProcStdDev < 0 {
		return configErrorf(field("proc_std"), "must be >= 0, got %v", s.ProcStdDev)
	}
	if s.MTBF < 0 || math.IsNaN(s.MTBF) {
		return configErrorf(field("MTBF"), "must be >= 0, got %v", s.MTBF)
	}
	if s.MTBF > 0 && !finitePositive(s.MTTR) {
		return configErrorf(field("MTTR"), "must be positive when MTBF is set, got %v", s.MTTR)
	}
	if s.MTTR < 0 {
		return configErrorf(field("MTTR"), "must be >= 0, got %v", s.MTTR)
	}
	md, err := ParseDistribution(string(s.MTTRDistribution))
	if err != nil || md == DistGamma {
		return configErrorf(field("mttr_distribution"), "unsupported distribution %q", s.MTTRDistribution)
	}
	s.MTTRDistribution = md
	if s.MTTRStdDev < 0 {
		return configErrorf(field("mttr_std"), "must be >= 0, got %v", s.MTTRStdDev)
	}
	if s.UnitCost < 0 {
		return configErrorf(field("unit_cost"), "must be >= 0, got %v", s.UnitCost)
	}
	if s.SpeedupCost < 0 {
		return configErrorf(field("speedup_cost"), "must be >= 0, got %v", s.SpeedupCost)
	}
	switch s.QueueDiscipline {
	case "":
		s.QueueDiscipline = DisciplineFIFO
	case DisciplineFIFO, DisciplinePriority:
	default:
		return configErrorf(field("queue_discipline"), "unknown queue discipline %q", s.QueueDiscipline)
	}
	return nil
}

func validatePriorityClasses(classes []PriorityClass) error {
	total := 0.0
	for i, pc := range classes {
		if pc.Weight < 0 || math.IsNaN(pc.Weight) || math.IsInf(pc.Weight, 0) {
			return configErrorf(fmt.Sprintf("PRIORITY_CLASSES[%d].weight", i), "must be finite and >= 0, got %v", pc.Weight)
		}
		total += pc.Weight
	}
	if len(classes) > 0 && total <= 0 {
		return configErrorf("PRIORITY_CLASSES", "at least one weight must be positive")
	}
	return nil
}

func (r CostRates) validate() error {
	rates := []struct {
		name string
		v    float64
	}{
		{"COSTS.labor_rate", r.Labor},
		{"COSTS.energy_rate", r.Energy},
		{"COSTS.downtime_rate", r.Downtime},
		{"COSTS.holding_rate", r.Holding},
	}
	for _, rate := range rates {
		if rate.v < 0 || math.IsNaN(rate.v) {
			return configErrorf(rate.name, "must be >= 0, got %v", rate.v)
		}
	}
	return nil
}

func (b *BottleneckSettings) validate() error {
	w := b.Weights
	if w == (BottleneckWeights{}) {
		b.Weights = DefaultBottleneckWeights()
		w = b.Weights
	}
	weights := []struct {
		name string
		v    float64
	}{
		{"utilization", w.Utilization}, {"queue", w.Queue}, {"wait", w.Wait}, {"variability", w.Variability},
	}
	for _, wt := range weights {
		if wt.v < 0 || math.IsNaN(wt.v) {
			return configErrorf("BOTTLENECK.weights."+wt.name, "must be >= 0, got %v", wt.v)
		}
	}
	switch b.Normalization {
	case "":
		b.Normalization = NormalizeMinMax
	case NormalizeMinMax, NormalizeMax, NormalizeZScore:
	default:
		return configErrorf("BOTTLENECK.normalization", "unknown normalization %q", b.Normalization)
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
