package sim

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// lineDocument mirrors the YAML configuration file. Pointer fields distinguish a
// missing required field from an explicit zero. Unknown keys are ignored.
type lineDocument struct {
	SimTime          *float64            `yaml:"SIM_TIME"`
	WarmupTime       float64             `yaml:"WARMUP_TIME"`
	InterarrivalMean *float64            `yaml:"INTERARRIVAL_MEAN"`
	ArrivalProcess   string              `yaml:"ARRIVAL_PROCESS"`
	ArrivalCV        float64             `yaml:"ARRIVAL_CV"`
	MonitorInterval  float64             `yaml:"MONITOR_INTERVAL"`
	MaxArrivals      int                 `yaml:"MAX_ARRIVALS"`
	Seed             *int64              `yaml:"SEED"`
	PriorityClasses  []priorityDocument  `yaml:"PRIORITY_CLASSES"`
	Machines         []stationDocument   `yaml:"MACHINES"`
	Costs            costDocument        `yaml:"COSTS"`
	Bottleneck       *bottleneckDocument `yaml:"BOTTLENECK"`
}

type stationDocument struct {
	Name             *string  `yaml:"name"`
	Capacity         *int     `yaml:"capacity"`
	ProcMean         *float64 `yaml:"proc_mean"`
	ProcDistribution string   `yaml:"proc_distribution"`
	ProcStdDev       float64  `yaml:"proc_std"`
	MTBF             float64  `yaml:"MTBF"`
	MTTR             float64  `yaml:"MTTR"`
	MTTRDistribution string   `yaml:"mttr_distribution"`
	MTTRStdDev       float64  `yaml:"mttr_std"`
	UnitCost         float64  `yaml:"unit_cost"`
	SpeedupCost      float64  `yaml:"speedup_cost"`
	QueueDiscipline  string   `yaml:"queue_discipline"`
}

type priorityDocument struct {
	Priority int     `yaml:"priority"`
	Weight   float64 `yaml:"weight"`
}

type costDocument struct {
	Labor    float64 `yaml:"labor_rate"`
	Energy   float64 `yaml:"energy_rate"`
	Downtime float64 `yaml:"downtime_rate"`
	Holding  float64 `yaml:"holding_rate"`
}

type weightsDocument struct {
	Utilization float64 `yaml:"utilization"`
	Queue       float64 `yaml:"queue"`
	Wait        float64 `yaml:"wait"`
	Variability float64 `yaml:"variability"`
}

type bottleneckDocument struct {
	Weights       *weightsDocument `yaml:"weights"`
	Normalization string           `yaml:"normalization"`
}

// LoadLineConfig reads and validates a YAML line configuration.
func LoadLineConfig(path string) (LineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LineConfig{}, fmt.Errorf("reading line config: %w", err)
	}
	return ParseLineConfig(data)
}

// ParseLineConfig decodes and validates a YAML line configuration.
func ParseLineConfig(data []byte) (LineConfig, error) {
	var doc lineDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return LineConfig{}, fmt.Errorf("parsing line config: %w", err)
	}
	cfg, err := doc.toConfig()
	if err != nil {
		return LineConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return LineConfig{}, err
	}
	return cfg, nil
}

func (d *lineDocument) toConfig() (LineConfig, error) {
	if d.SimTime == nil {
		return LineConfig{}, configErrorf("SIM_TIME", "is required")
	}
	if d.InterarrivalMean == nil {
		return LineConfig{}, configErrorf("INTERARRIVAL_MEAN", "is required")
	}
	if len(d.Machines) == 0 {
		return LineConfig{}, configErrorf("MACHINES", "at least one station is required")
	}
	cfg := LineConfig{
		SimTime:          *d.SimTime,
		WarmupTime:       d.WarmupTime,
		InterarrivalMean: *d.InterarrivalMean,
		ArrivalProcess:   ArrivalProcess(d.ArrivalProcess),
		ArrivalCV:        d.ArrivalCV,
		MonitorInterval:  d.MonitorInterval,
		MaxArrivals:      d.MaxArrivals,
		Costs:            CostRates(d.Costs),
	}
	if d.Seed != nil {
		cfg.Seed = *d.Seed
	} else {
		cfg.Seed = DefaultLineConfig().Seed
		logrus.Debugf("SEED not set, using %d", cfg.Seed)
	}
	for i, m := range d.Machines {
		field := func(name string) string { return fmt.Sprintf("MACHINES[%d].%s", i, name) }
		switch {
		case m.Name == nil:
			return LineConfig{}, configErrorf(field("name"), "is required")
		case m.Capacity == nil:
			return LineConfig{}, configErrorf(field("capacity"), "is required")
		case m.ProcMean == nil:
			return LineConfig{}, configErrorf(field("proc_mean"), "is required")
		}
		cfg.Stations = append(cfg.Stations, StationConfig{
			Name:             *m.Name,
			Capacity:         *m.Capacity,
			ProcMean:         *m.ProcMean,
			ProcDistribution: Distribution(m.ProcDistribution),
			ProcStdDev:       m.ProcStdDev,
			MTBF:             m.MTBF,
			MTTR:             m.MTTR,
			MTTRDistribution: Distribution(m.MTTRDistribution),
			MTTRStdDev:       m.MTTRStdDev,
			UnitCost:         m.UnitCost,
			SpeedupCost:      m.SpeedupCost,
			QueueDiscipline:  QueueDiscipline(m.QueueDiscipline),
		})
	}
	for _, pc := range d.PriorityClasses {
		cfg.PriorityClasses = append(cfg.PriorityClasses, PriorityClass(pc))
	}
	if d.Bottleneck != nil {
		cfg.Bottleneck = BottleneckSettings{Normalization: Normalization(d.Bottleneck.Normalization)}
		if w := d.Bottleneck.Weights; w != nil {
			cfg.Bottleneck.Weights = BottleneckWeights(*w)
			if cfg.Bottleneck.Weights == (BottleneckWeights{}) {
				return LineConfig{}, configErrorf("BOTTLENECK.weights", "at least one weight must be positive")
			}
		}
	}
	return cfg, nil
}
