package optimize

import (
	"fmt"
	"math"

	"github.com/line-sim/line-sim/sim"
)

// Objective selects how scenarios are scored. Higher is better.
type Objective string

const (
	// ObjectiveThroughputPerCost is throughput / (1 + capital/CostScale).
	ObjectiveThroughputPerCost Objective = "throughput_per_cost"
	// ObjectiveMaxThroughput ignores capital cost.
	ObjectiveMaxThroughput Objective = "max_throughput"
	// ObjectiveWeighted is throughput − Lambda·capital.
	ObjectiveWeighted Objective = "weighted"
)

const (
	DefaultCostScale = 1000.0
	DefaultLambda    = 0.01
)

// ParseObjective validates an objective name; "" selects the default.
func ParseObjective(name string) (Objective, error) {
	switch o := Objective(name); o {
	case "":
		return ObjectiveThroughputPerCost, nil
	case ObjectiveThroughputPerCost, ObjectiveMaxThroughput, ObjectiveWeighted:
		return o, nil
	default:
		return "", fmt.Errorf("unknown objective %q", name)
	}
}

// score evaluates the objective for a mean throughput (per hour) and capital cost.
func score(obj Objective, throughput, capital, costScale, lambda float64) float64 {
	switch obj {
	case ObjectiveMaxThroughput:
		return throughput
	case ObjectiveWeighted:
		return throughput - lambda*capital
	default:
		return throughput / (1 + capital/costScale)
	}
}

// CapitalCost prices the changes of cfg relative to base: UnitCost per added
// parallel machine, plus SpeedupCost per halving of the processing mean,
// prorated linearly. Removing capacity or slowing a station earns nothing back.
func CapitalCost(base, cfg sim.LineConfig) float64 {
	total := 0.0
	for i, st := range cfg.Stations {
		if i >= len(base.Stations) {
			break
		}
		b := base.Stations[i]
		if added := st.Capacity - b.Capacity; added > 0 {
			total += float64(added) * b.UnitCost
		}
		if b.ProcMean > 0 {
			reduction := math.Max(0, (b.ProcMean-st.ProcMean)/b.ProcMean)
			total += 2 * reduction * b.SpeedupCost
		}
	}
	return total
}
