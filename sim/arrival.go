package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// NewArrivalSampler creates the inter-arrival sampler for a line configuration.
func NewArrivalSampler(cfg LineConfig) (Sampler, error) {
	switch cfg.ArrivalProcess {
	case ArrivalPoisson, "":
		return NewSampler(DistExponential, cfg.InterarrivalMean, 0)
	case ArrivalGamma:
		return NewSampler(DistGamma, cfg.InterarrivalMean, cfg.ArrivalCV)
	case ArrivalDeterministic:
		return NewSampler(DistDeterministic, cfg.InterarrivalMean, 0)
	default:
		return nil, fmt.Errorf("unknown arrival process %q", cfg.ArrivalProcess)
	}
}

// priorityPicker draws product priority classes by weight.
type priorityPicker struct {
	classes []PriorityClass
	total   float64
	rng     *rand.Rand
}

func newPriorityPicker(classes []PriorityClass, rng *PartitionedRNG) *priorityPicker {
	if len(classes) == 0 {
		return nil
	}
	pp := &priorityPicker{classes: classes, rng: rng.ForSubsystem(SubsystemPriority)}
	for _, c := range classes {
		pp.total += c.Weight
	}
	return pp
}

func (pp *priorityPicker) pick() int {
	if pp == nil {
		return 0
	}
	u := pp.rng.Float64() * pp.total
	for _, c := range pp.classes {
		if u < c.Weight {
			return c.Priority
		}
		u -= c.Weight
	}
	// Rounding can leave u just above the last weight.
	for i := len(pp.classes) - 1; i >= 0; i-- {
		if pp.classes[i].Weight > 0 {
			return pp.classes[i].Priority
		}
	}
	return 0
}

// arrivalGenerator repeatedly waits an inter-arrival time, creates a product and
// starts its journey.
type arrivalGenerator struct {
	procBase
	sim      *Simulator
	rng      *rand.Rand
	iat      Sampler
	priority *priorityPicker // nil without priority classes
	limit    int             // 0 = unlimited
	created  int
	started  bool
}

func newArrivalGenerator(sim *Simulator, iat Sampler) *arrivalGenerator {
	return &arrivalGenerator{
		procBase: newProcBase("arrivals", sim.Sched),
		sim:      sim,
		rng:      sim.RNG.ForSubsystem(SubsystemArrivals),
		iat:      iat,
		priority: newPriorityPicker(sim.Config.PriorityClasses, sim.RNG),
		limit:    sim.Config.MaxArrivals,
	}
}

func (a *arrivalGenerator) Resume(now float64) {
	if a.started {
		p := a.sim.newProduct(now, a.priority.pick())
		a.created++
		logrus.Tracef("[t=%.3f] arrival %s (priority %d)", now, p.ID, p.Priority)
		j := newJourney(a.sim, p)
		j.start(j)
	}
	a.started = true
	if a.limit > 0 && a.created >= a.limit {
		a.finish()
		return
	}
	a.sleep(a, a.iat.Sample(a.rng))
}
