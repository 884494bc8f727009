package sim

import (
	"hash/fnv"
	"math/rand"
)

// === Subsystem Constants ===

const (
	// SubsystemArrivals is the RNG subsystem for inter-arrival sampling.
	// Uses the master seed directly so a seed alone reproduces the arrival stream.
	SubsystemArrivals = "arrivals"

	// SubsystemPriority is the RNG subsystem for drawing product priority classes.
	SubsystemPriority = "priority"
)

// SubsystemProcessing returns the subsystem name for a station's processing times.
func SubsystemProcessing(station string) string {
	return "processing_" + station
}

// SubsystemFailure returns the subsystem name for a station's failure/repair cycle.
func SubsystemFailure(station string) string {
	return "failure_" + station
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
// Adding failures to one station does not shift the processing-time stream of
// any other station, so configurations compared by the optimizer share
// common random numbers wherever their structure overlaps.
//
// Derivation formula:
//   - For SubsystemArrivals: uses the seed directly
//   - For all other subsystems: seed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	seed       int64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:       seed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	derived := p.seed
	if name != SubsystemArrivals {
		derived = p.seed ^ fnv1a64(name)
	}
	rng := rand.New(rand.NewSource(derived))
	p.subsystems[name] = rng
	return rng
}

// Seed returns the master seed.
func (p *PartitionedRNG) Seed() int64 {
	return p.seed
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
