package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// GIVEN two RNGs with the same seed
	rng1 := NewPartitionedRNG(42)
	rng2 := NewPartitionedRNG(42)

	// WHEN drawing from the same subsystem
	for i := 0; i < 5; i++ {
		v1 := rng1.ForSubsystem(SubsystemProcessing("Cutting")).Float64()
		v2 := rng2.ForSubsystem(SubsystemProcessing("Cutting")).Float64()
		// THEN the sequences are identical
		assert.Equal(t, v1, v2, "draw %d", i)
	}
}

func TestPartitionedRNG_SubsystemsAreIsolated(t *testing.T) {
	// GIVEN one RNG where another subsystem is drawn from heavily in between
	a := NewPartitionedRNG(42)
	b := NewPartitionedRNG(42)
	for i := 0; i < 100; i++ {
		b.ForSubsystem(SubsystemFailure("Drilling")).Float64()
	}

	// THEN the arrival stream is unaffected
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.ForSubsystem(SubsystemArrivals).Float64(), b.ForSubsystem(SubsystemArrivals).Float64())
	}
}

func TestPartitionedRNG_DistinctSubsystemsDiffer(t *testing.T) {
	rng := NewPartitionedRNG(42)
	x := rng.ForSubsystem(SubsystemProcessing("Cutting")).Float64()
	y := rng.ForSubsystem(SubsystemProcessing("Drilling")).Float64()
	assert.NotEqual(t, x, y)
}

func TestPartitionedRNG_ForSubsystem_IsCached(t *testing.T) {
	rng := NewPartitionedRNG(1)
	assert.Same(t, rng.ForSubsystem("x"), rng.ForSubsystem("x"))
	assert.Equal(t, int64(1), rng.Seed())
}
