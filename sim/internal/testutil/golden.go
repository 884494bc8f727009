// Package testutil provides shared test infrastructure for the line simulator:
// the reference line fixture and assertion helpers used across sim/ test packages.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// ReferenceSeed is the seed of the reference scenario.
const ReferenceSeed int64 = 42

// LoadFixture reads a file from the repository testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadFixture(t *testing.T, name string) []byte {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read fixture %s: %v", name, err)
	}
	return data
}

// ReferenceLineYAML returns the four-station reference line document.
func ReferenceLineYAML(t *testing.T) []byte {
	t.Helper()
	return LoadFixture(t, "reference_line.yaml")
}

// ReferenceAxesYAML returns the 80-configuration axes document for the reference line.
func ReferenceAxesYAML(t *testing.T) []byte {
	t.Helper()
	return LoadFixture(t, "reference_axes.yaml")
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertUnitInterval fails unless 0 <= got <= 1.
func AssertUnitInterval(t *testing.T, name string, got float64) {
	t.Helper()
	if got < 0 || got > 1 || math.IsNaN(got) {
		t.Errorf("%s: got %v, want a value in [0, 1]", name, got)
	}
}
