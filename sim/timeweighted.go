package sim

// TimeWeighted integrates a piecewise-constant signal over time, counting only
// the part of the timeline at or after a cutoff. The state before the cutoff is
// still tracked so that the value in force when measurement starts is correct.
type TimeWeighted struct {
	cutoff float64
	last   float64
	value  float64
	area   float64
	max    float64
}

// NewTimeWeighted creates an accumulator that ignores time before cutoff.
func NewTimeWeighted(cutoff float64) *TimeWeighted {
	return &TimeWeighted{cutoff: cutoff}
}

func (tw *TimeWeighted) advance(now float64) {
	start := tw.last
	if start < tw.cutoff {
		start = tw.cutoff
	}
	if now > start {
		tw.area += tw.value * (now - start)
		if tw.value > tw.max {
			tw.max = tw.value
		}
	}
	if now > tw.last {
		tw.last = now
	}
}

// Set changes the signal value at now.
func (tw *TimeWeighted) Set(now, v float64) {
	tw.advance(now)
	tw.value = v
	if now >= tw.cutoff && v > tw.max {
		tw.max = v
	}
}

// Close integrates up to end. Further Set calls after Close are not expected.
func (tw *TimeWeighted) Close(end float64) {
	tw.advance(end)
}

// Area returns the measured integral.
func (tw *TimeWeighted) Area() float64 { return tw.area }

// Max returns the largest value observed in the measured window.
func (tw *TimeWeighted) Max() float64 { return tw.max }

// Value returns the current signal value.
func (tw *TimeWeighted) Value() float64 { return tw.value }

// Mean returns Area divided by the window length, or 0 for an empty window.
func (tw *TimeWeighted) Mean(window float64) float64 {
	if window <= 0 {
		return 0
	}
	return tw.area / window
}
