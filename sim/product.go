// Defines the Product struct that models one unit flowing through the line.
// Tracks arrival time and per-station queue/service timestamps.

package sim

import (
	"fmt"
)

// StageTimes records one product's passage through one station.
type StageTimes struct {
	Station       string  `json:"station"`
	QueueEnter    float64 `json:"queue_enter"`   // joined the station's queue
	Start         float64 `json:"start"`         // capacity granted, processing began
	End           float64 `json:"end"`           // processing finished, capacity released
	Wait          float64 `json:"wait"`          // Start - QueueEnter
	Processing    float64 `json:"processing"`    // sampled processing time (excludes repair pauses)
	Interruptions int     `json:"interruptions"` // failures that paused this unit
}

// Product models a single unit's lifecycle in the simulation. It is owned by the
// station currently holding it and becomes immutable once Completed is set.
type Product struct {
	ID             string
	Seq            int // creation order, 0-based
	Priority       int // higher is served first at priority stations
	ArrivalTime    float64
	Stages         []StageTimes
	CompletionTime float64
	Completed      bool
}

// LeadTime returns completion minus arrival, or 0 for unfinished products.
func (p *Product) LeadTime() float64 {
	if !p.Completed {
		return 0
	}
	return p.CompletionTime - p.ArrivalTime
}

func (p *Product) String() string {
	return fmt.Sprintf("Product: (ID: %s, Arrival: %.3f, Stages: %d, Completed: %v)", p.ID, p.ArrivalTime, len(p.Stages), p.Completed)
}
