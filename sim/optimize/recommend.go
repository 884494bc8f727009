package optimize

import (
	"fmt"
	"sort"
)

// Priority of a recommendation.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
)

// Recommendation is a human-readable suggestion derived from a search.
type Recommendation struct {
	Priority    Priority `json:"priority"`
	Category    string   `json:"category"`
	Text        string   `json:"text"`
	Impact      string   `json:"impact"`
	Scenario    string   `json:"scenario,omitempty"` // ScenarioResult.ID
	CapitalCost float64  `json:"capital_cost"`
}

// minLeadTimeReductionPct is the smallest lead-time gain worth recommending.
const minLeadTimeReductionPct = 5.0

// Recommend derives suggestions from the ranked, feasible results of out.
func Recommend(out *Outcome) []Recommendation {
	var candidates []*ScenarioResult
	for i := range out.Results {
		if r := &out.Results[i]; r.OK() && r.Feasible {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return []Recommendation{{
			Priority: PriorityMedium,
			Category: "Optimization",
			Text:     "No alternative configurations to evaluate",
			Impact:   "Widen the search axes or relax the capital limit",
		}}
	}

	var recs []Recommendation
	best := maxBy(candidates, func(r *ScenarioResult) float64 { return r.Throughput.Mean })
	if best.ThroughputImprovementPct > 0 {
		recs = append(recs, Recommendation{
			Priority:    PriorityHigh,
			Category:    "Maximum Throughput",
			Text:        fmt.Sprintf("Apply %s", formatParams(best.Params)),
			Impact:      fmt.Sprintf("+%.1f%% throughput (%.2f units/h)", best.ThroughputImprovementPct, best.Throughput.Mean),
			Scenario:    best.ID,
			CapitalCost: best.CapitalCost,
		})
	}

	var invested []*ScenarioResult
	for _, r := range candidates {
		if r.CapitalCost > 0 && r.ThroughputImprovementPct > 0 {
			invested = append(invested, r)
		}
	}
	if len(invested) > 0 {
		roi := maxBy(invested, func(r *ScenarioResult) float64 { return r.CostEffectiveness })
		recs = append(recs, Recommendation{
			Priority:    PriorityMedium,
			Category:    "Best ROI",
			Text:        fmt.Sprintf("Apply %s", formatParams(roi.Params)),
			Impact:      fmt.Sprintf("+%.1f%% throughput for %.0f capital (%.4f %%/unit cost)", roi.ThroughputImprovementPct, roi.CapitalCost, roi.CostEffectiveness),
			Scenario:    roi.ID,
			CapitalCost: roi.CapitalCost,
		})
	}

	if b := out.Baseline; b.OK() && b.Bottleneck != "" {
		recs = append(recs, Recommendation{
			Priority: PriorityHigh,
			Category: "Bottleneck Alert",
			Text:     fmt.Sprintf("%s limits the current line", b.Bottleneck),
			Impact:   fmt.Sprintf("%.1f%% utilization", b.BottleneckUtilization*100),
			Scenario: b.ID,
		})
	}

	fastest := maxBy(candidates, func(r *ScenarioResult) float64 { return r.LeadTimeReductionPct })
	if fastest.LeadTimeReductionPct > minLeadTimeReductionPct {
		recs = append(recs, Recommendation{
			Priority:    PriorityMedium,
			Category:    "Lead Time Reduction",
			Text:        fmt.Sprintf("Apply %s", formatParams(fastest.Params)),
			Impact:      fmt.Sprintf("-%.1f%% lead time (%.1f min)", fastest.LeadTimeReductionPct, fastest.LeadTime.Mean),
			Scenario:    fastest.ID,
			CapitalCost: fastest.CapitalCost,
		})
	}
	return recs
}

// maxBy returns the first element with the largest key.
func maxBy(rs []*ScenarioResult, key func(*ScenarioResult) float64) *ScenarioResult {
	sorted := append([]*ScenarioResult(nil), rs...)
	sort.SliceStable(sorted, func(i, j int) bool { return key(sorted[i]) > key(sorted[j]) })
	return sorted[0]
}
