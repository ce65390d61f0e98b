package navigator

import (
	"github.com/montanaflynn/stats"

	"github.com/arcnav/frenetplan/planner"
)

// Diagnostics summarizes the last completed planning cycle for the outbound
// visualization/diagnostics boundary.
type Diagnostics struct {
	Cycle          int
	CandidateCount int
	FeasibleCount  int
	CostMin        float64
	CostMean       float64
	CostMax        float64
	CurrentLane    int
	TargetLane     int
	SelectedLane   int
	Stopped        bool
	LastError      string
}

func summarizeCandidates(diag *Diagnostics, cands []*planner.Candidate) {
	diag.CandidateCount = len(cands)
	var costs []float64
	for _, c := range cands {
		if c.Feasible {
			diag.FeasibleCount++
			costs = append(costs, c.Cost)
		}
	}
	if len(costs) == 0 {
		return
	}
	// stats errors only on empty input, checked above
	diag.CostMin, _ = stats.Min(costs)
	diag.CostMean, _ = stats.Mean(costs)
	diag.CostMax, _ = stats.Max(costs)
}
