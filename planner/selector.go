package planner

// LanePreference arbitrates between per-lane winners. best maps lane option id to
// that option's minimum-cost feasible candidate; options with no feasible candidate
// are absent. Returning nil defers to the globally cheapest feasible candidate.
type LanePreference func(best map[int]*Candidate, currentLane, targetLane int) *Candidate

// TargetThenCurrentPreference is the default arbitration policy: prefer the option
// matching the target lane, fall back to the current lane, otherwise defer to the
// global minimum.
func TargetThenCurrentPreference(best map[int]*Candidate, currentLane, targetLane int) *Candidate {
	if c, ok := best[targetLane]; ok {
		return c
	}
	if c, ok := best[currentLane]; ok {
		return c
	}
	return nil
}

// Selector picks the winner among evaluated candidates.
type Selector struct {
	preference LanePreference
}

// NewSelector returns a selector using the given preference policy, or
// TargetThenCurrentPreference when nil.
func NewSelector(preference LanePreference) *Selector {
	if preference == nil {
		preference = TargetThenCurrentPreference
	}
	return &Selector{preference: preference}
}

// Select returns the minimum-cost feasible candidate per lane option arbitrated by
// the preference policy. Cost ties within an option resolve to the earlier candidate
// in sampling order, so repeated calls with identical inputs return the same winner.
// Returns ErrNoFeasibleTrajectory when no option has a feasible candidate.
func (s *Selector) Select(cands []*Candidate, currentLane, targetLane int) (*Candidate, error) {
	best := map[int]*Candidate{}
	var global *Candidate
	for _, c := range cands {
		if !c.Feasible {
			continue
		}
		if cur, ok := best[c.LaneID]; !ok || c.Cost < cur.Cost {
			best[c.LaneID] = c
		}
		if global == nil || c.Cost < global.Cost {
			global = c
		}
	}
	if global == nil {
		return nil, ErrNoFeasibleTrajectory
	}
	if winner := s.preference(best, currentLane, targetLane); winner != nil {
		return winner, nil
	}
	return global, nil
}
