package planner

import (
	"github.com/arcnav/frenetplan/frenet"
	"github.com/arcnav/frenetplan/trajectory"
)

// Lane option identifiers. Keep is the ego lane; Left and Right are the adjacent
// lanes relative to the direction of travel.
const (
	LaneRight = -1
	LaneKeep  = 0
	LaneLeft  = 1
)

// Candidate is one sampled trajectory: Frenet states over a fixed time grid realized
// by a quintic lateral and quartic longitudinal polynomial, plus the derived
// Cartesian path, cost, and feasibility verdict. Infeasible candidates are kept for
// diagnostics but excluded from selection.
type Candidate struct {
	LaneID     int
	LaneCenter float64 // lateral offset of the lane option's centerline

	TargetOffset float64 // terminal lateral offset this candidate aims for
	TargetSpeed  float64 // terminal longitudinal speed this candidate aims for
	Horizon      float64 // seconds

	Times  []float64
	States []frenet.State
	Lat    *frenet.Quintic
	Lon    *frenet.Quartic

	Path          trajectory.Path
	Cost          float64
	Feasible      bool
	Infeasibility error
}

// Terminal returns the candidate's final Frenet state.
func (c *Candidate) Terminal() frenet.State {
	return c.States[len(c.States)-1]
}
