package planner

import "github.com/pkg/errors"

// ErrNoFeasibleTrajectory is returned when every sampled candidate across every lane
// option violates a constraint. The orchestrator recovers with the stop command.
var ErrNoFeasibleTrajectory = errors.New("no feasible trajectory among sampled candidates")

// ErrLaneUnavailable is returned when a lane option is too narrow for the vehicle and
// cannot be sampled.
var ErrLaneUnavailable = errors.New("lane option too narrow for vehicle")
