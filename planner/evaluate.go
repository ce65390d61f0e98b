package planner

import (
	"context"
	"math"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/arcnav/frenetplan/frenet"
	"github.com/arcnav/frenetplan/refpath"
	"github.com/arcnav/frenetplan/utils"
	"github.com/arcnav/frenetplan/vehicle"
)

// Evaluator converts candidates to Cartesian paths, checks them against kinematic
// limits and obstacle clearance at every sample, and assigns the scalar cost. No
// candidate's evaluation depends on another, so candidates are evaluated in parallel.
type Evaluator struct {
	opts      Options
	halfWidth float64
	logger    golog.Logger
}

// NewEvaluator validates the options and returns an evaluator for the given vehicle width.
func NewEvaluator(opts Options, vehicleWidth float64, logger golog.Logger) (*Evaluator, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid evaluator options")
	}
	if vehicleWidth <= 0 {
		return nil, errors.Errorf("vehicle width must be positive, got %f", vehicleWidth)
	}
	return &Evaluator{opts: opts, halfWidth: vehicleWidth / 2, logger: logger}, nil
}

// Evaluate scores every candidate in place. prev is the previous cycle's winner used
// by the consistency cost; it may be nil. Candidates that fail any check are marked
// infeasible with the aggregated violations retained for diagnostics.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	cands []*Candidate,
	ref *refpath.ReferencePath,
	obstacles []vehicle.Obstacle,
	prev *Candidate,
) error {
	err := utils.GroupWorkParallel(ctx, len(cands), func(from, to int) error {
		for i := from; i < to; i++ {
			e.evaluateOne(cands[i], ref, obstacles, prev)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "evaluating candidates")
	}
	feasible := 0
	for _, c := range cands {
		if c.Feasible {
			feasible++
		}
	}
	e.logger.Debugf("evaluated %d candidates, %d feasible", len(cands), feasible)
	return nil
}

func (e *Evaluator) evaluateOne(c *Candidate, ref *refpath.ReferencePath, obstacles []vehicle.Obstacle, prev *Candidate) {
	path, err := frenet.ToCartesian(c.States, ref)
	if err != nil {
		c.Feasible = false
		c.Infeasibility = err
		c.Cost = e.cost(c, prev)
		return
	}
	c.Path = path

	var violations error
	for _, st := range c.States {
		if v := math.Hypot(st.SDot, st.DDot); v > e.opts.MaxSpeed {
			violations = multierr.Append(violations, errors.Errorf("speed %.2f exceeds limit %.2f", v, e.opts.MaxSpeed))
			break
		}
	}
	for _, st := range c.States {
		if a := math.Hypot(st.SDDot, st.DDDot); a > e.opts.MaxAccel {
			violations = multierr.Append(violations, errors.Errorf("acceleration %.2f exceeds limit %.2f", a, e.opts.MaxAccel))
			break
		}
	}
	for _, wp := range path {
		if k := math.Abs(wp.Curvature); k > e.opts.MaxCurvature {
			violations = multierr.Append(violations, errors.Errorf("curvature %.3f exceeds limit %.3f", k, e.opts.MaxCurvature))
			break
		}
	}
	inflation := e.opts.ObstacleMargin + e.halfWidth
obstacleCheck:
	for _, obs := range obstacles {
		for _, wp := range path {
			if obs.Clearance(wp.Point, inflation) < 0 {
				violations = multierr.Append(violations, errors.Errorf(
					"collides with obstacle at (%.1f, %.1f)", obs.Center.X, obs.Center.Y))
				break obstacleCheck
			}
		}
	}

	c.Feasible = violations == nil
	c.Infeasibility = violations
	c.Cost = e.cost(c, prev)
}

// cost is the weighted sum of terminal lateral deviation from the lane centerline,
// terminal speed deviation from the cruising target, integrated squared jerk, and
// deviation from the previous cycle's winner.
func (e *Evaluator) cost(c *Candidate, prev *Candidate) float64 {
	w := e.opts.Weights
	term := c.Terminal()

	latCost := math.Abs(term.D - c.LaneCenter)
	speedCost := math.Abs(term.SDot - e.opts.TargetSpeed)

	jerkCost := 0.0
	for _, t := range c.Times {
		latJerk := c.Lat.Jerk(t)
		lonJerk := c.Lon.Jerk(t)
		jerkCost += (latJerk*latJerk + lonJerk*lonJerk) * e.opts.TimeStep
	}

	consistencyCost := 0.0
	if prev != nil {
		consistencyCost = math.Abs(term.D - prev.Terminal().D)
	}

	return w.Lateral*latCost + w.Speed*speedCost + w.Jerk*jerkCost + w.Consistency*consistencyCost
}
