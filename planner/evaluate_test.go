package planner

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"github.com/arcnav/frenetplan/frenet"
	"github.com/arcnav/frenetplan/refpath"
	"github.com/arcnav/frenetplan/vehicle"
)

func straightRef(t *testing.T, length int) *refpath.ReferencePath {
	t.Helper()
	b, err := refpath.NewBuilder(0.5, 3)
	test.That(t, err, test.ShouldBeNil)
	pts := make([]r2.Point, length+1)
	for i := range pts {
		pts[i] = r2.Point{X: float64(i)}
	}
	ref, err := b.Build(pts)
	test.That(t, err, test.ShouldBeNil)
	return ref
}

func sampleStraight(t *testing.T, opts Options) []*Candidate {
	t.Helper()
	sp, err := NewSampler(opts)
	test.That(t, err, test.ShouldBeNil)
	cands, err := sp.Sample(frenet.State{S: 0, SDot: 10}, LaneKeep, SamplingWidth{Left: 1, Right: 1})
	test.That(t, err, test.ShouldBeNil)
	return cands
}

func feasibleCount(cands []*Candidate) int {
	n := 0
	for _, c := range cands {
		if c.Feasible {
			n++
		}
	}
	return n
}

func TestEvaluateOpenRoad(t *testing.T) {
	logger := golog.NewTestLogger(t)
	opts := testOptions()
	ref := straightRef(t, 100)

	cands := sampleStraight(t, opts)
	ev, err := NewEvaluator(opts, 2.0, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ev.Evaluate(context.Background(), cands, ref, nil, nil), test.ShouldBeNil)

	// a straight road with no obstacles leaves most candidates feasible
	test.That(t, feasibleCount(cands), test.ShouldBeGreaterThan, 0)
	for _, c := range cands {
		test.That(t, c.Cost, test.ShouldBeGreaterThanOrEqualTo, 0.0)
		if c.Feasible {
			test.That(t, c.Infeasibility, test.ShouldBeNil)
			test.That(t, len(c.Path), test.ShouldBeGreaterThan, 1)
		}
	}
}

func TestEvaluateObstacleBlocksLane(t *testing.T) {
	logger := golog.NewTestLogger(t)
	opts := testOptions()
	ref := straightRef(t, 100)
	cands := sampleStraight(t, opts)

	// footprint covering every sampled lateral offset ahead of the vehicle
	wall := []vehicle.Obstacle{{Center: r2.Point{X: 20, Y: 0}, Radius: 4}}
	ev, err := NewEvaluator(opts, 2.0, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ev.Evaluate(context.Background(), cands, ref, wall, nil), test.ShouldBeNil)
	test.That(t, feasibleCount(cands), test.ShouldEqual, 0)
	for _, c := range cands {
		test.That(t, c.Infeasibility, test.ShouldNotBeNil)
	}
}

func TestFeasibilityMonotonicInObstacleMargin(t *testing.T) {
	logger := golog.NewTestLogger(t)
	ref := straightRef(t, 100)
	obstacle := []vehicle.Obstacle{{Center: r2.Point{X: 25, Y: 2.2}, Radius: 0.5}}

	prevCount := -1
	for _, margin := range []float64{0.1, 0.5, 1.0, 2.0} {
		opts := testOptions()
		opts.ObstacleMargin = margin
		cands := sampleStraight(t, opts)
		ev, err := NewEvaluator(opts, 2.0, logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ev.Evaluate(context.Background(), cands, ref, obstacle, nil), test.ShouldBeNil)
		count := feasibleCount(cands)
		if prevCount >= 0 {
			test.That(t, count, test.ShouldBeLessThanOrEqualTo, prevCount)
		}
		prevCount = count
	}
}

func TestFeasibilityMonotonicInCurvatureLimit(t *testing.T) {
	logger := golog.NewTestLogger(t)
	ref := straightRef(t, 100)

	prevCount := -1
	for _, maxCurv := range []float64{0.5, 0.1, 0.02, 0.005} {
		opts := testOptions()
		opts.MaxCurvature = maxCurv
		cands := sampleStraight(t, opts)
		ev, err := NewEvaluator(opts, 2.0, logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ev.Evaluate(context.Background(), cands, ref, nil, nil), test.ShouldBeNil)
		count := feasibleCount(cands)
		if prevCount >= 0 {
			test.That(t, count, test.ShouldBeLessThanOrEqualTo, prevCount)
		}
		prevCount = count
	}
}

func TestSpeedLimitViolation(t *testing.T) {
	logger := golog.NewTestLogger(t)
	opts := testOptions()
	opts.MaxSpeed = 9.0 // below every sampled target speed's reachable range
	opts.TargetSpeed = 8.9
	opts.SpeedSamplesEachSide = 0
	ref := straightRef(t, 100)

	sp, err := NewSampler(opts)
	test.That(t, err, test.ShouldBeNil)
	// starting above the limit violates immediately
	cands, err := sp.Sample(frenet.State{S: 0, SDot: 12}, LaneKeep, SamplingWidth{})
	test.That(t, err, test.ShouldBeNil)
	ev, err := NewEvaluator(opts, 2.0, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ev.Evaluate(context.Background(), cands, ref, nil, nil), test.ShouldBeNil)
	test.That(t, feasibleCount(cands), test.ShouldEqual, 0)
}

func TestConsistencyCostPenalizesSwitching(t *testing.T) {
	logger := golog.NewTestLogger(t)
	opts := testOptions()
	ref := straightRef(t, 100)
	cands := sampleStraight(t, opts)
	ev, err := NewEvaluator(opts, 2.0, logger)
	test.That(t, err, test.ShouldBeNil)

	// previous winner ended at d=1: candidates ending near d=1 get cheaper relative
	// to a run with no previous winner
	test.That(t, ev.Evaluate(context.Background(), cands, ref, nil, nil), test.ShouldBeNil)
	var atZero, atOne *Candidate
	for _, c := range cands {
		if c.TargetSpeed != opts.TargetSpeed || c.Horizon != opts.Horizons[0] {
			continue
		}
		if c.TargetOffset == 0 {
			atZero = c
		}
		if c.TargetOffset == 1 {
			atOne = c
		}
	}
	test.That(t, atZero, test.ShouldNotBeNil)
	test.That(t, atOne, test.ShouldNotBeNil)
	baseGap := atOne.Cost - atZero.Cost

	test.That(t, ev.Evaluate(context.Background(), cands, ref, nil, atOne), test.ShouldBeNil)
	gapWithPrev := atOne.Cost - atZero.Cost
	test.That(t, gapWithPrev, test.ShouldBeLessThan, baseGap)
}
