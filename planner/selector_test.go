package planner

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/arcnav/frenetplan/frenet"
)

func stubCandidate(lane int, cost float64, feasible bool) *Candidate {
	return &Candidate{
		LaneID:   lane,
		Cost:     cost,
		Feasible: feasible,
		Times:    []float64{0},
		States:   []frenet.State{{}},
	}
}

func TestSelectPrefersTargetLane(t *testing.T) {
	s := NewSelector(nil)
	cands := []*Candidate{
		stubCandidate(LaneKeep, 1.0, true),
		stubCandidate(LaneLeft, 5.0, true), // pricier but in the target lane
	}
	winner, err := s.Select(cands, LaneKeep, LaneLeft)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, winner.LaneID, test.ShouldEqual, LaneLeft)
}

func TestSelectFallsBackToCurrentLane(t *testing.T) {
	s := NewSelector(nil)
	cands := []*Candidate{
		stubCandidate(LaneKeep, 3.0, true),
		stubCandidate(LaneLeft, 1.0, false), // target lane blocked
	}
	winner, err := s.Select(cands, LaneKeep, LaneLeft)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, winner.LaneID, test.ShouldEqual, LaneKeep)
}

func TestSelectFallsBackToGlobalMinimum(t *testing.T) {
	s := NewSelector(nil)
	cands := []*Candidate{
		stubCandidate(LaneKeep, 3.0, false),
		stubCandidate(LaneLeft, 5.0, false),
		stubCandidate(LaneRight, 2.0, true),
	}
	winner, err := s.Select(cands, LaneKeep, LaneLeft)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, winner.LaneID, test.ShouldEqual, LaneRight)
}

func TestSelectMinimumCostWithinLane(t *testing.T) {
	s := NewSelector(nil)
	cheap := stubCandidate(LaneKeep, 1.0, true)
	cands := []*Candidate{
		stubCandidate(LaneKeep, 2.0, true),
		cheap,
		stubCandidate(LaneKeep, 1.5, true),
	}
	winner, err := s.Select(cands, LaneKeep, LaneKeep)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, winner, test.ShouldEqual, cheap)
}

func TestSelectDeterministicTieBreak(t *testing.T) {
	s := NewSelector(nil)
	first := stubCandidate(LaneKeep, 1.0, true)
	second := stubCandidate(LaneKeep, 1.0, true)
	cands := []*Candidate{first, second}
	for i := 0; i < 10; i++ {
		winner, err := s.Select(cands, LaneKeep, LaneKeep)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, winner, test.ShouldEqual, first)
	}
}

func TestSelectNoFeasible(t *testing.T) {
	s := NewSelector(nil)
	cands := []*Candidate{
		stubCandidate(LaneKeep, 1.0, false),
		stubCandidate(LaneLeft, 2.0, false),
	}
	_, err := s.Select(cands, LaneKeep, LaneKeep)
	test.That(t, errors.Is(err, ErrNoFeasibleTrajectory), test.ShouldBeTrue)

	_, err = s.Select(nil, LaneKeep, LaneKeep)
	test.That(t, errors.Is(err, ErrNoFeasibleTrajectory), test.ShouldBeTrue)
}

func TestCustomPreferencePolicy(t *testing.T) {
	// a policy that always takes the right lane when available
	rightmost := func(best map[int]*Candidate, _, _ int) *Candidate {
		return best[LaneRight]
	}
	s := NewSelector(rightmost)
	cands := []*Candidate{
		stubCandidate(LaneKeep, 0.5, true),
		stubCandidate(LaneRight, 4.0, true),
	}
	winner, err := s.Select(cands, LaneKeep, LaneKeep)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, winner.LaneID, test.ShouldEqual, LaneRight)
}
