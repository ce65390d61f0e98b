// Package navigator orchestrates one planning-and-tracking cycle per localization
// update: reference path maintenance, Frenet conversion, candidate sampling and
// evaluation, lane arbitration, path continuity, and the tracking controller, with
// every failure recovered to the fail-safe stop command.
package navigator

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/arcnav/frenetplan/control"
	"github.com/arcnav/frenetplan/frenet"
	"github.com/arcnav/frenetplan/planner"
	"github.com/arcnav/frenetplan/refpath"
	"github.com/arcnav/frenetplan/trajectory"
	"github.com/arcnav/frenetplan/vehicle"
)

// Lane is one lane-geometry update: the centerline waypoints of the lane the vehicle
// travels in, plus the widths of that lane and its neighbors. A new Lane replaces the
// previous one wholesale.
type Lane struct {
	ID         int
	Waypoints  []r2.Point
	Width      float64
	LeftWidth  float64
	RightWidth float64
}

type components struct {
	builder   *refpath.Builder
	sampler   *planner.Sampler
	evaluator *planner.Evaluator
	selector  *planner.Selector
	tracker   *control.Tracker
}

func buildComponents(cfg Config, logger golog.Logger) (*components, error) {
	builder, err := refpath.NewBuilder(cfg.RefPath.Step, cfg.RefPath.MinWaypoints)
	if err != nil {
		return nil, err
	}
	sampler, err := planner.NewSampler(cfg.Planner)
	if err != nil {
		return nil, err
	}
	evaluator, err := planner.NewEvaluator(cfg.Planner, cfg.Vehicle.Width, logger)
	if err != nil {
		return nil, err
	}
	tracker, err := control.NewTracker(cfg.Tracker, logger)
	if err != nil {
		return nil, err
	}
	return &components{
		builder:   builder,
		sampler:   sampler,
		evaluator: evaluator,
		selector:  planner.NewSelector(nil),
		tracker:   tracker,
	}, nil
}

// Navigator is the planning engine's orchestrator. Inputs arriving between cycles are
// buffered and frozen at the start of the next Advance call; all rolling state (lane
// ids, cached window, committed path, previous winner) is owned here and touched only
// within Advance.
type Navigator struct {
	logger golog.Logger
	clk    clock.Clock

	mu               sync.Mutex
	pendingState     *vehicle.State
	pendingStateAt   time.Time
	pendingLane      *Lane
	pendingObstacles *[]vehicle.Obstacle
	pendingTarget    *int
	pendingCfg       *Config

	outPath       trajectory.Path
	outCandidates []*planner.Candidate
	outSelected   *planner.Candidate
	outCmd        control.Command
	diag          Diagnostics

	// cycle-owned state below, touched only inside Advance
	cfg       Config
	comps     *components
	buffer    *trajectory.Buffer
	full      *refpath.ReferencePath
	window    *refpath.Window
	lane      Lane
	laneDirty bool

	regenerate    bool
	laneOffset    float64 // current lane center's offset from the reference centerline
	currentLaneID int
	targetLaneID  int
	prevWinner    *planner.Candidate

	state     vehicle.State
	stateAt   time.Time
	haveState bool
	obstacles []vehicle.Obstacle

	lastAdvanceAt time.Time
	cycle         int
}

// New returns a navigator using the wall clock.
func New(cfg Config, logger golog.Logger) (*Navigator, error) {
	return NewWithClock(cfg, logger, clock.New())
}

// NewWithClock returns a navigator on an injected clock, letting tests control the
// stale-input watchdog.
func NewWithClock(cfg Config, logger golog.Logger, clk clock.Clock) (*Navigator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	comps, err := buildComponents(cfg, logger)
	if err != nil {
		return nil, err
	}
	buffer, err := trajectory.NewBuffer(cfg.Buffer.MaxSize, cfg.Buffer.MinSize, cfg.Buffer.MaxSeparation, cfg.Buffer.MinSeparation)
	if err != nil {
		return nil, err
	}
	return &Navigator{
		logger: logger,
		clk:    clk,
		cfg:    cfg,
		comps:  comps,
		buffer: buffer,
	}, nil
}

// UpdateOdometry buffers a localization update for the next cycle.
func (n *Navigator) UpdateOdometry(s vehicle.State) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pendingState = &s
	n.pendingStateAt = n.clk.Now()
}

// UpdateLane buffers a lane-geometry update for the next cycle.
func (n *Navigator) UpdateLane(l Lane) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pendingLane = &l
}

// UpdateObstacles buffers an obstacle-perception update for the next cycle. The set
// replaces the previous one.
func (n *Navigator) UpdateObstacles(obs []vehicle.Obstacle) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pendingObstacles = &obs
}

// SetTargetLane requests a lane change toward the lane with the given id. The change
// is considered complete once a selected trajectory ends inside the new lane's width
// band.
func (n *Navigator) SetTargetLane(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pendingTarget = &id
}

// ApplyConfig stages a validated configuration to be swapped in atomically at the
// start of the next cycle. The running cycle, if any, is unaffected.
func (n *Navigator) ApplyConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pendingCfg = &cfg
	return nil
}

// takeSnapshot freezes all buffered inputs into the cycle-owned fields. A cycle
// always computes against this frozen snapshot; inputs arriving mid-cycle wait for
// the next one.
func (n *Navigator) takeSnapshot() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pendingCfg != nil {
		n.applyConfigLocked(*n.pendingCfg)
		n.pendingCfg = nil
	}
	if n.pendingState != nil {
		n.state = *n.pendingState
		n.stateAt = n.pendingStateAt
		n.haveState = true
		n.pendingState = nil
	}
	if n.pendingLane != nil {
		n.lane = *n.pendingLane
		n.laneDirty = true
		n.pendingLane = nil
	}
	if n.pendingObstacles != nil {
		n.obstacles = *n.pendingObstacles
		n.pendingObstacles = nil
	}
	if n.pendingTarget != nil {
		n.targetLaneID = *n.pendingTarget
		n.pendingTarget = nil
	}
}

func (n *Navigator) applyConfigLocked(cfg Config) {
	comps, err := buildComponents(cfg, n.logger)
	if err != nil {
		// cfg was validated in ApplyConfig; a failure here means the config became
		// inconsistent, keep the old one running
		n.logger.Errorw("rejecting staged config", "error", err)
		return
	}
	buffer, err := trajectory.NewBuffer(cfg.Buffer.MaxSize, cfg.Buffer.MinSize, cfg.Buffer.MaxSeparation, cfg.Buffer.MinSeparation)
	if err != nil {
		n.logger.Errorw("rejecting staged config", "error", err)
		return
	}
	// carry the committed path into the new buffer so the hand-off stays smooth
	if old := n.buffer.Path(); len(old) > 0 {
		buffer.Concat(old)
	}
	n.cfg = cfg
	n.comps = comps
	n.buffer = buffer
}

// Advance runs one full planning cycle against the frozen input snapshot and returns
// the control command. On any planning failure the returned command is the fail-safe
// stop command and the error describes the failure; callers should publish the
// command either way and keep calling Advance on subsequent updates.
func (n *Navigator) Advance(ctx context.Context) (control.Command, error) {
	n.takeSnapshot()
	now := n.clk.Now()
	dt := n.cfg.NominalCycleSec
	if !n.lastAdvanceAt.IsZero() {
		dt = math.Max(now.Sub(n.lastAdvanceAt).Seconds(), 1e-3)
	}
	n.lastAdvanceAt = now
	n.cycle++

	if !n.haveState {
		return n.fail(errors.Wrap(ErrStaleInput, "no localization update received yet"), nil, dt)
	}
	if age := now.Sub(n.stateAt).Seconds(); age > n.cfg.StaleAfterSec {
		return n.fail(errors.Wrapf(ErrStaleInput, "last update %.2fs ago, limit %.2fs", age, n.cfg.StaleAfterSec), nil, dt)
	}

	if n.laneDirty {
		full, err := n.comps.builder.Build(n.lane.Waypoints)
		if err != nil {
			return n.fail(err, nil, dt)
		}
		n.full = full
		n.window = nil
		n.laneDirty = false
		n.regenerate = true
		n.laneOffset = 0
		n.buffer.Reset()
		n.prevWinner = nil
		// lane ids are read concurrently through Lanes()
		n.mu.Lock()
		if n.currentLaneID != n.lane.ID && n.targetLaneID == n.currentLaneID {
			n.targetLaneID = n.lane.ID
		}
		n.currentLaneID = n.lane.ID
		n.mu.Unlock()
		n.logger.Infof("lane %d geometry replaced, %d waypoints, %.1fm", n.lane.ID, len(n.lane.Waypoints), full.Length())
	}
	if n.full == nil {
		return n.fail(ErrNoLaneGeometry, nil, dt)
	}

	s, _, err := n.full.Project(n.state.Position, n.cfg.RefPath.MaxProjectionDist)
	if err != nil {
		n.regenerate = true
		return n.fail(err, nil, dt)
	}
	lookahead := math.Min(n.cfg.RefPath.WindowAhead, n.full.EndS()-s)
	if n.regenerate || !n.window.Covers(s, lookahead) {
		n.window = refpath.NewWindow(n.full, s, n.cfg.RefPath.WindowBehind, n.cfg.RefPath.WindowAhead)
	}
	ref := n.window.Ref()

	// drop waypoints the vehicle has passed, then cut the committed path back to a
	// short bridge ahead of it: everything beyond the bridge is replanned this
	// cycle, so the plan keeps answering to the current obstacle snapshot instead
	// of growing a stale tail
	if idx, _ := n.buffer.Path().NearestIndex(n.state.Position); idx > 0 {
		n.buffer.Advance(idx)
	}
	if !n.buffer.NeedsExtension() {
		n.buffer.Retain(n.cfg.Buffer.MinSize)
	}
	if n.committedPathBlocked() {
		n.regenerate = true
		n.buffer.Reset()
	}

	start, err := n.startState(ref)
	if err != nil {
		n.regenerate = true
		return n.fail(err, nil, dt)
	}

	cands, err := n.sampleOptions(start)
	if err != nil {
		return n.fail(err, nil, dt)
	}
	if err := n.comps.evaluator.Evaluate(ctx, cands, ref, n.obstacles, n.prevWinner); err != nil {
		return n.fail(err, cands, dt)
	}

	winner, err := n.comps.selector.Select(cands, n.currentLaneID, n.targetLaneID)
	if err != nil {
		return n.fail(err, cands, dt)
	}
	n.commitLane(winner)

	// a regenerated plan starts at the measured state; the old committed path no
	// longer leads into it
	if n.regenerate {
		n.buffer.Reset()
	}
	path := n.buffer.Concat(winner.Path)

	cmd, err := n.comps.tracker.Command(path, n.state.FrontAxle(n.cfg.Vehicle.Wheelbase), dt)
	if err != nil {
		n.regenerate = true
		return n.fail(err, cands, dt)
	}

	n.regenerate = false
	n.prevWinner = winner
	n.finish(cmd, path, cands, winner, false, nil)
	return cmd, nil
}

// committedPathBlocked reports whether any retained waypoint violates this cycle's
// obstacle clearance. The bridge was planned against an older obstacle snapshot; an
// obstacle appearing on it forces a replan from the measured state.
func (n *Navigator) committedPathBlocked() bool {
	inflation := n.cfg.Planner.ObstacleMargin + n.cfg.Vehicle.Width/2
	for _, obs := range n.obstacles {
		for _, wp := range n.buffer.Path() {
			if obs.Clearance(wp.Point, inflation) < 0 {
				n.logger.Warnw("committed path blocked, replanning from measured state",
					"obstacle", obs.Center)
				return true
			}
		}
	}
	return false
}

// startState returns the Frenet origin for sampling: the committed path's tail when
// extending an existing plan, otherwise the measured vehicle state.
func (n *Navigator) startState(ref *refpath.ReferencePath) (frenet.State, error) {
	maxProj := n.cfg.RefPath.MaxProjectionDist
	if !n.regenerate && n.buffer.Len() > 0 {
		tailPath := n.buffer.Path()
		tail := tailPath[len(tailPath)-1]
		st, err := frenet.ToFrenet(vehicle.State{Position: tail.Point, Yaw: tail.Yaw, Speed: tail.Speed}, ref, maxProj)
		if err == nil {
			return st, nil
		}
		n.logger.Debugw("committed tail no longer projects, replanning from measured state", "error", err)
	}
	return frenet.ToFrenet(n.state, ref, maxProj)
}

// sampleOptions samples the current lane option and, when a lane change is
// requested, the target lane option.
func (n *Navigator) sampleOptions(start frenet.State) ([]*planner.Candidate, error) {
	type option struct{ id, rel int }
	options := []option{{n.currentLaneID, planner.LaneKeep}}
	if n.targetLaneID != n.currentLaneID {
		rel := planner.LaneLeft
		if n.targetLaneID < n.currentLaneID {
			rel = planner.LaneRight
		}
		options = append(options, option{n.targetLaneID, rel})
	}

	var cands []*planner.Candidate
	var lastErr error
	for _, opt := range options {
		width, err := planner.SamplingWidthForLane(
			opt.rel, n.cfg.Vehicle.Width, n.cfg.SamplingMargin,
			n.lane.Width, n.lane.LeftWidth, n.lane.RightWidth)
		if err != nil {
			n.logger.Debugw("lane option unavailable", "lane", opt.id, "error", err)
			lastErr = err
			continue
		}
		width.Center += n.laneOffset
		cs, err := n.comps.sampler.Sample(start, opt.id, width)
		if err != nil {
			lastErr = err
			continue
		}
		cands = append(cands, cs...)
	}
	if len(cands) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, planner.ErrNoFeasibleTrajectory
	}
	return cands, nil
}

// commitLane updates the current lane id once a selected trajectory's terminal
// lateral offset lies inside the new lane's width band.
func (n *Navigator) commitLane(winner *planner.Candidate) {
	if winner.LaneID == n.currentLaneID {
		return
	}
	band := n.lane.LeftWidth
	if winner.LaneID < n.currentLaneID {
		band = n.lane.RightWidth
	}
	if math.Abs(winner.Terminal().D-winner.LaneCenter) <= band/2 {
		n.logger.Infof("lane change committed: %d -> %d", n.currentLaneID, winner.LaneID)
		n.mu.Lock()
		n.currentLaneID = winner.LaneID
		n.mu.Unlock()
		n.laneOffset = winner.LaneCenter
	}
}

// fail recovers the cycle with the stop command. The error is surfaced to the caller
// and to diagnostics but is never fatal; planning resumes on the next cycle.
func (n *Navigator) fail(err error, cands []*planner.Candidate, dt float64) (control.Command, error) {
	cmd := n.comps.tracker.Stop(n.state.Speed, dt)
	n.finish(cmd, nil, cands, nil, true, err)
	return cmd, err
}

func (n *Navigator) finish(
	cmd control.Command,
	path trajectory.Path,
	cands []*planner.Candidate,
	selected *planner.Candidate,
	stopped bool,
	err error,
) {
	d := Diagnostics{
		Cycle:       n.cycle,
		CurrentLane: n.currentLaneID,
		TargetLane:  n.targetLaneID,
		Stopped:     stopped,
	}
	if selected != nil {
		d.SelectedLane = selected.LaneID
	}
	if err != nil {
		d.LastError = err.Error()
		n.logger.Warnw("planning cycle recovered to stop command", "cycle", n.cycle, "error", err)
	}
	summarizeCandidates(&d, cands)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.outPath = path
	n.outCandidates = cands
	n.outSelected = selected
	n.outCmd = cmd
	n.diag = d
}

// LastCommand returns the command issued by the last cycle.
func (n *Navigator) LastCommand() control.Command {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.outCmd
}

// Path returns the committed output path from the last cycle, for the outbound
// visualization boundary.
func (n *Navigator) Path() trajectory.Path {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.outPath
}

// Candidates returns all candidates evaluated in the last cycle, including
// infeasible ones, for diagnostics.
func (n *Navigator) Candidates() []*planner.Candidate {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.outCandidates
}

// Selected returns the last cycle's winning candidate, or nil if the cycle stopped.
func (n *Navigator) Selected() *planner.Candidate {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.outSelected
}

// Diagnostics returns a summary of the last cycle.
func (n *Navigator) Diagnostics() Diagnostics {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.diag
}

// Lanes returns the current and target lane ids.
func (n *Navigator) Lanes() (current, target int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.currentLaneID, n.targetLaneID
}
