package control

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/arcnav/frenetplan/trajectory"
	"github.com/arcnav/frenetplan/utils"
	"github.com/arcnav/frenetplan/vehicle"
)

// ErrNoValidTarget is returned when the path is empty or no waypoint lies within the
// lookahead distance of the front axle.
var ErrNoValidTarget = errors.New("no valid tracking target on path")

// Command is the control output for one cycle.
type Command struct {
	Acceleration  float64 // m/s^2
	SteeringAngle float64 // radians, left positive
	TargetSpeed   float64 // m/s, the speed the acceleration is driving toward
}

// TrackerConfig holds the tracking controller's gains and bounds.
type TrackerConfig struct {
	// CrossTrackGain scales the Stanley cross-track correction.
	CrossTrackGain float64 `json:"cross_track_gain"`
	// SpeedFloor avoids the cross-track term's singularity near zero speed.
	SpeedFloor float64 `json:"speed_floor"`
	// MaxSteering bounds the commanded steering angle, radians.
	MaxSteering float64 `json:"max_steering"`
	// MaxLookahead bounds how far from the path the nearest waypoint may be.
	MaxLookahead float64   `json:"max_lookahead"`
	Speed        PIDConfig `json:"speed_pid"`
}

// Validate checks the gains and bounds.
func (c *TrackerConfig) Validate() error {
	if c.CrossTrackGain <= 0 {
		return errors.New("cross-track gain must be positive")
	}
	if c.SpeedFloor <= 0 {
		return errors.New("speed floor must be positive")
	}
	if c.MaxSteering <= 0 || c.MaxLookahead <= 0 {
		return errors.New("steering and lookahead bounds must be positive")
	}
	return nil
}

// Tracker converts the committed path into commands using a Stanley steering law
// referenced to the front axle and a PID speed loop.
type Tracker struct {
	cfg    TrackerConfig
	pid    *PID
	logger golog.Logger
}

// NewTracker validates the configuration and returns a tracker.
func NewTracker(cfg TrackerConfig, logger golog.Logger) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid tracker config")
	}
	pid, err := NewPID(cfg.Speed)
	if err != nil {
		return nil, err
	}
	return &Tracker{cfg: cfg, pid: pid, logger: logger}, nil
}

// Command computes the acceleration and steering to follow path from the front axle
// state. Steering is the heading error to the nearest waypoint's tangent plus the
// arctangent cross-track term; acceleration drives the measured speed toward the
// nearest waypoint's speed.
func (t *Tracker) Command(path trajectory.Path, front vehicle.State, dt float64) (Command, error) {
	if len(path) == 0 {
		return Command{}, errors.Wrap(ErrNoValidTarget, "path is empty")
	}
	idx, dist := path.NearestIndex(front.Position)
	if dist > t.cfg.MaxLookahead {
		return Command{}, errors.Wrapf(ErrNoValidTarget, "nearest waypoint %.2fm away, max %.2fm", dist, t.cfg.MaxLookahead)
	}
	wp := path[idx]

	headingErr := utils.WrapAngle(wp.Yaw - front.Yaw)

	// signed cross-track error: the axle offset projected onto the path's left
	// normal, positive when the axle is left of the path
	offset := front.Position.Sub(wp.Point)
	crossTrack := -math.Sin(wp.Yaw)*offset.X + math.Cos(wp.Yaw)*offset.Y

	speed := math.Max(front.Speed, t.cfg.SpeedFloor)
	steering := headingErr - math.Atan2(t.cfg.CrossTrackGain*crossTrack, speed)
	steering = utils.Clamp(steering, -t.cfg.MaxSteering, t.cfg.MaxSteering)

	accel := t.pid.Next(wp.Speed, front.Speed, dt)
	return Command{Acceleration: accel, SteeringAngle: steering, TargetSpeed: wp.Speed}, nil
}

// Stop returns the fail-safe command: zero target speed with the PID braking toward
// it and neutral steering. Used whenever planning or tracking fails for a cycle.
func (t *Tracker) Stop(currentSpeed, dt float64) Command {
	t.logger.Debugf("issuing stop command at %.2f m/s", currentSpeed)
	return Command{
		Acceleration:  t.pid.Next(0, currentSpeed, dt),
		SteeringAngle: 0,
		TargetSpeed:   0,
	}
}

// Reset clears the speed loop's accumulated state.
func (t *Tracker) Reset() {
	t.pid.Reset()
}
