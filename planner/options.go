// Package planner samples candidate trajectories in the Frenet frame, checks them
// for kinematic and collision feasibility, scores them, and arbitrates the winner
// across lane options.
package planner

import "github.com/pkg/errors"

// default values for planning options.
const (
	// kinematic/dynamic limits
	defaultMaxSpeed     = 20.0 // m/s
	defaultMaxAccel     = 4.0  // m/s^2
	defaultMaxCurvature = 0.2  // 1/m

	// sampling discretization
	defaultLateralStep          = 0.5 // m between lateral target offsets
	defaultSpeedStep            = 1.0 // m/s between target speeds
	defaultSpeedSamplesEachSide = 2
	defaultTimeStep             = 0.1 // s between samples along a candidate

	// clearance added around obstacle footprints
	defaultObstacleMargin = 0.5 // m

	// cost weights
	defaultLateralWeight     = 1.0
	defaultSpeedWeight       = 1.0
	defaultJerkWeight        = 0.1
	defaultConsistencyWeight = 0.5
)

// defaultHorizons is the default set of candidate time horizons in seconds.
func defaultHorizons() []float64 { return []float64{4.0, 5.0} }

// CostWeights are the externally configured weights of the scalar candidate cost.
type CostWeights struct {
	Lateral     float64 `json:"lateral"`
	Speed       float64 `json:"speed"`
	Jerk        float64 `json:"jerk"`
	Consistency float64 `json:"consistency"`
}

// Options configures sampling ranges, limits, and cost weights. Weights and limits
// are constants for a cycle; they are only replaced wholesale between cycles.
type Options struct {
	MaxSpeed     float64 `json:"max_speed"`
	MaxAccel     float64 `json:"max_accel"`
	MaxCurvature float64 `json:"max_curvature"`

	TargetSpeed          float64   `json:"target_speed"`
	LateralStep          float64   `json:"lateral_step"`
	SpeedStep            float64   `json:"speed_step"`
	SpeedSamplesEachSide int       `json:"speed_samples_each_side"`
	Horizons             []float64 `json:"horizons"`
	TimeStep             float64   `json:"time_step"`

	ObstacleMargin float64     `json:"obstacle_margin"`
	Weights        CostWeights `json:"weights"`
}

// DefaultOptions returns planning options with the package defaults applied.
func DefaultOptions() Options {
	return Options{
		MaxSpeed:             defaultMaxSpeed,
		MaxAccel:             defaultMaxAccel,
		MaxCurvature:         defaultMaxCurvature,
		TargetSpeed:          10.0,
		LateralStep:          defaultLateralStep,
		SpeedStep:            defaultSpeedStep,
		SpeedSamplesEachSide: defaultSpeedSamplesEachSide,
		Horizons:             defaultHorizons(),
		TimeStep:             defaultTimeStep,
		ObstacleMargin:       defaultObstacleMargin,
		Weights: CostWeights{
			Lateral:     defaultLateralWeight,
			Speed:       defaultSpeedWeight,
			Jerk:        defaultJerkWeight,
			Consistency: defaultConsistencyWeight,
		},
	}
}

// Validate checks that the options describe a non-empty, bounded sampling problem.
func (o *Options) Validate() error {
	if o.MaxSpeed <= 0 || o.MaxAccel <= 0 || o.MaxCurvature <= 0 {
		return errors.New("kinematic limits must be positive")
	}
	if o.TargetSpeed < 0 {
		return errors.New("target speed must be non-negative")
	}
	if o.TargetSpeed > o.MaxSpeed {
		return errors.Errorf("target speed %.1f exceeds max speed %.1f", o.TargetSpeed, o.MaxSpeed)
	}
	if o.LateralStep <= 0 || o.SpeedStep <= 0 || o.TimeStep <= 0 {
		return errors.New("sampling steps must be positive")
	}
	if o.SpeedSamplesEachSide < 0 {
		return errors.New("speed sample count must be non-negative")
	}
	if len(o.Horizons) == 0 {
		return errors.New("at least one time horizon is required")
	}
	for _, h := range o.Horizons {
		if h <= o.TimeStep {
			return errors.Errorf("horizon %.2fs must exceed the time step %.2fs", h, o.TimeStep)
		}
	}
	if o.ObstacleMargin < 0 {
		return errors.New("obstacle margin must be non-negative")
	}
	w := o.Weights
	if w.Lateral < 0 || w.Speed < 0 || w.Jerk < 0 || w.Consistency < 0 {
		return errors.New("cost weights must be non-negative")
	}
	return nil
}
