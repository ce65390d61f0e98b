package navigator

import (
	"encoding/json"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"github.com/arcnav/frenetplan/control"
	"github.com/arcnav/frenetplan/planner"
)

// VehicleConfig is the vehicle geometry the planner and controller need.
type VehicleConfig struct {
	Width     float64 `json:"width"`     // m
	Wheelbase float64 `json:"wheelbase"` // m
}

// BufferConfig bounds the continuity buffer.
type BufferConfig struct {
	MaxSize       int     `json:"max_size"`
	MinSize       int     `json:"min_size"`
	MaxSeparation float64 `json:"max_separation"` // m
	MinSeparation float64 `json:"min_separation"` // m
}

// RefPathConfig controls reference path fitting and the local window.
type RefPathConfig struct {
	Step              float64 `json:"step"`                // resampling step, m
	MinWaypoints      int     `json:"min_waypoints"`       // minimum raw waypoints
	MaxProjectionDist float64 `json:"max_projection_dist"` // lateral search bound, m
	WindowBehind      float64 `json:"window_behind"`       // m of path kept behind the vehicle
	WindowAhead       float64 `json:"window_ahead"`        // m of path kept ahead of the vehicle
}

// Config is the full configuration surface of the planning engine. It is loaded
// externally and applied atomically between cycles, never re-derived at runtime.
type Config struct {
	Vehicle VehicleConfig   `json:"vehicle"`
	Planner planner.Options `json:"planner"`
	// SamplingMargin is the extra lateral clearance subtracted from lane edges when
	// computing sampling widths, m.
	SamplingMargin float64               `json:"sampling_margin"`
	Tracker        control.TrackerConfig `json:"tracker"`
	Buffer         BufferConfig          `json:"buffer"`
	RefPath        RefPathConfig         `json:"ref_path"`
	// StaleAfterSec is how long after the last odometry update planning keeps
	// trusting it, seconds.
	StaleAfterSec float64 `json:"stale_after_sec"`
	// NominalCycleSec is the control-loop period assumed before the first measured
	// cycle time is available, seconds.
	NominalCycleSec float64 `json:"nominal_cycle_sec"`
}

// DefaultConfig returns a configuration for a typical passenger vehicle.
func DefaultConfig() Config {
	return Config{
		Vehicle:        VehicleConfig{Width: 2.0, Wheelbase: 2.7},
		Planner:        planner.DefaultOptions(),
		SamplingMargin: 0.25,
		Tracker: control.TrackerConfig{
			CrossTrackGain: 1.5,
			SpeedFloor:     1.0,
			MaxSteering:    0.6,
			MaxLookahead:   5.0,
			Speed:          control.PIDConfig{Kp: 0.8, Ki: 0.2, Kd: 0.05, IntegralLimit: 2.0, OutputLimit: 4.0},
		},
		Buffer: BufferConfig{
			MaxSize:       120,
			MinSize:       10,
			MaxSeparation: 2.0,
			MinSeparation: 0.05,
		},
		RefPath: RefPathConfig{
			Step:              0.5,
			MinWaypoints:      3,
			MaxProjectionDist: 10.0,
			WindowBehind:      10.0,
			WindowAhead:       120.0,
		},
		StaleAfterSec:   0.5,
		NominalCycleSec: 0.1,
	}
}

// Validate checks the whole configuration surface.
func (c *Config) Validate() error {
	if c.Vehicle.Width <= 0 || c.Vehicle.Wheelbase <= 0 {
		return errors.New("vehicle width and wheelbase must be positive")
	}
	if err := c.Planner.Validate(); err != nil {
		return errors.Wrap(err, "planner options")
	}
	if c.SamplingMargin < 0 {
		return errors.New("sampling margin must be non-negative")
	}
	if err := c.Tracker.Validate(); err != nil {
		return errors.Wrap(err, "tracker config")
	}
	if c.RefPath.Step <= 0 || c.RefPath.MaxProjectionDist <= 0 {
		return errors.New("reference path step and projection distance must be positive")
	}
	if c.RefPath.WindowBehind < 0 || c.RefPath.WindowAhead <= 0 {
		return errors.New("window bounds must be positive")
	}
	if c.StaleAfterSec <= 0 || c.NominalCycleSec <= 0 {
		return errors.New("stale timeout and nominal cycle period must be positive")
	}
	// buffer bounds are validated by trajectory.NewBuffer; check the cheap invariants
	// here so config errors surface before a cycle runs
	if c.Buffer.MaxSize <= 0 || c.Buffer.MinSize < 0 || c.Buffer.MinSize > c.Buffer.MaxSize {
		return errors.New("buffer sizes must satisfy 0 <= min <= max, max > 0")
	}
	if c.Buffer.MinSeparation <= 0 || c.Buffer.MaxSeparation <= c.Buffer.MinSeparation {
		return errors.New("buffer separations must satisfy 0 < min < max")
	}
	return nil
}

// ReadConfig loads a JSON configuration file, expanding ${ENV} references first.
func ReadConfig(path string) (Config, error) {
	raw, err := envsubst.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "validating config %s", path)
	}
	return cfg, nil
}
