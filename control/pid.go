// Package control turns a committed path into steering and acceleration commands: a
// PID loop drives the longitudinal speed and a Stanley geometric law at the front
// axle drives the steering.
package control

import (
	"github.com/pkg/errors"

	"github.com/arcnav/frenetplan/utils"
)

// PIDConfig holds gains and output bounds for the longitudinal speed loop.
type PIDConfig struct {
	Kp float64 `json:"kp"`
	Ki float64 `json:"ki"`
	Kd float64 `json:"kd"`
	// IntegralLimit bounds the magnitude of the accumulated integral term.
	IntegralLimit float64 `json:"integral_limit"`
	// OutputLimit bounds the magnitude of the controller output.
	OutputLimit float64 `json:"output_limit"`
}

// PID is a discrete proportional-integral-derivative controller with integral
// anti-windup: while the output is saturated, error of the same sign is not
// integrated further.
type PID struct {
	cfg     PIDConfig
	integ   float64
	prevErr float64
	sat     int // -1, 0, +1: sign of current saturation
	primed  bool
}

// NewPID validates the configuration; at least one gain must be set and both limits
// must be positive.
func NewPID(cfg PIDConfig) (*PID, error) {
	if cfg.Kp == 0 && cfg.Ki == 0 && cfg.Kd == 0 {
		return nil, errors.New("pid needs at least one of Kp, Ki, Kd")
	}
	if cfg.IntegralLimit <= 0 || cfg.OutputLimit <= 0 {
		return nil, errors.New("pid integral and output limits must be positive")
	}
	return &PID{cfg: cfg}, nil
}

// Next advances the loop by dt and returns the clamped output driving measured
// toward setPoint.
func (p *PID) Next(setPoint, measured, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	err := setPoint - measured

	if !(p.sat > 0 && err > 0) && !(p.sat < 0 && err < 0) {
		p.integ = utils.Clamp(p.integ+p.cfg.Ki*err*dt, -p.cfg.IntegralLimit, p.cfg.IntegralLimit)
	}

	deriv := 0.0
	if p.primed {
		deriv = (err - p.prevErr) / dt
	}
	p.prevErr = err
	p.primed = true

	output := p.cfg.Kp*err + p.integ + p.cfg.Kd*deriv
	switch {
	case output > p.cfg.OutputLimit:
		p.sat = 1
		output = p.cfg.OutputLimit
	case output < -p.cfg.OutputLimit:
		p.sat = -1
		output = -p.cfg.OutputLimit
	default:
		p.sat = 0
	}
	return output
}

// Reset clears the integral and derivative history.
func (p *PID) Reset() {
	p.integ = 0
	p.prevErr = 0
	p.sat = 0
	p.primed = false
}
