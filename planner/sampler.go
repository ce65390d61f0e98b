package planner

import (
	"github.com/pkg/errors"

	"github.com/arcnav/frenetplan/frenet"
)

// Sampler generates the candidate family for one lane option: the cross product of
// lateral target offsets, target speeds, and time horizons, each realized as a
// quintic/quartic polynomial pair satisfying the boundary conditions exactly.
type Sampler struct {
	opts Options
}

// NewSampler validates the options and returns a sampler.
func NewSampler(opts Options) (*Sampler, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid sampler options")
	}
	return &Sampler{opts: opts}, nil
}

// lateralOffsets discretizes the sampling band from its right edge to its left edge.
func (sp *Sampler) lateralOffsets(width SamplingWidth) []float64 {
	var offsets []float64
	for d := width.Center - width.Right; d <= width.Center+width.Left+1e-9; d += sp.opts.LateralStep {
		offsets = append(offsets, d)
	}
	return offsets
}

// targetSpeeds discretizes speeds around the desired cruising speed, discarding
// negative entries.
func (sp *Sampler) targetSpeeds() []float64 {
	var speeds []float64
	for k := -sp.opts.SpeedSamplesEachSide; k <= sp.opts.SpeedSamplesEachSide; k++ {
		v := sp.opts.TargetSpeed + float64(k)*sp.opts.SpeedStep
		if v < 0 {
			continue
		}
		speeds = append(speeds, v)
	}
	return speeds
}

// Sample produces exactly len(lateral) * len(speeds) * len(horizons) candidates
// starting at start. Lateral motion ends at the target offset with zero lateral
// velocity and acceleration; longitudinal motion ends at the target speed with zero
// acceleration and free terminal position.
func (sp *Sampler) Sample(start frenet.State, laneID int, width SamplingWidth) ([]*Candidate, error) {
	offsets := sp.lateralOffsets(width)
	speeds := sp.targetSpeeds()
	if len(offsets) == 0 || len(speeds) == 0 {
		return nil, errors.Errorf("empty sampling range for lane %d", laneID)
	}

	cands := make([]*Candidate, 0, len(offsets)*len(speeds)*len(sp.opts.Horizons))
	for _, d1 := range offsets {
		for _, v1 := range speeds {
			for _, horizon := range sp.opts.Horizons {
				c, err := sp.sampleOne(start, laneID, width.Center, d1, v1, horizon)
				if err != nil {
					return nil, err
				}
				cands = append(cands, c)
			}
		}
	}
	return cands, nil
}

func (sp *Sampler) sampleOne(start frenet.State, laneID int, center, d1, v1, horizon float64) (*Candidate, error) {
	lat, err := frenet.NewQuintic(start.D, start.DDot, start.DDDot, d1, 0, 0, horizon)
	if err != nil {
		return nil, errors.Wrap(err, "lateral polynomial")
	}
	lon, err := frenet.NewQuartic(start.S, start.SDot, start.SDDot, v1, 0, horizon)
	if err != nil {
		return nil, errors.Wrap(err, "longitudinal polynomial")
	}

	c := &Candidate{
		LaneID:       laneID,
		LaneCenter:   center,
		TargetOffset: d1,
		TargetSpeed:  v1,
		Horizon:      horizon,
		Lat:          lat,
		Lon:          lon,
	}
	for t := 0.0; t < horizon-1e-9; t += sp.opts.TimeStep {
		c.Times = append(c.Times, t)
	}
	c.Times = append(c.Times, horizon)
	c.States = make([]frenet.State, len(c.Times))
	for i, t := range c.Times {
		c.States[i] = frenet.State{
			S:     lon.At(t),
			SDot:  lon.Velocity(t),
			SDDot: lon.Acceleration(t),
			D:     lat.At(t),
			DDot:  lat.Velocity(t),
			DDDot: lat.Acceleration(t),
		}
	}
	return c, nil
}
