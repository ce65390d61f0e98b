package refpath

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/interp"

	"github.com/arcnav/frenetplan/trajectory"
)

// ErrInsufficientWaypoints is returned when too few distinct waypoints are available
// to fit a curve. Downstream skips planning for the cycle and issues a stop command.
var ErrInsufficientWaypoints = errors.New("not enough waypoints to fit reference path")

const (
	// discard raw waypoints closer together than this
	duplicateWaypointTol = 1e-6
	// hard bound on resampled points, keeps the fit loop bounded per cycle
	maxResampledPoints = 100000
)

// Builder fits a natural cubic spline through raw lane waypoints and resamples it at
// a fixed arc-length step, computing heading and curvature at each sample.
type Builder struct {
	Step         float64 // resampling step, metres
	MinWaypoints int     // minimum distinct input waypoints
}

// NewBuilder validates the step and minimum-waypoint bounds.
func NewBuilder(step float64, minWaypoints int) (*Builder, error) {
	if step <= 0 {
		return nil, errors.Errorf("resampling step must be positive, got %f", step)
	}
	if minWaypoints < 3 {
		return nil, errors.Errorf("minimum waypoint count must be at least 3, got %d", minWaypoints)
	}
	return &Builder{Step: step, MinWaypoints: minWaypoints}, nil
}

// Build fits x(u) and y(u) against the cumulative chord length u of the deduplicated
// input and resamples at the fixed step. Heading comes from the spline's first
// derivatives, curvature from differentiating the derivatives numerically.
func (b *Builder) Build(raw []r2.Point) (*ReferencePath, error) {
	pts := dedupe(raw)
	if len(pts) < b.MinWaypoints {
		return nil, errors.Wrapf(ErrInsufficientWaypoints, "got %d distinct waypoints, need %d", len(pts), b.MinWaypoints)
	}

	us := make([]float64, len(pts))
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		if i > 0 {
			us[i] = us[i-1] + p.Sub(pts[i-1]).Norm()
		}
		xs[i] = p.X
		ys[i] = p.Y
	}

	var sx, sy interp.NaturalCubic
	if err := sx.Fit(us, xs); err != nil {
		return nil, errors.Wrap(err, "fitting x spline")
	}
	if err := sy.Fit(us, ys); err != nil {
		return nil, errors.Wrap(err, "fitting y spline")
	}

	total := us[len(us)-1]
	n := int(total/b.Step) + 1
	if n > maxResampledPoints {
		return nil, errors.Errorf("reference path of %.1fm at step %.2fm exceeds %d samples", total, b.Step, maxResampledPoints)
	}

	fdSettings := &fd.Settings{Formula: fd.Central}
	path := make(trajectory.Path, 0, n+1)
	for i := 0; i <= n; i++ {
		u := float64(i) * b.Step
		if u > total {
			u = total
		}
		dx := sx.PredictDerivative(u)
		dy := sy.PredictDerivative(u)
		ddx := fd.Derivative(sx.PredictDerivative, u, fdSettings)
		ddy := fd.Derivative(sy.PredictDerivative, u, fdSettings)
		speed2 := dx*dx + dy*dy
		curvature := 0.0
		if speed2 > 1e-12 {
			curvature = (dx*ddy - dy*ddx) / math.Pow(speed2, 1.5)
		}
		path = append(path, trajectory.Waypoint{
			Point:     r2.Point{X: sx.Predict(u), Y: sy.Predict(u)},
			Yaw:       math.Atan2(dy, dx),
			Curvature: curvature,
		})
	}

	// true cumulative arc length of the resampled polyline, dropping any
	// degenerate samples so S stays strictly increasing
	ref := &ReferencePath{Path: make(trajectory.Path, 0, len(path)), S: make([]float64, 0, len(path))}
	for _, wp := range path {
		if k := len(ref.Path); k > 0 {
			ds := wp.Point.Sub(ref.Path[k-1].Point).Norm()
			if ds < duplicateWaypointTol {
				continue
			}
			ref.S = append(ref.S, ref.S[k-1]+ds)
		} else {
			ref.S = append(ref.S, 0)
		}
		ref.Path = append(ref.Path, wp)
	}
	if len(ref.Path) < 2 {
		return nil, errors.Wrap(ErrInsufficientWaypoints, "resampling produced a degenerate path")
	}
	return ref, nil
}

func dedupe(raw []r2.Point) []r2.Point {
	out := make([]r2.Point, 0, len(raw))
	for _, p := range raw {
		if len(out) > 0 && p.Sub(out[len(out)-1]).Norm() < duplicateWaypointTol {
			continue
		}
		out = append(out, p)
	}
	return out
}
