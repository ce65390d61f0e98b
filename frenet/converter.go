// Package frenet converts between Cartesian vehicle states and road-aligned Frenet
// coordinates, and provides the polynomial trajectories candidates are built from.
package frenet

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/arcnav/frenetplan/refpath"
	"github.com/arcnav/frenetplan/trajectory"
	"github.com/arcnav/frenetplan/utils"
	"github.com/arcnav/frenetplan/vehicle"
)

// State is a vehicle state expressed along a reference path: longitudinal arc length
// s and lateral offset d (positive left), with their first and second time
// derivatives.
type State struct {
	S, SDot, SDDot float64
	D, DDot, DDDot float64
}

// ToFrenet projects the vehicle onto the reference path. The longitudinal and lateral
// rates split the body speed by the heading offset from the local path tangent; the
// same split is applied to the body acceleration. Fails when the position cannot be
// projected within maxProjection metres.
func ToFrenet(vs vehicle.State, ref *refpath.ReferencePath, maxProjection float64) (State, error) {
	s, d, err := ref.Project(vs.Position, maxProjection)
	if err != nil {
		return State{}, err
	}
	tangent := ref.Interpolate(s)
	dyaw := utils.WrapAngle(vs.Yaw - tangent.Yaw)
	return State{
		S:     s,
		SDot:  vs.Speed * math.Cos(dyaw),
		SDDot: vs.Accel * math.Cos(dyaw),
		D:     d,
		DDot:  vs.Speed * math.Sin(dyaw),
		DDDot: vs.Accel * math.Sin(dyaw),
	}, nil
}

// ToCartesian converts a time-ordered sequence of Frenet states into a Cartesian
// path: each (s, d) is offset from the reference along the local normal, heading and
// curvature are recovered by finite differences, and speed is the magnitude of the
// Frenet rates. Samples beyond the reference path's end are truncated.
func ToCartesian(states []State, ref *refpath.ReferencePath) (trajectory.Path, error) {
	path := make(trajectory.Path, 0, len(states))
	for _, st := range states {
		if st.S < ref.StartS() || st.S > ref.EndS() {
			break
		}
		tangent := ref.Interpolate(st.S)
		normal := r2.Point{X: -math.Sin(tangent.Yaw), Y: math.Cos(tangent.Yaw)}
		path = append(path, trajectory.Waypoint{
			Point: tangent.Point.Add(normal.Mul(st.D)),
			Speed: math.Hypot(st.SDot, st.DDot),
		})
	}
	if len(path) < 2 {
		return nil, errors.New("frenet path does not overlap reference path")
	}

	// heading from successive points, curvature as yaw rate over arc length
	for i := 0; i < len(path)-1; i++ {
		diff := path[i+1].Point.Sub(path[i].Point)
		path[i].Yaw = math.Atan2(diff.Y, diff.X)
	}
	path[len(path)-1].Yaw = path[len(path)-2].Yaw
	for i := 0; i < len(path)-1; i++ {
		ds := path[i+1].Point.Sub(path[i].Point).Norm()
		if ds > 1e-9 {
			path[i].Curvature = utils.WrapAngle(path[i+1].Yaw-path[i].Yaw) / ds
		}
	}
	path[len(path)-1].Curvature = path[len(path)-2].Curvature
	return path, nil
}
