// Package refpath builds smooth, arc-length-parameterized reference paths from raw
// lane waypoints and provides closest-point projection onto them.
package refpath

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/arcnav/frenetplan/trajectory"
	"github.com/arcnav/frenetplan/utils"
)

// ErrProjectionFailed is returned when a position cannot be projected onto any
// segment of the reference path within the allowed lateral search distance. Upstream
// treats it as "path invalid" and triggers lane re-selection.
var ErrProjectionFailed = errors.New("position does not project onto reference path")

// ReferencePath is a resampled smooth curve through lane waypoints. S holds the
// cumulative arc length at each waypoint and is strictly increasing.
type ReferencePath struct {
	Path trajectory.Path
	S    []float64
}

// Length returns the arc length spanned by the path, measured from S[0].
func (r *ReferencePath) Length() float64 {
	if len(r.S) == 0 {
		return 0
	}
	return r.S[len(r.S)-1] - r.S[0]
}

// StartS returns the arc length of the first waypoint. Zero for a freshly built path;
// local windows retain the arc lengths of the path they were cut from.
func (r *ReferencePath) StartS() float64 {
	if len(r.S) == 0 {
		return 0
	}
	return r.S[0]
}

// EndS returns the arc length of the last waypoint.
func (r *ReferencePath) EndS() float64 {
	if len(r.S) == 0 {
		return 0
	}
	return r.S[len(r.S)-1]
}

// Interpolate returns the waypoint at arc length s, linearly interpolated between the
// two enclosing samples. s is clamped to the path's span.
func (r *ReferencePath) Interpolate(s float64) trajectory.Waypoint {
	n := len(r.Path)
	if n == 0 {
		return trajectory.Waypoint{}
	}
	if s <= r.S[0] {
		return r.Path[0]
	}
	if s >= r.S[n-1] {
		return r.Path[n-1]
	}
	i := sort.SearchFloat64s(r.S, s)
	// S[i-1] < s <= S[i]
	a, b := r.Path[i-1], r.Path[i]
	t := (s - r.S[i-1]) / (r.S[i] - r.S[i-1])
	dyaw := utils.WrapAngle(b.Yaw - a.Yaw)
	return trajectory.Waypoint{
		Point:     a.Point.Add(b.Point.Sub(a.Point).Mul(t)),
		Yaw:       utils.WrapAngle(a.Yaw + t*dyaw),
		Curvature: utils.Lerp(a.Curvature, b.Curvature, t),
		Speed:     utils.Lerp(a.Speed, b.Speed, t),
	}
}

// Project returns the arc length s of the closest point on the path to p and the
// signed lateral offset d (positive left of the path direction). maxDist bounds the
// lateral search; beyond it ErrProjectionFailed is returned.
func (r *ReferencePath) Project(p r2.Point, maxDist float64) (s, d float64, err error) {
	if len(r.Path) < 2 {
		return 0, 0, errors.Wrap(ErrProjectionFailed, "reference path has fewer than 2 waypoints")
	}
	bestDist := math.Inf(1)
	bestS := 0.0
	bestSide := 1.0
	for i := 1; i < len(r.Path); i++ {
		a, b := r.Path[i-1].Point, r.Path[i].Point
		ab := b.Sub(a)
		abLen2 := ab.Dot(ab)
		if abLen2 < 1e-12 {
			continue
		}
		t := utils.Clamp(p.Sub(a).Dot(ab)/abLen2, 0, 1)
		closest := a.Add(ab.Mul(t))
		dist := p.Sub(closest).Norm()
		if dist < bestDist {
			bestDist = dist
			bestS = r.S[i-1] + t*(r.S[i]-r.S[i-1])
			if ab.Cross(p.Sub(a)) >= 0 {
				bestSide = 1
			} else {
				bestSide = -1
			}
		}
	}
	if bestDist > maxDist {
		return 0, 0, errors.Wrapf(ErrProjectionFailed, "nearest point is %.2fm away, max %.2fm", bestDist, maxDist)
	}
	return bestS, bestSide * bestDist, nil
}
