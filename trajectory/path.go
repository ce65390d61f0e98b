// Package trajectory defines the Cartesian path model shared by the reference path
// builder, the planner, and the tracking controller, plus the continuity buffer that
// blends consecutive planning cycles into one committed path.
package trajectory

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Waypoint is one sample of a Cartesian path.
type Waypoint struct {
	Point     r2.Point
	Yaw       float64 // radians, world frame
	Curvature float64 // 1/m, signed, left positive
	Speed     float64 // m/s
}

// Path is an ordered sequence of waypoints describing planar motion.
type Path []Waypoint

// Length returns the total arc length of the path.
func (p Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		total += p[i].Point.Sub(p[i-1].Point).Norm()
	}
	return total
}

// ArcLengths returns the cumulative arc length at each waypoint, starting at 0.
func (p Path) ArcLengths() []float64 {
	if len(p) == 0 {
		return nil
	}
	s := make([]float64, len(p))
	for i := 1; i < len(p); i++ {
		s[i] = s[i-1] + p[i].Point.Sub(p[i-1].Point).Norm()
	}
	return s
}

// NearestIndex returns the index of the waypoint closest to pt and its distance.
// Returns (-1, +Inf) for an empty path.
func (p Path) NearestIndex(pt r2.Point) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for i := range p {
		if d := p[i].Point.Sub(pt).Norm(); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// Truncate returns the path limited to at most n waypoints, dropping from the front.
func (p Path) Truncate(n int) Path {
	if n <= 0 || len(p) <= n {
		return p
	}
	return p[len(p)-n:]
}

// String returns a short human-readable summary, suitable for debug logs.
func (p Path) String() string {
	if len(p) == 0 {
		return "Path(empty)"
	}
	first, last := p[0].Point, p[len(p)-1].Point
	return fmt.Sprintf("Path(%d wps, %.1fm, (%.1f,%.1f)->(%.1f,%.1f))",
		len(p), p.Length(), first.X, first.Y, last.X, last.Y)
}
