package trajectory

import (
	"math"

	"github.com/pkg/errors"

	"github.com/arcnav/frenetplan/utils"
)

// Buffer is the rolling window of committed waypoints. Each cycle the newly selected
// trajectory is concatenated onto the retained tail so the vehicle never receives a
// commanded jump, and a short replanning outage can be bridged by what remains.
type Buffer struct {
	maxSize, minSize int
	maxSep, minSep   float64
	path             Path
}

// NewBuffer validates the size and spacing bounds and returns an empty buffer.
func NewBuffer(maxSize, minSize int, maxSep, minSep float64) (*Buffer, error) {
	if maxSize <= 0 {
		return nil, errors.Errorf("buffer max size must be positive, got %d", maxSize)
	}
	if minSize < 0 || minSize > maxSize {
		return nil, errors.Errorf("buffer min size %d must be within [0, %d]", minSize, maxSize)
	}
	if minSep <= 0 || maxSep <= minSep {
		return nil, errors.Errorf("waypoint separation bounds must satisfy 0 < min < max, got [%f, %f]", minSep, maxSep)
	}
	return &Buffer{maxSize: maxSize, minSize: minSize, maxSep: maxSep, minSep: minSep}, nil
}

// Path returns the committed path. Callers must treat it as read-only.
func (b *Buffer) Path() Path {
	return b.path
}

// Len returns the number of committed waypoints.
func (b *Buffer) Len() int {
	return len(b.path)
}

// NeedsExtension reports whether the buffer has fewer waypoints than its configured
// minimum and should be extended on the next cycle.
func (b *Buffer) NeedsExtension() bool {
	return len(b.path) < b.minSize
}

// Reset discards all committed waypoints. Used when the reference lane is replaced or
// planning restarts from the measured vehicle state.
func (b *Buffer) Reset() {
	b.path = nil
}

// Advance drops waypoints already passed by the vehicle, keeping nearestIdx onward.
func (b *Buffer) Advance(nearestIdx int) {
	if nearestIdx <= 0 {
		return
	}
	if nearestIdx >= len(b.path) {
		b.path = nil
		return
	}
	b.path = b.path[nearestIdx:]
}

// Retain keeps only the first n committed waypoints and drops the rest of the tail.
// Callers use it to cut the committed path back to a short bridge ahead of the
// vehicle so everything beyond is replanned.
func (b *Buffer) Retain(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(b.path) {
		b.path = b.path[:n]
	}
}

// Concat appends the portion of next beyond the retained tail, enforcing that
// consecutive waypoints are spaced within [minSeparation, maxSeparation]: points
// closer than the minimum are merged (skipped), gaps wider than the maximum are
// bridged by interpolation. The result is truncated to the maximum size, oldest
// waypoints dropped first, and becomes the new committed path.
func (b *Buffer) Concat(next Path) Path {
	if len(next) == 0 {
		return b.path
	}
	out := b.path
	start := 0
	if len(out) == 0 {
		out = Path{next[0]}
		start = 1
	}
	for _, wp := range next[start:] {
		last := out[len(out)-1]
		gap := wp.Point.Sub(last.Point).Norm()
		if gap < b.minSep {
			continue
		}
		if gap > b.maxSep {
			out = append(out, interpolateGap(last, wp, b.maxSep)...)
		}
		out = append(out, wp)
	}
	b.path = out.Truncate(b.maxSize)
	return b.path
}

// interpolateGap returns intermediate waypoints between a and c so that no consecutive
// pair is farther apart than maxSep. The returned slice excludes both endpoints.
func interpolateGap(a, c Waypoint, maxSep float64) []Waypoint {
	gap := c.Point.Sub(a.Point).Norm()
	n := int(math.Ceil(gap/maxSep)) - 1
	if n <= 0 {
		return nil
	}
	pts := make([]Waypoint, 0, n)
	dyaw := utils.WrapAngle(c.Yaw - a.Yaw)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n+1)
		pts = append(pts, Waypoint{
			Point:     a.Point.Add(c.Point.Sub(a.Point).Mul(t)),
			Yaw:       utils.WrapAngle(a.Yaw + t*dyaw),
			Curvature: utils.Lerp(a.Curvature, c.Curvature, t),
			Speed:     utils.Lerp(a.Speed, c.Speed, t),
		})
	}
	return pts
}
