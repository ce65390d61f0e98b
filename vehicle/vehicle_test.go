package vehicle

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestFrontAxle(t *testing.T) {
	s := State{Position: r2.Point{X: 1, Y: 2}, Yaw: math.Pi / 2, Speed: 5}
	front := s.FrontAxle(2.5)
	test.That(t, front.Position.X, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, front.Position.Y, test.ShouldAlmostEqual, 4.5, 1e-9)
	test.That(t, front.Speed, test.ShouldEqual, 5.0)
	test.That(t, front.Yaw, test.ShouldEqual, s.Yaw)
}

func TestObstacleFromPolygon(t *testing.T) {
	square := []r2.Point{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}
	o := ObstacleFromPolygon(square)
	test.That(t, o.Center.X, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, o.Center.Y, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, o.Radius, test.ShouldAlmostEqual, math.Sqrt2, 1e-9)

	test.That(t, ObstacleFromPolygon(nil).Radius, test.ShouldEqual, 0.0)
}

func TestObstacleClearance(t *testing.T) {
	o := Obstacle{Center: r2.Point{X: 0, Y: 0}, Radius: 1}
	test.That(t, o.Clearance(r2.Point{X: 3, Y: 0}, 0), test.ShouldAlmostEqual, 2, 1e-9)
	test.That(t, o.Clearance(r2.Point{X: 3, Y: 0}, 1), test.ShouldAlmostEqual, 1, 1e-9)
	// inside the inflated footprint
	test.That(t, o.Clearance(r2.Point{X: 0.5, Y: 0}, 0), test.ShouldBeLessThan, 0.0)
}
