// Package vehicle holds the planar vehicle and obstacle state types shared by the
// frame converter, planner, and tracking controller.
package vehicle

import (
	"math"

	"github.com/golang/geo/r2"
)

// State is the pose and motion of the vehicle body reference point (baselink),
// updated once per localization tick and immutable within a planning cycle.
type State struct {
	Position r2.Point
	Yaw      float64 // radians, world frame
	Speed    float64 // m/s, along heading
	Accel    float64 // m/s^2, along heading
	YawRate  float64 // rad/s
}

// FrontAxle returns the state offset along the heading by the wheelbase. The tracking
// controller references its geometric law to the front axle rather than the baselink.
func (s State) FrontAxle(wheelbase float64) State {
	front := s
	front.Position = r2.Point{
		X: s.Position.X + wheelbase*math.Cos(s.Yaw),
		Y: s.Position.Y + wheelbase*math.Sin(s.Yaw),
	}
	return front
}

// Obstacle is a read-only planar obstacle snapshot for one planning cycle. Footprints
// are canonically circles; polygon inputs are reduced to an enclosing circle.
type Obstacle struct {
	Center   r2.Point
	Radius   float64
	Velocity r2.Point
}

// ObstacleFromPolygon builds an Obstacle whose circle encloses all polygon vertices.
func ObstacleFromPolygon(vertices []r2.Point) Obstacle {
	if len(vertices) == 0 {
		return Obstacle{}
	}
	var centroid r2.Point
	for _, v := range vertices {
		centroid = centroid.Add(v)
	}
	centroid = centroid.Mul(1 / float64(len(vertices)))
	radius := 0.0
	for _, v := range vertices {
		if d := v.Sub(centroid).Norm(); d > radius {
			radius = d
		}
	}
	return Obstacle{Center: centroid, Radius: radius}
}

// Clearance returns the distance from p to the obstacle's inflated footprint
// boundary. Negative values mean p is inside the inflated footprint.
func (o Obstacle) Clearance(p r2.Point, inflation float64) float64 {
	return p.Sub(o.Center).Norm() - o.Radius - inflation
}
