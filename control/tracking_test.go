package control

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/arcnav/frenetplan/trajectory"
	"github.com/arcnav/frenetplan/vehicle"
)

func testTrackerConfig() TrackerConfig {
	return TrackerConfig{
		CrossTrackGain: 1.0,
		SpeedFloor:     1.0,
		MaxSteering:    0.6,
		MaxLookahead:   5.0,
		Speed:          PIDConfig{Kp: 1.0, Ki: 0.1, IntegralLimit: 2, OutputLimit: 3},
	}
}

func testStraightPath(n int, speed float64) trajectory.Path {
	p := make(trajectory.Path, n)
	for i := range p {
		p[i] = trajectory.Waypoint{Point: r2.Point{X: float64(i)}, Speed: speed}
	}
	return p
}

func TestTrackerValidation(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cfg := testTrackerConfig()
	cfg.CrossTrackGain = 0
	_, err := NewTracker(cfg, logger)
	test.That(t, err, test.ShouldNotBeNil)

	cfg = testTrackerConfig()
	cfg.Speed = PIDConfig{}
	_, err = NewTracker(cfg, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCommandOnCenterline(t *testing.T) {
	tr, err := NewTracker(testTrackerConfig(), golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	front := vehicle.State{Position: r2.Point{X: 3, Y: 0}, Yaw: 0, Speed: 10}
	cmd, err := tr.Command(testStraightPath(20, 10), front, 0.1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmd.SteeringAngle, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, cmd.Acceleration, test.ShouldAlmostEqual, 0, 0.1)
	test.That(t, cmd.TargetSpeed, test.ShouldEqual, 10.0)
}

func TestCommandSteersBackToPath(t *testing.T) {
	tr, err := NewTracker(testTrackerConfig(), golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	// left of the path: steer right (negative)
	left := vehicle.State{Position: r2.Point{X: 3, Y: 1}, Yaw: 0, Speed: 10}
	cmd, err := tr.Command(testStraightPath(20, 10), left, 0.1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmd.SteeringAngle, test.ShouldBeLessThan, 0.0)

	// right of the path: steer left (positive)
	tr.Reset()
	right := vehicle.State{Position: r2.Point{X: 3, Y: -1}, Yaw: 0, Speed: 10}
	cmd, err = tr.Command(testStraightPath(20, 10), right, 0.1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmd.SteeringAngle, test.ShouldBeGreaterThan, 0.0)
}

func TestCommandBetweenWaypoints(t *testing.T) {
	tr, err := NewTracker(testTrackerConfig(), golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	// purely longitudinal offset from the nearest waypoint is not lateral error
	front := vehicle.State{Position: r2.Point{X: 3.4, Y: 0}, Yaw: 0, Speed: 10}
	cmd, err := tr.Command(testStraightPath(20, 10), front, 0.1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmd.SteeringAngle, test.ShouldAlmostEqual, 0, 1e-9)
}

func TestCommandHeadingError(t *testing.T) {
	tr, err := NewTracker(testTrackerConfig(), golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	// on the path but yawed right of it: steer left
	yawed := vehicle.State{Position: r2.Point{X: 3, Y: 0}, Yaw: -0.3, Speed: 10}
	cmd, err := tr.Command(testStraightPath(20, 10), yawed, 0.1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmd.SteeringAngle, test.ShouldAlmostEqual, 0.3, 1e-6)
}

func TestCommandSteeringClamped(t *testing.T) {
	tr, err := NewTracker(testTrackerConfig(), golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	yawed := vehicle.State{Position: r2.Point{X: 3, Y: 0}, Yaw: -2.0, Speed: 10}
	cmd, err := tr.Command(testStraightPath(20, 10), yawed, 0.1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmd.SteeringAngle, test.ShouldEqual, 0.6)
}

func TestCommandNoValidTarget(t *testing.T) {
	tr, err := NewTracker(testTrackerConfig(), golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	_, err = tr.Command(nil, vehicle.State{}, 0.1)
	test.That(t, errors.Is(err, ErrNoValidTarget), test.ShouldBeTrue)

	far := vehicle.State{Position: r2.Point{X: 3, Y: 50}}
	_, err = tr.Command(testStraightPath(20, 10), far, 0.1)
	test.That(t, errors.Is(err, ErrNoValidTarget), test.ShouldBeTrue)
}

func TestStopCommand(t *testing.T) {
	tr, err := NewTracker(testTrackerConfig(), golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	cmd := tr.Stop(10, 0.1)
	test.That(t, cmd.TargetSpeed, test.ShouldEqual, 0.0)
	test.That(t, cmd.SteeringAngle, test.ShouldEqual, 0.0)
	test.That(t, cmd.Acceleration, test.ShouldBeLessThan, 0.0)

	cmd = tr.Stop(0, 0.1)
	test.That(t, cmd.TargetSpeed, test.ShouldEqual, 0.0)
}
