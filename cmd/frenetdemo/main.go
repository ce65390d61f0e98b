// Package main runs the planning engine against a synthetic road with a simple
// kinematic bicycle simulation standing in for the vehicle.
package main

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"go.viam.com/utils"

	"github.com/arcnav/frenetplan/navigator"
	"github.com/arcnav/frenetplan/vehicle"
)

var logger = golog.NewDevelopmentLogger("frenetdemo")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string  `flag:"config,usage=planner config file"`
	Cycles     int     `flag:"cycles,default=300,usage=planning cycles to simulate"`
	RoadLength float64 `flag:"road,usage=road length in meters (default 250)"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if argsParsed.RoadLength <= 0 {
		argsParsed.RoadLength = 250
	}

	cfg := navigator.DefaultConfig()
	if argsParsed.ConfigFile != "" {
		var err error
		if cfg, err = navigator.ReadConfig(argsParsed.ConfigFile); err != nil {
			return err
		}
	}
	return runSimulation(ctx, cfg, argsParsed, logger)
}

// sineRoad builds a gently weaving centerline.
func sineRoad(length float64) navigator.Lane {
	var pts []r2.Point
	for x := 0.0; x <= length; x += 5 {
		pts = append(pts, r2.Point{X: x, Y: 8 * math.Sin(x/40)})
	}
	return navigator.Lane{ID: 1, Waypoints: pts, Width: 4, LeftWidth: 4, RightWidth: 4}
}

func runSimulation(ctx context.Context, cfg navigator.Config, args Arguments, logger golog.Logger) error {
	clk := clock.NewMock()
	nav, err := navigator.NewWithClock(cfg, logger, clk)
	if err != nil {
		return err
	}

	lane := sineRoad(args.RoadLength)
	nav.UpdateLane(lane)
	nav.UpdateObstacles([]vehicle.Obstacle{
		{Center: r2.Point{X: 80, Y: 8 * math.Sin(80.0 / 40)}, Radius: 1.0},
	})

	state := vehicle.State{Position: lane.Waypoints[0], Yaw: 0.2, Speed: 5}
	dt := cfg.NominalCycleSec

	for i := 0; i < args.Cycles; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i == 100 {
			logger.Info("requesting lane change to the left neighbor")
			nav.SetTargetLane(2)
		}

		nav.UpdateOdometry(state)
		cmd, err := nav.Advance(ctx)
		if err != nil {
			logger.Warnw("cycle recovered to stop", "cycle", i, "error", err)
		}

		state = integrate(state, cmd.Acceleration, cmd.SteeringAngle, cfg.Vehicle.Wheelbase, dt)
		clk.Add(time.Duration(dt * float64(time.Second)))

		if i%50 == 0 {
			diag := nav.Diagnostics()
			logger.Infow("cycle",
				"i", i,
				"pos", state.Position,
				"speed", state.Speed,
				"lane", diag.CurrentLane,
				"feasible", diag.FeasibleCount,
				"cost_min", diag.CostMin,
			)
		}
	}
	logger.Infof("simulation finished at (%.1f, %.1f), %.1f m/s", state.Position.X, state.Position.Y, state.Speed)
	return nil
}

// integrate steps a kinematic bicycle model.
func integrate(s vehicle.State, accel, steering, wheelbase, dt float64) vehicle.State {
	s.Position = s.Position.Add(r2.Point{
		X: s.Speed * math.Cos(s.Yaw) * dt,
		Y: s.Speed * math.Sin(s.Yaw) * dt,
	})
	s.YawRate = s.Speed / wheelbase * math.Tan(steering)
	s.Yaw += s.YawRate * dt
	s.Speed = math.Max(s.Speed+accel*dt, 0)
	s.Accel = accel
	return s
}
