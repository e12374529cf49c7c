// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.17
//

// Fixed-step trajectory integration.

package gotraj

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mkhts/gotraj/internal/logging"
)

// Calculation constants for trajectory integration
const (
	MAX_STEPS = 1000000 // Default step limit
	MAX_ELEV  = 90.0    // Maximum launch elevation [deg]
)

// Run outcomes reported to a Recorder
const (
	OutcomeOK            = "ok"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeLimitExceeded = "limit_exceeded"
	OutcomeError         = "error"
)

// Recorder receives one record per Simulate call (see internal/observability)
type Recorder interface {
	RecordRun(outcome string, steps int, elapsed time.Duration, rangeM float64)
}

// SimOpt contains the firing parameters and integration settings
type SimOpt struct {
	V0        float64        // Muzzle velocity [m/s]
	Elevation float64        // Launch elevation [deg]
	Dt        float64        // Time step [s]
	MaxSteps  int            // Step limit guarding runaway integration
	Gravity   float64        // [m/s^2]
	Logger    logging.Logger // Run level log (optional)
	Recorder  Recorder       // Run metrics (optional)
}

// NewSimOpt creates a SimOpt with default values
func NewSimOpt() *SimOpt {
	return &SimOpt{
		V0:        816,       // Muzzle velocity [m/s]
		Elevation: 45,        // [deg]
		Dt:        0.1,       // [s]
		MaxSteps:  MAX_STEPS, // Step limit
		Gravity:   G0,        // Standard gravity
		Logger:    nil,       // No logging
		Recorder:  nil,       // No metrics
	}
}

// Position and velocity at one instant
type State struct {
	Pos Vec3
	Vel Vec3
}

// Launch state: at ground height, velocity in the X-Y plane
func InitialState(v0, elevDeg, height0 float64) State {
	phi := ToRad(elevDeg)
	return State{
		Pos: Vec3{X: 0, Y: height0, Z: 0},
		Vel: Vec3{X: v0 * math.Cos(phi), Y: v0 * math.Sin(phi), Z: 0},
	}
}

// Why integration stopped
type Termination int

const (
	ReasonGround   Termination = iota // Y dropped below 0
	ReasonBackward                    // X became negative
)

func (t Termination) String() string {
	switch t {
	case ReasonGround:
		return "ground"
	case ReasonBackward:
		return "backward"
	default:
		return "UNKNOWN!"
	}
}

// Simulate integrates the trajectory until the projectile drops below Y=0 or moves behind X=0.
// The returned trajectory excludes the launch point and keeps the first sample below ground.
// No trajectory is returned on error.
func Simulate(
	ctx context.Context,
	atm *Atmosphere, // Air model
	proj *Projectile, // Shell
	drag *DragOpt, // Drag coefficients (nil for defaults)
	opt *SimOpt, // Firing parameters
) (*Trajectory, error) {

	if opt == nil {
		opt = NewSimOpt()
	}
	if drag == nil {
		drag = NewDragOpt()
	}
	log := opt.Logger
	if log == nil {
		log = logging.Noop()
	}

	ctx, span := otel.Tracer("github.com/mkhts/gotraj").Start(ctx, "gotraj.Simulate",
		trace.WithAttributes(
			attribute.Float64("v0", opt.V0),
			attribute.Float64("elevation_deg", opt.Elevation),
			attribute.Float64("dt", opt.Dt),
		))
	defer span.End()

	start := time.Now()
	record := func(outcome string, steps int, rng float64) {
		if opt.Recorder != nil {
			opt.Recorder.RecordRun(outcome, steps, time.Since(start), rng)
		}
	}
	fail := func(outcome string, steps int, err error) (*Trajectory, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn(ctx, "simulation failed", logging.String("outcome", outcome), logging.Int("steps", steps), logging.Err(err))
		record(outcome, steps, 0)
		return nil, err
	}

	if err := validateRun(atm, proj, opt); err != nil {
		return fail(OutcomeInvalidInput, 0, err)
	}
	if s := atm.Sounding; s != nil && !s.Valid() {
		log.Warn(ctx, "meteo data invalid, using standard atmosphere", logging.Err(s.Err()))
	}
	log.Debug(ctx, "simulation started",
		logging.Float("v0", opt.V0),
		logging.Float("elevation_deg", opt.Elevation),
		logging.Float("dt", opt.Dt),
		logging.Bool("sounding", atm.HasSounding()),
		logging.String("pressure_model", atm.Opt.Pressure.String()))

	st := InitialState(opt.V0, opt.Elevation, atm.Height0)
	pts := make([]Vec3, 0, 1024)
	var reason Termination
	for {
		// Guard against backward motion
		if st.Pos.X < 0 {
			reason = ReasonBackward
			break
		}
		if len(pts) >= opt.MaxSteps {
			err := fmt.Errorf("%w: %d steps without impact", ErrTerminationLimitExceeded, opt.MaxSteps)
			return fail(OutcomeLimitExceeded, len(pts), err)
		}

		next, err := Step(st, atm, proj, drag, opt.Gravity, opt.Dt)
		if err != nil {
			return fail(OutcomeError, len(pts), fmt.Errorf("step %d failed: %w", len(pts)+1, err))
		}
		st = next
		pts = append(pts, st.Pos)
		PrintD(2, "%6d t=%8.2f pos=%s vel=%s\n", len(pts), float64(len(pts))*opt.Dt, st.Pos, st.Vel)

		if st.Pos.Y < 0 {
			reason = ReasonGround
			break
		}
	}

	traj := &Trajectory{Points: pts, Dt: opt.Dt, Reason: reason}
	span.SetAttributes(
		attribute.Int("steps", len(pts)),
		attribute.Float64("range_m", traj.Range()),
		attribute.String("termination", reason.String()))
	log.Info(ctx, "simulation finished",
		logging.Int("steps", len(pts)),
		logging.Float("range_m", traj.Range()),
		logging.Float("drift_m", traj.Drift()),
		logging.Float("max_height_m", traj.MaxHeight()),
		logging.String("termination", reason.String()))
	record(OutcomeOK, len(pts), traj.Range())
	return traj, nil
}

// Step advances one time step: drag, then gravity, then position.
func Step(st State, atm *Atmosphere, proj *Projectile, drag *DragOpt, gravity, dt float64) (State, error) {
	acc, err := proj.DragAccel(st.Pos, st.Vel, atm, drag)
	if err != nil {
		return st, err
	}
	vel := st.Vel.Add(acc.Mul(dt))
	vel = vel.Sub(Vec3{Y: gravity}.Mul(dt))
	pos := st.Pos.Add(vel.Mul(dt))
	return State{Pos: pos, Vel: vel}, nil
}

func validateRun(atm *Atmosphere, proj *Projectile, opt *SimOpt) error {
	if atm == nil {
		return errors.New("atmosphere is not set")
	}
	if atm.Opt == nil {
		return errors.New("atmosphere options are not set")
	}
	if proj == nil {
		return errors.New("projectile is not set")
	}
	switch {
	case !(opt.V0 > 0):
		return invalid("v0", opt.V0, "must be greater than 0")
	case !(opt.Elevation >= 0 && opt.Elevation <= MAX_ELEV):
		return invalid("elevation", opt.Elevation, "must be between 0 and 90 degrees")
	case !(atm.Height0 > 0):
		return invalid("height0", atm.Height0, "must be greater than 0")
	case !(opt.Dt > 0):
		return invalid("dt", opt.Dt, "must be greater than 0")
	case opt.MaxSteps <= 0:
		return invalid("max_steps", float64(opt.MaxSteps), "must be greater than 0")
	case !(proj.Mass > 0):
		return invalid("mass", proj.Mass, "must be greater than 0")
	case !(proj.Radius >= 0):
		return invalid("radius", proj.Radius, "must not be negative")
	}
	return nil
}
