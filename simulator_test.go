package gotraj

import (
	"bytes"
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/mkhts/gotraj/internal/logging"
)

// Reference firing: 155 mm shell, 816 m/s at 45 deg from 691 m
func refRun(t *testing.T, snd *Sounding) *Trajectory {
	t.Helper()
	traj, err := Simulate(context.Background(), refAtmosphere(snd), NewProjectile(0.077, 42, 0), nil, NewSimOpt())
	if err != nil {
		t.Fatalf("Simulate(): %v", err)
	}
	return traj
}

func TestSimulateReferenceShot(t *testing.T) {
	traj := refRun(t, nil)
	n := traj.Len()
	if n < 2 {
		t.Fatalf("Len() = %d", n)
	}
	if traj.Reason != ReasonGround {
		t.Fatalf("Reason = %s, want ground", traj.Reason)
	}
	if !(traj.Points[n-1].Y < 0) {
		t.Fatalf("last point %s is not below ground", traj.Points[n-1])
	}
	for i, p := range traj.Points[:n-1] {
		if p.Y < 0 {
			t.Fatalf("point %d %s below ground before the last sample", i, p)
		}
	}

	// Height rises to a single apex, then falls
	apex := 0
	for i, p := range traj.Points {
		if p.Y > traj.Points[apex].Y {
			apex = i
		}
	}
	for i := 1; i <= apex; i++ {
		if !(traj.Points[i].Y > traj.Points[i-1].Y) {
			t.Fatalf("height not rising at %d before apex %d", i, apex)
		}
	}
	for i := apex + 1; i < n; i++ {
		if !(traj.Points[i].Y < traj.Points[i-1].Y) {
			t.Fatalf("height not falling at %d after apex %d", i, apex)
		}
	}
	if traj.TimeToApex() != float64(apex+1)*traj.Dt {
		t.Fatalf("TimeToApex() = %v, want %v", traj.TimeToApex(), float64(apex+1)*traj.Dt)
	}

	if traj.Drift() != 0 {
		t.Fatalf("Drift() = %v without wind", traj.Drift())
	}
	vacuum := 816.0 * 816.0 / G0
	if !(traj.Range() > 5000 && traj.Range() < vacuum) {
		t.Fatalf("Range() = %v, want between 5000 and %v", traj.Range(), vacuum)
	}
}

func TestSimulateVacuum(t *testing.T) {
	drag := NewDragOpt()
	drag.AxialArea = 0
	opt := NewSimOpt()
	opt.V0 = 100
	opt.Elevation = 45
	opt.Dt = 0.001
	atm := NewAtmosphere(15, 1013.25, 1e-6, nil, nil)

	traj, err := Simulate(context.Background(), atm, NewProjectile(0, 10, 0), drag, opt)
	if err != nil {
		t.Fatalf("Simulate(): %v", err)
	}
	want := opt.V0 * opt.V0 / G0
	if !scalar.EqualWithinAbs(traj.Range(), want, 0.5) {
		t.Fatalf("Range() = %v, want %v", traj.Range(), want)
	}
	if !scalar.EqualWithinAbs(traj.MaxHeight(), want/4, 0.5) {
		t.Fatalf("MaxHeight() = %v, want %v", traj.MaxHeight(), want/4)
	}
}

func TestSimulateIsDeterministic(t *testing.T) {
	a := refRun(t, NewSoundingStrings(meteoRows))
	b := refRun(t, NewSoundingStrings(meteoRows))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two runs with identical inputs differ")
	}
}

func TestSimulateRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(atm *Atmosphere, p *Projectile, o *SimOpt)
	}{
		{"v0", func(_ *Atmosphere, _ *Projectile, o *SimOpt) { o.V0 = 0 }},
		{"v0", func(_ *Atmosphere, _ *Projectile, o *SimOpt) { o.V0 = math.NaN() }},
		{"elevation", func(_ *Atmosphere, _ *Projectile, o *SimOpt) { o.Elevation = -1 }},
		{"elevation", func(_ *Atmosphere, _ *Projectile, o *SimOpt) { o.Elevation = 91 }},
		{"height0", func(a *Atmosphere, _ *Projectile, _ *SimOpt) { a.Height0 = 0 }},
		{"dt", func(_ *Atmosphere, _ *Projectile, o *SimOpt) { o.Dt = 0 }},
		{"max_steps", func(_ *Atmosphere, _ *Projectile, o *SimOpt) { o.MaxSteps = 0 }},
		{"mass", func(_ *Atmosphere, p *Projectile, _ *SimOpt) { p.Mass = 0 }},
		{"radius", func(_ *Atmosphere, p *Projectile, _ *SimOpt) { p.Radius = -0.1 }},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			atm := refAtmosphere(nil)
			proj := NewProjectile(0.077, 42, 0)
			opt := NewSimOpt()
			tc.mutate(atm, proj, opt)

			traj, err := Simulate(context.Background(), atm, proj, nil, opt)
			if traj != nil {
				t.Fatalf("Simulate() returned a trajectory for invalid input")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Simulate() err = %v, want *ValidationError", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("ValidationError.Field = %q, want %q", verr.Field, tc.field)
			}
		})
	}
}

func TestSimulateRejectsMissingModels(t *testing.T) {
	if _, err := Simulate(context.Background(), nil, NewProjectile(0.077, 42, 0), nil, nil); err == nil {
		t.Fatalf("Simulate() with nil atmosphere error = nil")
	}
	if _, err := Simulate(context.Background(), refAtmosphere(nil), nil, nil, nil); err == nil {
		t.Fatalf("Simulate() with nil projectile error = nil")
	}
}

func TestSimulateStepLimit(t *testing.T) {
	opt := NewSimOpt()
	opt.MaxSteps = 10
	traj, err := Simulate(context.Background(), refAtmosphere(nil), NewProjectile(0.077, 42, 0), nil, opt)
	if !errors.Is(err, ErrTerminationLimitExceeded) {
		t.Fatalf("Simulate() err = %v, want ErrTerminationLimitExceeded", err)
	}
	if traj != nil {
		t.Fatalf("Simulate() returned %d points past the step limit", traj.Len())
	}
}

func TestSimulateBackward(t *testing.T) {
	drag := NewDragOpt()
	drag.CwSubsonic = 1e5
	opt := NewSimOpt()
	opt.V0 = 10
	atm := NewAtmosphere(15, 1013.25, 1000, nil, nil)

	traj, err := Simulate(context.Background(), atm, NewProjectile(0.077, 42, 0), drag, opt)
	if err != nil {
		t.Fatalf("Simulate(): %v", err)
	}
	if traj.Reason != ReasonBackward {
		t.Fatalf("Reason = %s, want backward", traj.Reason)
	}
	if traj.Len() != 1 || !(traj.Impact().X < 0) || !(traj.Impact().Y > 0) {
		t.Fatalf("Points = %v, want a single point behind the gun", traj.Points)
	}
}

func TestSimulateCrosswindDrift(t *testing.T) {
	opt := NewSimOpt()
	opt.V0 = 300
	traj, err := Simulate(context.Background(), refAtmosphere(NewSoundingStrings(crosswindRows)), NewProjectile(0.077, 42, 0), nil, opt)
	if err != nil {
		t.Fatalf("Simulate(): %v", err)
	}
	if !(traj.Drift() > 0) {
		t.Fatalf("Drift() = %v, want > 0 with wind from the left", traj.Drift())
	}
}

func TestSimulateInvalidSoundingIgnored(t *testing.T) {
	bad := NewSoundingStrings([][]string{meteoRows[1], {"1000", "10.4", "34", "8", "22"}})
	a := refRun(t, bad)
	b := refRun(t, nil)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("invalid sounding changed the trajectory")
	}
}

func TestSimulateNonFiniteSoundingIgnored(t *testing.T) {
	bad := NewSoundingStrings([][]string{meteoRows[1], {"NaN", "Inf", "0", "0", "0"}})
	a := refRun(t, bad)
	b := refRun(t, nil)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("sounding with non-finite cells changed the trajectory")
	}
}

func TestSimulateSoundingChangesTrajectory(t *testing.T) {
	a := refRun(t, NewSoundingStrings(meteoRows))
	b := refRun(t, nil)
	if a.Range() == b.Range() {
		t.Fatalf("Range() = %v with and without sounding", a.Range())
	}
}

func TestStepFollowsIntegrationOrder(t *testing.T) {
	drag := NewDragOpt()
	drag.AxialArea = 0
	st := State{Pos: Vec3{X: 0, Y: 100}, Vel: Vec3{X: 10, Y: 10}}
	next, err := Step(st, refAtmosphere(nil), NewProjectile(0, 1, 0), drag, G0, 0.5)
	if err != nil {
		t.Fatalf("Step(): %v", err)
	}
	wantVel := Vec3{X: 10, Y: 10 - G0*0.5}
	if next.Vel.Sub(wantVel).Norm() > 1e-12 {
		t.Fatalf("Step().Vel = %s, want %s", next.Vel, wantVel)
	}
	// Position uses the updated velocity
	wantPos := Vec3{X: 5, Y: 100 + wantVel.Y*0.5}
	if next.Pos.Sub(wantPos).Norm() > 1e-12 {
		t.Fatalf("Step().Pos = %s, want %s", next.Pos, wantPos)
	}
}

func TestInitialState(t *testing.T) {
	st := InitialState(100, 30, 691)
	if st.Pos != (Vec3{Y: 691}) {
		t.Fatalf("InitialState().Pos = %s", st.Pos)
	}
	if !scalar.EqualWithinAbs(st.Vel.X, 100*math.Sqrt(3)/2, 1e-9) ||
		!scalar.EqualWithinAbs(st.Vel.Y, 50, 1e-9) || st.Vel.Z != 0 {
		t.Fatalf("InitialState().Vel = %s", st.Vel)
	}
}

type fakeRecorder struct {
	outcomes []string
	steps    []int
	ranges   []float64
}

func (r *fakeRecorder) RecordRun(outcome string, steps int, _ time.Duration, rangeM float64) {
	r.outcomes = append(r.outcomes, outcome)
	r.steps = append(r.steps, steps)
	r.ranges = append(r.ranges, rangeM)
}

func TestSimulateRecordsRuns(t *testing.T) {
	rec := &fakeRecorder{}
	opt := NewSimOpt()
	opt.Recorder = rec
	traj, err := Simulate(context.Background(), refAtmosphere(nil), NewProjectile(0.077, 42, 0), nil, opt)
	if err != nil {
		t.Fatalf("Simulate(): %v", err)
	}

	opt.V0 = -1
	if _, err := Simulate(context.Background(), refAtmosphere(nil), NewProjectile(0.077, 42, 0), nil, opt); err == nil {
		t.Fatalf("Simulate() error = nil for negative v0")
	}

	opt.V0 = 816
	opt.MaxSteps = 3
	if _, err := Simulate(context.Background(), refAtmosphere(nil), NewProjectile(0.077, 42, 0), nil, opt); err == nil {
		t.Fatalf("Simulate() error = nil past the step limit")
	}

	want := []string{OutcomeOK, OutcomeInvalidInput, OutcomeLimitExceeded}
	if !reflect.DeepEqual(rec.outcomes, want) {
		t.Fatalf("outcomes = %v, want %v", rec.outcomes, want)
	}
	if rec.steps[0] != traj.Len() || rec.ranges[0] != traj.Range() {
		t.Fatalf("recorded %d steps / %v m, want %d / %v", rec.steps[0], rec.ranges[0], traj.Len(), traj.Range())
	}
	if rec.steps[2] != 3 {
		t.Fatalf("recorded %d steps for limit run, want 3", rec.steps[2])
	}
}

func TestSimulateLogs(t *testing.T) {
	var buf bytes.Buffer
	opt := NewSimOpt()
	opt.Logger = logging.NewWithWriter(logging.Config{Level: "debug", Format: "text"}, &buf)
	bad := NewSoundingStrings([][]string{meteoRows[1], {"1000", "10.4", "34", "8", "22"}})
	if _, err := Simulate(context.Background(), refAtmosphere(bad), NewProjectile(0.077, 42, 0), nil, opt); err != nil {
		t.Fatalf("Simulate(): %v", err)
	}
	out := buf.String()
	for _, want := range []string{"simulation started", "simulation finished", "meteo data invalid", "range_m"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestSimulateSpan(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	sr := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))

	refRun(t, nil)

	spans := sr.Ended()
	if len(spans) != 1 || spans[0].Name() != "gotraj.Simulate" {
		t.Fatalf("ended spans = %d, want one gotraj.Simulate", len(spans))
	}
	found := false
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "termination" && kv.Value.AsString() == "ground" {
			found = true
		}
	}
	if !found {
		t.Fatalf("span attributes %v missing termination=ground", spans[0].Attributes())
	}
}
