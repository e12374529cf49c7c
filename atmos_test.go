package gotraj

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func refAtmosphere(snd *Sounding) *Atmosphere {
	return NewAtmosphere(21.5, 944, 691, snd, nil)
}

func at(y float64) Vec3 {
	return Vec3{X: 1234, Y: y, Z: -56}
}

func TestTemperatureStandard(t *testing.T) {
	a := refAtmosphere(nil)
	cases := []struct {
		y, want float64
	}{
		{691, 294.65},
		{1691, 288.15},
		{0, 294.65 + 0.0065*691},
		{11000, 294.65 - 0.0065*(11000-691)},
	}
	for _, tc := range cases {
		got, err := a.Temperature(at(tc.y))
		if err != nil {
			t.Fatalf("Temperature(%v): %v", tc.y, err)
		}
		if !scalar.EqualWithinAbs(got, tc.want, 1e-9) {
			t.Fatalf("Temperature(%v) = %v, want %v", tc.y, got, tc.want)
		}
	}
}

func TestTemperatureAboveTropopause(t *testing.T) {
	a := refAtmosphere(nil)
	for _, y := range []float64{11000.001, 12000, 20000, 40000} {
		got, err := a.Temperature(at(y))
		if err != nil {
			t.Fatalf("Temperature(%v): %v", y, err)
		}
		if got != 216.65 {
			t.Fatalf("Temperature(%v) = %v, want 216.65", y, got)
		}
	}
}

func TestPressureAtGround(t *testing.T) {
	for _, model := range []PressureModel{Barometric, PowerLaw} {
		opt := NewAtmosOpt()
		opt.Pressure = model
		a := NewAtmosphere(21.5, 944, 691, nil, opt)
		got, err := a.Pressure(at(691))
		if err != nil {
			t.Fatalf("Pressure(): %v", err)
		}
		if got != 944 {
			t.Fatalf("%s: Pressure(ground) = %v, want 944", model.String(), got)
		}
	}
}

func TestPressureModelsAgree(t *testing.T) {
	bar := NewAtmosphere(15, 1013.25, 1, nil, nil)
	opt := NewAtmosOpt()
	opt.Pressure = PowerLaw
	pow := NewAtmosphere(15, 1013.25, 1, nil, opt)

	prev := math.Inf(1)
	for _, y := range []float64{1, 500, 1000, 2000} {
		pb, err := bar.Pressure(at(y))
		if err != nil {
			t.Fatalf("barometric Pressure(%v): %v", y, err)
		}
		pp, err := pow.Pressure(at(y))
		if err != nil {
			t.Fatalf("power-law Pressure(%v): %v", y, err)
		}
		if !scalar.EqualWithinRel(pb, pp, 0.02) {
			t.Fatalf("Pressure(%v): barometric %v vs power-law %v", y, pb, pp)
		}
		if !(pb < prev) {
			t.Fatalf("Pressure(%v) = %v not decreasing with height", y, pb)
		}
		prev = pb
	}
}

func TestPressureModelFlag(t *testing.T) {
	var p PressureModel
	if err := p.Set("powerlaw"); err != nil || p != PowerLaw {
		t.Fatalf("Set(powerlaw) = %v, %v", p.String(), err)
	}
	if err := p.Set("0"); err != nil || p != Barometric {
		t.Fatalf("Set(0) = %v, %v", p.String(), err)
	}
	if err := p.Set("isa"); err == nil {
		t.Fatalf("Set(isa) error = nil")
	}
}

func TestAirDensity(t *testing.T) {
	a := refAtmosphere(nil)
	got, err := a.AirDensity(at(691))
	if err != nil {
		t.Fatalf("AirDensity(): %v", err)
	}
	want := 100 * 944 / (287.05 * 294.65)
	if !scalar.EqualWithinAbs(got, want, 1e-9) {
		t.Fatalf("AirDensity(ground) = %v, want %v", got, want)
	}
	for _, y := range []float64{0, 2000, 8000, 10999} {
		d, err := a.AirDensity(at(y))
		if err != nil {
			t.Fatalf("AirDensity(%v): %v", y, err)
		}
		if !(d > 0) {
			t.Fatalf("AirDensity(%v) = %v, want > 0", y, d)
		}
	}
}

func TestSpeedOfSound(t *testing.T) {
	a := refAtmosphere(nil)
	got, err := a.SpeedOfSound(at(691))
	if err != nil {
		t.Fatalf("SpeedOfSound(): %v", err)
	}
	if !scalar.EqualWithinAbs(got, 343.9, 1e-9) {
		t.Fatalf("SpeedOfSound(ground) = %v, want 343.9", got)
	}
}

func TestWindWithoutSounding(t *testing.T) {
	a := refAtmosphere(nil)
	dir, vel, err := a.Wind(at(3000))
	if err != nil || dir != 0 || vel != 0 {
		t.Fatalf("Wind() = %v, %v, %v, want 0, 0, nil", dir, vel, err)
	}
	if a.HasSounding() {
		t.Fatalf("HasSounding() = true without sounding")
	}
}

func TestAtmosphereWithSounding(t *testing.T) {
	a := refAtmosphere(NewSoundingStrings(meteoRows))
	if !a.HasSounding() {
		t.Fatalf("HasSounding() = false")
	}

	temp, err := a.Temperature(at(1000))
	if err != nil {
		t.Fatalf("Temperature(): %v", err)
	}
	if !scalar.EqualWithinAbs(temp, 10.4+Kelvin0, 1e-9) {
		t.Fatalf("Temperature(1000) = %v, want %v", temp, 10.4+Kelvin0)
	}

	// Above the tropopause the sounding still rules
	temp, err = a.Temperature(at(12000))
	if err != nil {
		t.Fatalf("Temperature(): %v", err)
	}
	if temp == 216.65 {
		t.Fatalf("Temperature(12000) used the standard atmosphere")
	}

	dir, vel, err := a.Wind(at(1000))
	if err != nil {
		t.Fatalf("Wind(): %v", err)
	}
	if dir != 3400 || vel != 8 {
		t.Fatalf("Wind(1000) = %v, %v, want 3400, 8", dir, vel)
	}

	dir, vel, err = a.Wind(at(500))
	if err != nil {
		t.Fatalf("Wind(): %v", err)
	}
	if !scalar.EqualWithinAbs(dir, 3300, 1e-9) || !scalar.EqualWithinAbs(vel, 6.5, 1e-9) {
		t.Fatalf("Wind(500) = %v, %v, want 3300, 6.5", dir, vel)
	}
}

func TestInvalidSoundingFallsBack(t *testing.T) {
	bad := NewSoundingStrings([][]string{meteoRows[1], {"1000", "10.4", "34", "8", "22"}})
	if bad.Valid() {
		t.Fatalf("sounding with wrong checksum is valid")
	}
	withBad := refAtmosphere(bad)
	without := refAtmosphere(nil)
	if withBad.HasSounding() {
		t.Fatalf("HasSounding() = true for invalid sounding")
	}
	for _, y := range []float64{0, 691, 1500, 5000, 12000} {
		got, err := withBad.Sample(at(y))
		if err != nil {
			t.Fatalf("Sample(%v): %v", y, err)
		}
		want, err := without.Sample(at(y))
		if err != nil {
			t.Fatalf("Sample(%v): %v", y, err)
		}
		if got != want {
			t.Fatalf("Sample(%v) = %+v, want %+v", y, got, want)
		}
	}
}

func TestSingleRowSoundingFails(t *testing.T) {
	a := refAtmosphere(NewSoundingStrings([][]string{meteoRows[2]}))
	if _, err := a.AirDensity(at(1500)); !errors.Is(err, ErrInterpolationRange) {
		t.Fatalf("AirDensity() err = %v, want ErrInterpolationRange", err)
	}
	if _, _, err := a.Wind(at(1500)); !errors.Is(err, ErrInterpolationRange) {
		t.Fatalf("Wind() err = %v, want ErrInterpolationRange", err)
	}
}

func TestQueriesIgnoreHorizontalPosition(t *testing.T) {
	a := refAtmosphere(NewSoundingStrings(meteoRows))
	c1, err := a.Sample(Vec3{X: 0, Y: 2500, Z: 0})
	if err != nil {
		t.Fatalf("Sample(): %v", err)
	}
	c2, err := a.Sample(Vec3{X: 25000, Y: 2500, Z: -800})
	if err != nil {
		t.Fatalf("Sample(): %v", err)
	}
	if c1 != c2 {
		t.Fatalf("Sample() depends on X/Z: %+v vs %+v", c1, c2)
	}
}
