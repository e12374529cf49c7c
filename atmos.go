// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.17
//

// Atmosphere model: standard atmosphere or values interpolated from a sounding.

package gotraj

import (
	"fmt"
	"math"
)

// Pressure formula selection
type PressureModel int

const (
	Barometric PressureModel = iota // p0 * exp(-g*M*dh / (R*T))
	PowerLaw                        // p0 * (1 - L*dh/T0)^5.255
)

func (p *PressureModel) Set(s string) error {
	switch s {
	case "0", "barometric":
		*p = Barometric
	case "1", "powerlaw":
		*p = PowerLaw
	default:
		return fmt.Errorf("unknown pressure model %q", s)
	}
	return nil
}

func (p *PressureModel) String() string {
	switch *p {
	case Barometric:
		return "barometric"
	case PowerLaw:
		return "powerlaw"
	default:
		return "UNKNOWN!"
	}
}

// AtmosOpt holds the physical constants of the atmosphere model
type AtmosOpt struct {
	AirMolarMass     float64       // [kg/mol]
	GasConstant      float64       // [J/(mol*K)]
	Gravity          float64       // [m/s^2]
	AirGasConstant   float64       // Specific gas constant used for density [J/(kg*K)]
	LapseRate        float64       // [K/m]
	TropopauseHeight float64       // [m]
	TropopauseTemp   float64       // [K]
	Pressure         PressureModel // Pressure formula
}

// NewAtmosOpt creates an AtmosOpt with standard values
func NewAtmosOpt() *AtmosOpt {
	return &AtmosOpt{
		AirMolarMass:     AirMolarMass,
		GasConstant:      GasConstant,
		Gravity:          G0,
		AirGasConstant:   AirGasConstant,
		LapseRate:        LapseRate,
		TropopauseHeight: TropopauseHeight,
		TropopauseTemp:   TropopauseTemp,
		Pressure:         Barometric,
	}
}

// Atmosphere derives air properties at a point from ground values and an optional sounding.
// All queries use only the height (Y) of the point and never modify the receiver.
type Atmosphere struct {
	Temp0     float64   // Ground temperature [degC]
	Pressure0 float64   // Ground pressure [hPa]
	Height0   float64   // Ground height [m]
	Sounding  *Sounding // Upper-air measurements (optional, ignored when invalid)
	Opt       *AtmosOpt
}

// NewAtmosphere creates an Atmosphere. snd and opt may be nil.
func NewAtmosphere(temp0, pressure0, height0 float64, snd *Sounding, opt *AtmosOpt) *Atmosphere {
	if opt == nil {
		opt = NewAtmosOpt()
	}
	return &Atmosphere{
		Temp0:     temp0,
		Pressure0: pressure0,
		Height0:   height0,
		Sounding:  snd,
		Opt:       opt,
	}
}

// Air properties at one point
type Conditions struct {
	Height       float64 // [m]
	Temperature  float64 // [K]
	Pressure     float64 // [hPa]
	Density      float64 // [kg/m^3]
	SpeedOfSound float64 // [m/s]
	WindDir      float64 // Azimuth
	WindVel      float64 // [m/s]
}

// Whether a valid sounding is attached
func (a *Atmosphere) HasSounding() bool {
	return a.Sounding.Valid()
}

// Air density [kg/m^3]
func (a *Atmosphere) AirDensity(p Vec3) (float64, error) {
	pres, err := a.Pressure(p)
	if err != nil {
		return 0, err
	}
	temp, err := a.Temperature(p)
	if err != nil {
		return 0, err
	}
	return 100 * pres / (a.Opt.AirGasConstant * temp), nil
}

// Temperature [K]
func (a *Atmosphere) Temperature(p Vec3) (float64, error) {
	if a.HasSounding() {
		m, err := a.Sounding.Interpolate(p.Y)
		if err != nil {
			return 0, fmt.Errorf("temperature at %.1f m: %w", p.Y, err)
		}
		return m.Temperature + Kelvin0, nil
	}
	if p.Y > a.Opt.TropopauseHeight {
		return a.Opt.TropopauseTemp, nil
	}
	return (Kelvin0 + a.Temp0) - a.Opt.LapseRate*(p.Y-a.Height0), nil
}

// Pressure [hPa]. Both formulas assume the lapse rate region below the tropopause.
func (a *Atmosphere) Pressure(p Vec3) (float64, error) {
	dh := p.Y - a.Height0
	switch a.Opt.Pressure {
	case PowerLaw:
		return a.Pressure0 * math.Pow(1-a.Opt.LapseRate*dh/IsaSeaLevelTemp, IsaPressureExp), nil
	default:
		temp, err := a.Temperature(p)
		if err != nil {
			return 0, err
		}
		o := a.Opt
		return a.Pressure0 * math.Exp(-(o.Gravity * o.AirMolarMass * dh / (o.GasConstant * temp))), nil
	}
}

// Speed of sound [m/s]
func (a *Atmosphere) SpeedOfSound(p Vec3) (float64, error) {
	temp, err := a.Temperature(p)
	if err != nil {
		return 0, err
	}
	return SoundSpeed0 + SoundSpeedSlope*(temp-Kelvin0), nil
}

// Wind direction [azimuth] and velocity [m/s]. Calm without a sounding.
func (a *Atmosphere) Wind(p Vec3) (dir, vel float64, err error) {
	if !a.HasSounding() {
		return 0, 0, nil
	}
	m, err := a.Sounding.Interpolate(p.Y)
	if err != nil {
		return 0, 0, fmt.Errorf("wind at %.1f m: %w", p.Y, err)
	}
	return m.WindDirection * WindDirScale, m.WindVelocity, nil
}

// Sample evaluates all air properties at p
func (a *Atmosphere) Sample(p Vec3) (Conditions, error) {
	c := Conditions{Height: p.Y}
	var err error
	if c.Temperature, err = a.Temperature(p); err != nil {
		return c, err
	}
	if c.Pressure, err = a.Pressure(p); err != nil {
		return c, err
	}
	if c.Density, err = a.AirDensity(p); err != nil {
		return c, err
	}
	if c.SpeedOfSound, err = a.SpeedOfSound(p); err != nil {
		return c, err
	}
	if c.WindDir, c.WindVel, err = a.Wind(p); err != nil {
		return c, err
	}
	return c, nil
}
