// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.17
//

// Aerodynamic drag of a spin-stabilized projectile.

package gotraj

import (
	"math"
)

// Projectile describes the shell being fired
type Projectile struct {
	Radius    float64 // [m]
	Mass      float64 // [kg]
	Direction float64 // Firing azimuth (6400 per circle)
}

func NewProjectile(radius, mass, direction float64) *Projectile {
	return &Projectile{
		Radius:    radius,
		Mass:      mass,
		Direction: direction,
	}
}

// Lateral cross-sectional area [m^2]
func (p *Projectile) LateralArea() float64 {
	return PI * SQ(p.Radius)
}

// DragOpt holds the coefficients of the drag model
type DragOpt struct {
	AxialArea      float64 // Axial cross-sectional area [m^2]
	AxialCw        float64 // Axial drag coefficient
	MachSubsonic   float64 // Below this Mach number the subsonic coefficient applies
	MachSupersonic float64 // Above this Mach number the supersonic formula applies
	CwSubsonic     float64 // Subsonic drag coefficient
	CwSuperSlope   float64 // Supersonic: cw = slope*mach + const
	CwSuperConst   float64
	CwTransSlope   float64 // Transonic: cw = slope*mach + const
	CwTransConst   float64
}

// NewDragOpt creates a DragOpt with default values
func NewDragOpt() *DragOpt {
	return &DragOpt{
		AxialArea:      AxialArea,
		AxialCw:        AxialCw,
		MachSubsonic:   MachSubsonic,
		MachSupersonic: MachSupersonic,
		CwSubsonic:     CwSubsonic,
		CwSuperSlope:   CwSuperSlope,
		CwSuperConst:   CwSuperConst,
		CwTransSlope:   CwTransSlope,
		CwTransConst:   CwTransConst,
	}
}

// Lateral drag coefficient as a function of Mach number
func (o *DragOpt) DragCoefficient(mach float64) float64 {
	switch {
	case mach < o.MachSubsonic:
		return o.CwSubsonic
	case mach > o.MachSupersonic:
		return o.CwSuperSlope*mach + o.CwSuperConst
	default:
		return o.CwTransConst + o.CwTransSlope*mach
	}
}

// Drag force magnitude [N]
func DragForce(density, speed, cw, area float64) float64 {
	return 0.5 * density * SQ(speed) * cw * area
}

// DragAccel returns the acceleration [m/s^2] caused by air resistance and wind.
// The lateral part opposes the flight direction, the axial part acts along Z.
// Z is left out of the lateral speed.
func (p *Projectile) DragAccel(pos, vel Vec3, atm *Atmosphere, opt *DragOpt) (Vec3, error) {
	if opt == nil {
		opt = NewDragOpt()
	}

	density, err := atm.AirDensity(pos)
	if err != nil {
		return Vec3{}, err
	}
	windDir, windVel, err := atm.Wind(pos)
	if err != nil {
		return Vec3{}, err
	}

	// Wind in the firing frame
	angle := MilToRad(windDir - p.Direction)
	wind := Vec3{X: windVel * math.Cos(angle), Y: 0, Z: windVel * math.Sin(angle)}
	rel := vel.Sub(wind)

	speed := math.Hypot(rel.X, rel.Y)
	if speed == 0 {
		return Vec3{}, nil
	}

	// Lateral part
	sos, err := atm.SpeedOfSound(pos)
	if err != nil {
		return Vec3{}, err
	}
	mach := speed / sos
	cw := opt.DragCoefficient(mach)
	lateral := Vec3{}
	if n := vel.Norm(); n > 0 {
		mag := DragForce(density, speed, cw, p.LateralArea()) / p.Mass
		lateral = vel.Mul(-mag / n)
	}

	// Axial part
	axialMag := DragForce(density, rel.Z, opt.AxialCw, opt.AxialArea) / p.Mass
	axial := Vec3{Z: -axialMag}
	if rel.Z < 0 {
		axial.Z = axialMag
	}

	PrintD(4, "\tdrag: rho=%.5f mach=%.4f cw=%.4f lat=%s ax=%s\n", density, mach, cw, lateral, axial)
	return lateral.Add(axial), nil
}
