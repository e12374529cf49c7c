// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.17
//

package gotraj

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Trajectory is the result of one Simulate run
type Trajectory struct {
	Points []Vec3      // Position after each step. Points[i] is at t=(i+1)*Dt
	Dt     float64     // Time step [s]
	Reason Termination // Why integration stopped
}

func (t *Trajectory) Len() int {
	return len(t.Points)
}

// Time of each sample [s]
func (t *Trajectory) Times() []float64 {
	ts := make([]float64, len(t.Points))
	for i := range ts {
		ts[i] = float64(i+1) * t.Dt
	}
	return ts
}

// Last recorded sample
func (t *Trajectory) Impact() Vec3 {
	if len(t.Points) == 0 {
		return Vec3{}
	}
	return t.Points[len(t.Points)-1]
}

// Horizontal distance at termination [m]
func (t *Trajectory) Range() float64 {
	return t.Impact().X
}

// Cross-range deviation at termination [m]
func (t *Trajectory) Drift() float64 {
	return t.Impact().Z
}

// Time of flight [s]
func (t *Trajectory) FlightTime() float64 {
	return float64(len(t.Points)) * t.Dt
}

func (t *Trajectory) heights() []float64 {
	ys := make([]float64, len(t.Points))
	for i, p := range t.Points {
		ys[i] = p.Y
	}
	return ys
}

// Highest recorded Y [m]
func (t *Trajectory) MaxHeight() float64 {
	if len(t.Points) == 0 {
		return 0
	}
	return floats.Max(t.heights())
}

// Time of the highest recorded sample [s]
func (t *Trajectory) TimeToApex() float64 {
	if len(t.Points) == 0 {
		return 0
	}
	return float64(floats.MaxIdx(t.heights())+1) * t.Dt
}

// Matrix returns one row per sample: t, x, y, z
func (t *Trajectory) Matrix() *mat.Dense {
	if len(t.Points) == 0 {
		return nil
	}
	m := mat.NewDense(len(t.Points), 4, nil)
	for i, p := range t.Points {
		m.SetRow(i, []float64{float64(i+1) * t.Dt, p.X, p.Y, p.Z})
	}
	return m
}
