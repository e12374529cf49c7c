// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.17
//

package gotraj

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a 3D value used for position [m], velocity [m/s] and acceleration [m/s^2].
// X: range direction, Y: up, Z: cross-range (drift)
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) r3() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func fromR3(v r3.Vec) Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return fromR3(r3.Add(v.r3(), o.r3()))
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return fromR3(r3.Sub(v.r3(), o.r3()))
}

// Multiply by scalar
func (v Vec3) Mul(f float64) Vec3 {
	return fromR3(r3.Scale(f, v.r3()))
}

// Divide by scalar
func (v Vec3) Div(d float64) Vec3 {
	return Vec3{X: v.X / d, Y: v.Y / d, Z: v.Z / d}
}

func (v Vec3) Dot(o Vec3) float64 {
	return r3.Dot(v.r3(), o.r3())
}

// Euclidean length
func (v Vec3) Norm() float64 {
	return r3.Norm(v.r3())
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.4f %.4f %.4f)", v.X, v.Y, v.Z)
}
