package core

import "math"

// RayEpsilon is the default lower bound of a ray's parametric interval.
// Secondary rays start at this offset to avoid re-hitting the surface they
// left.
const RayEpsilon = 1e-3

// Ray represents a ray with an origin, a direction and a valid parametric
// interval [TMin, TMax]. The direction need not be unit length.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	TMin      float64
	TMax      float64
}

// NewRay creates a new ray covering [RayEpsilon, +Inf)
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, TMin: RayEpsilon, TMax: math.Inf(1)}
}

// NewRaySegment creates a ray restricted to [tMin, tMax]
func NewRaySegment(origin, direction Vec3, tMin, tMax float64) Ray {
	return Ray{Origin: origin, Direction: direction, TMin: tMin, TMax: tMax}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// Valid reports whether the ray can intersect anything: its origin and
// direction are finite and the direction is non-zero.
func (r Ray) Valid() bool {
	return r.Origin.IsFinite() && r.Direction.IsFinite() && r.Direction.LengthSquared() > 0
}

// InverseDirection returns 1/d per component. Zero components map to
// signed infinity.
func (r Ray) InverseDirection() Vec3 {
	return Vec3{X: 1 / r.Direction.X, Y: 1 / r.Direction.Y, Z: 1 / r.Direction.Z}
}
