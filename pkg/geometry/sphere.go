package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// intersectSphere solves the ray-sphere quadratic using the half-b form
func (p *Primitive) intersectSphere(ray core.Ray, tMin, tMax float64, rec *HitRecord) bool {
	oc := ray.Origin.Subtract(p.Center)

	// Quadratic equation coefficients: at² + 2(halfB)t + c = 0
	a := ray.Direction.LengthSquared()
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - p.Radius*p.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 || a == 0 {
		return false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer root first
	root := (-halfB - sqrtD) / a
	if !(root >= tMin && root <= tMax) {
		root = (-halfB + sqrtD) / a
		if !(root >= tMin && root <= tMax) {
			return false
		}
	}

	rec.T = root
	rec.Point = ray.At(root)
	rec.Material = p.Material

	outwardNormal := rec.Point.Subtract(p.Center).Multiply(1.0 / p.Radius)
	rec.UV = SphereUV(outwardNormal)
	rec.SetFaceNormal(ray, outwardNormal)

	return true
}

// SphereUV maps a point on the unit sphere to texture coordinates.
// u wraps around the Y axis and v runs from the south pole (0) to the north pole (1).
func SphereUV(p core.Vec3) core.Vec2 {
	y := max(-1, min(1, p.Y))
	u := 0.5 - math.Atan2(p.Z, p.X)/(2*math.Pi)
	v := math.Asin(y)/math.Pi + 0.5
	return core.NewVec2(u, v)
}
