package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// intersectTriangle uses the Möller-Trumbore algorithm
func (p *Primitive) intersectTriangle(ray core.Ray, tMin, tMax float64, rec *HitRecord) bool {
	const epsilon = 1e-12

	edge1 := p.V1.Subtract(p.V0)
	edge2 := p.V2.Subtract(p.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// Ray lies in the plane of the triangle
	if math.Abs(a) < epsilon {
		return false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(p.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return false
	}

	t := f * edge2.Dot(q)
	if !(t >= tMin && t <= tMax) {
		return false
	}

	w := 1 - u - v
	geometric := edge1.Cross(edge2).Normalize()

	rec.T = t
	rec.Point = ray.At(t)
	rec.Material = p.Material
	rec.UV = p.UV0.Multiply(w).Add(p.UV1.Multiply(u)).Add(p.UV2.Multiply(v))
	rec.SetFaceNormal(ray, geometric)

	if p.HasNormals {
		shading := p.N0.Multiply(w).Add(p.N1.Multiply(u)).Add(p.N2.Multiply(v)).Normalize()
		if shading.LengthSquared() > 0 && shading.IsFinite() {
			// Keep the shading normal on the same side as the oriented geometric normal
			if shading.Dot(rec.Normal) < 0 {
				shading = shading.Negate()
			}
			rec.Normal = shading
		}
	}

	return true
}
