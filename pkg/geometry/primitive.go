package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Kind identifies the shape stored in a Primitive
type Kind uint8

const (
	KindTriangle Kind = iota
	KindSphere
)

func (k Kind) String() string {
	switch k {
	case KindTriangle:
		return "triangle"
	case KindSphere:
		return "sphere"
	default:
		return "unknown"
	}
}

// minArea is the area below which a triangle is treated as degenerate
const minArea = 1e-12

// Primitive is a single intersectable shape. Only the fields for its Kind
// are meaningful; the rest are left zero.
type Primitive struct {
	Kind     Kind
	Material MaterialID

	// Triangle data
	V0, V1, V2    core.Vec3
	N0, N1, N2    core.Vec3 // Per-vertex normals, used when HasNormals
	UV0, UV1, UV2 core.Vec2 // Per-vertex texture coordinates
	HasNormals    bool

	// Sphere data
	Center core.Vec3
	Radius float64
}

// defaultTriangleUVs are the barycentric coordinates used when a triangle
// carries no texture coordinates
var defaultTriangleUVs = [3]core.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}

// NewTriangle creates a flat-shaded triangle
func NewTriangle(v0, v1, v2 core.Vec3, material MaterialID) Primitive {
	return Primitive{
		Kind:     KindTriangle,
		Material: material,
		V0:       v0,
		V1:       v1,
		V2:       v2,
		UV0:      defaultTriangleUVs[0],
		UV1:      defaultTriangleUVs[1],
		UV2:      defaultTriangleUVs[2],
	}
}

// NewSmoothTriangle creates a triangle with interpolated vertex normals and
// texture coordinates
func NewSmoothTriangle(v, n [3]core.Vec3, uv [3]core.Vec2, material MaterialID) Primitive {
	return Primitive{
		Kind:       KindTriangle,
		Material:   material,
		V0:         v[0],
		V1:         v[1],
		V2:         v[2],
		N0:         n[0],
		N1:         n[1],
		N2:         n[2],
		UV0:        uv[0],
		UV1:        uv[1],
		UV2:        uv[2],
		HasNormals: true,
	}
}

// NewSphere creates a sphere
func NewSphere(center core.Vec3, radius float64, material MaterialID) Primitive {
	return Primitive{
		Kind:     KindSphere,
		Material: material,
		Center:   center,
		Radius:   radius,
	}
}

// BoundingBox returns the axis-aligned bounding box of the primitive
func (p *Primitive) BoundingBox() core.AABB {
	switch p.Kind {
	case KindSphere:
		r := math.Abs(p.Radius)
		radius := core.NewVec3(r, r, r)
		return core.NewAABB(p.Center.Subtract(radius), p.Center.Add(radius))
	default:
		return core.NewAABBFromPoints(p.V0, p.V1, p.V2)
	}
}

// Centroid returns the center of the primitive's bounding box
func (p *Primitive) Centroid() core.Vec3 {
	return p.BoundingBox().Center()
}

// Area returns the surface area of the primitive
func (p *Primitive) Area() float64 {
	switch p.Kind {
	case KindSphere:
		return 4 * math.Pi * p.Radius * p.Radius
	default:
		return 0.5 * p.V1.Subtract(p.V0).Cross(p.V2.Subtract(p.V0)).Length()
	}
}

// Degenerate reports whether the primitive can never be hit: a triangle
// with (near) zero area, a sphere with non-positive radius, or any
// non-finite coordinate.
func (p *Primitive) Degenerate() bool {
	switch p.Kind {
	case KindSphere:
		return !p.Center.IsFinite() || math.IsNaN(p.Radius) || math.IsInf(p.Radius, 0) || p.Radius <= 0
	case KindTriangle:
		if !p.V0.IsFinite() || !p.V1.IsFinite() || !p.V2.IsFinite() {
			return true
		}
		area := p.Area()
		return !(area >= minArea) || math.IsInf(area, 0)
	default:
		return true
	}
}

// Intersect tests the ray against the primitive within [tMin, tMax] and
// fills rec on a hit. rec.Primitive is left for the caller to set.
func (p *Primitive) Intersect(ray core.Ray, tMin, tMax float64, rec *HitRecord) bool {
	switch p.Kind {
	case KindTriangle:
		return p.intersectTriangle(ray, tMin, tMax, rec)
	case KindSphere:
		return p.intersectSphere(ray, tMin, tMax, rec)
	default:
		return false
	}
}
