package geometry

import "github.com/df07/go-pathtracer/pkg/core"

// MaterialID indexes a scene's material table
type MaterialID int

// HitRecord contains information about a ray-primitive intersection
type HitRecord struct {
	Point     core.Vec3  // Point of intersection
	Normal    core.Vec3  // Unit shading normal, facing against the ray
	UV        core.Vec2  // Surface texture coordinates
	T         float64    // Parameter t along the ray
	FrontFace bool       // Whether the ray hit the outward-facing side
	Material  MaterialID // Material of the primitive that was hit
	Primitive int        // Index of the primitive in the scene's primitive list
}

// SetFaceNormal sets the hit record normal vector and determines front/back face.
// outwardNormal is assumed to be unit length.
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}
