package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Scene is an immutable collection of primitives, materials, a background
// and a camera, with a BVH built over the primitives. It is safe to share
// between goroutines.
type Scene struct {
	name       string
	materials  []material.Material
	bvh        *geometry.BVH
	background Background
	camera     geometry.CameraConfig

	// Resolves material ids outside the table
	fallback material.Material
}

// Name returns the scene name
func (s *Scene) Name() string {
	return s.name
}

// NearestHit returns the closest intersection along the ray
func (s *Scene) NearestHit(ray core.Ray) (geometry.HitRecord, bool) {
	return s.bvh.NearestHit(ray)
}

// Material resolves a material id. Ids outside the table resolve to
// this scene's copy of material.DefaultMaterial(). The returned material is
// shared by every caller of this scene and must not be modified.
func (s *Scene) Material(id geometry.MaterialID) *material.Material {
	if id < 0 || int(id) >= len(s.materials) {
		return &s.fallback
	}
	return &s.materials[id]
}

// Background returns the radiance for a ray that hit nothing
func (s *Scene) Background(ray core.Ray) core.Vec3 {
	return s.background.Sample(ray)
}

// Camera returns the scene's camera configuration
func (s *Scene) Camera() geometry.CameraConfig {
	return s.camera
}

// BVH returns the scene's acceleration structure
func (s *Scene) BVH() *geometry.BVH {
	return s.bvh
}

// Primitives returns a copy of the scene's primitives
func (s *Scene) Primitives() []geometry.Primitive {
	return s.bvh.Primitives()
}

// Materials returns a copy of the material table
func (s *Scene) Materials() []material.Material {
	return append([]material.Material(nil), s.materials...)
}

// Bounds returns the bounding box of all non-degenerate primitives
func (s *Scene) Bounds() core.AABB {
	return s.bvh.Bounds()
}

// WithCamera returns a scene that shares this scene's geometry and
// materials but uses a different camera
func (s *Scene) WithCamera(camera geometry.CameraConfig) *Scene {
	c := *s
	c.camera = camera
	return &c
}
