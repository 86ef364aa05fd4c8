package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewCornellScene creates a classic Cornell box with triangle walls and an
// emissive ceiling panel
func NewCornellScene() (*Scene, error) {
	b := NewBuilder("cornell")
	b.SetCamera(geometry.CameraConfig{
		LookFrom:    core.NewVec3(278, 278, -800), // Outside the box looking in
		LookAt:      core.NewVec3(278, 278, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40,
		AspectRatio: 1,
	})
	b.SetBackground(NewConstantBackground(core.Vec3{}))

	white := b.AddMaterial(material.NewLambertian(solid(0.73, 0.73, 0.73)))
	red := b.AddMaterial(material.NewLambertian(solid(0.65, 0.05, 0.05)))
	green := b.AddMaterial(material.NewLambertian(solid(0.12, 0.45, 0.15)))
	light := b.AddMaterial(material.NewEmissive(solid(15, 15, 15)))
	metal := b.AddMaterial(material.NewMetal(solid(0.8, 0.8, 0.9), 0.0))
	glass := b.AddMaterial(material.NewDielectric(1.5))

	// Standard 555 unit box, open towards the camera
	const size = 555.0
	b.AddQuad(core.NewVec3(0, 0, 0), core.NewVec3(size, 0, 0), core.NewVec3(0, 0, size), white)    // floor
	b.AddQuad(core.NewVec3(0, size, 0), core.NewVec3(size, 0, 0), core.NewVec3(0, 0, size), white) // ceiling
	b.AddQuad(core.NewVec3(0, 0, size), core.NewVec3(size, 0, 0), core.NewVec3(0, size, 0), white) // back
	b.AddQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, size), core.NewVec3(0, size, 0), red)      // left
	b.AddQuad(core.NewVec3(size, 0, 0), core.NewVec3(0, size, 0), core.NewVec3(0, 0, size), green) // right

	// Ceiling light, slightly below the ceiling
	const lightSize = 130.0
	offset := (size - lightSize) / 2
	b.AddQuad(core.NewVec3(offset, size-1, offset), core.NewVec3(lightSize, 0, 0), core.NewVec3(0, 0, lightSize), light)

	// A tall block and two spheres
	b.AddBox(core.NewVec3(265, 0, 295), core.NewVec3(430, 330, 460), white)
	b.AddSphere(core.NewVec3(185, 82.5, 169), 82.5, metal)
	b.AddSphere(core.NewVec3(370, 90, 150), 90, glass)

	return b.Build()
}
