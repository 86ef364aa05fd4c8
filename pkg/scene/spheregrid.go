package scene

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewSphereGridScene creates a 20x20 grid of spheres on a ground quad. Hue
// varies across X and chroma across Z; materials cycle between metal,
// diffuse and glass.
func NewSphereGridScene() (*Scene, error) {
	b := NewBuilder("spheregrid")
	b.SetCamera(geometry.CameraConfig{
		LookFrom:    core.NewVec3(4.5, 6, 18),
		LookAt:      core.NewVec3(4.5, 0.8, 4.5),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40,
		AspectRatio: 16.0 / 9.0,
		Aperture:    0.02,
	})

	// Warm sun high to the side
	sun := b.AddMaterial(material.NewEmissive(solid(12.0, 11.5, 10.0)))
	b.AddSphere(core.NewVec3(20, 25, 20), 8, sun)

	ground := b.AddMaterial(material.NewLambertian(solid(0.5, 0.5, 0.5)))
	b.AddQuad(core.NewVec3(-50, 0, -50), core.NewVec3(0, 0, 100), core.NewVec3(100, 0, 0), ground)

	const gridSize = 20
	const targetArea = 9.0
	spacing := targetArea / float64(gridSize-1)
	radius := math.Max(0.02, math.Min(0.35, spacing*0.35))
	glass := b.AddMaterial(material.NewDielectric(1.5))

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2 + 4.5
			z := float64(j)*spacing - targetArea/2 + 4.5

			hue := float64(i) / float64(gridSize-1) * 360
			chroma := 0.05 + float64(j)/float64(gridSize-1)*0.20
			lightness := 0.65 + 0.1*math.Sin(float64(i+j)*0.5)
			color := material.NewConstantTexture(oklchToRGB(lightness, chroma, hue))

			var mat geometry.MaterialID
			switch (i + j) % 3 {
			case 0:
				mat = b.AddMaterial(material.NewMetal(color, 0.05+0.05*float64(i%3)))
			case 1:
				mat = b.AddMaterial(material.NewLambertian(color))
			default:
				mat = glass
			}
			b.AddSphere(core.NewVec3(x, radius, z), radius, mat)
		}
	}

	return b.Build()
}
