package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewTextureScene creates a row of spheres showing each texture kind on a
// checkerboard floor
func NewTextureScene() (*Scene, error) {
	b := NewBuilder("textures")
	b.SetCamera(geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 2, 10),
		LookAt:      core.NewVec3(0, 1, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40,
		AspectRatio: 16.0 / 9.0,
	})

	checker := material.NewSolidCheckerTexture(core.NewVec3(0.9, 0.9, 0.9), core.NewVec3(0.2, 0.2, 0.8), 1)
	floor := b.AddMaterial(material.NewLambertian(checker))
	b.AddQuad(core.NewVec3(-20, 0, -20), core.NewVec3(0, 0, 40), core.NewVec3(40, 0, 0), floor)

	uvDebug, err := material.NewImageTexture(64, 64, uvDebugPixels(64, 64))
	if err != nil {
		return nil, err
	}

	textures := []material.Texture{
		material.NewNoiseTexture(1, 0.25),
		material.NewPerlinTexture(2, 0.35),
		uvDebug,
		material.NewCheckerTexture(material.NewPerlinTexture(3, 0.1), material.NewConstantTexture(core.NewVec3(1, 0.3, 0.2)), 0.25),
	}
	for i, tex := range textures {
		mat := b.AddMaterial(material.NewLambertian(tex))
		b.AddSphere(core.NewVec3(float64(i)*2.4-3.6, 1, 0), 1, mat)
	}

	sun := b.AddMaterial(material.NewEmissive(solid(8, 8, 8)))
	b.AddSphere(core.NewVec3(-10, 15, 10), 3, sun)

	return b.Build()
}

// uvDebugPixels maps U to red and V to green, with row 0 at the top (v = 1)
func uvDebugPixels(width, height int) []core.Vec3 {
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			u := float64(x) / float64(width-1)
			v := 1 - float64(y)/float64(height-1)
			pixels[y*width+x] = core.NewVec3(u, v, 0.2)
		}
	}
	return pixels
}
