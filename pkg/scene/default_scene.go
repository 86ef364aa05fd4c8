package scene

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

func solid(r, g, b float64) material.Texture {
	return material.NewConstantTexture(core.NewVec3(r, g, b))
}

// NewDefaultScene creates three balls resting on a huge ground sphere
func NewDefaultScene() (*Scene, error) {
	b := NewBuilder("default")
	b.SetCamera(geometry.CameraConfig{
		LookFrom:      core.NewVec3(-2, 2, 1),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          90,
		AspectRatio:   1,
		Aperture:      0.2,
		FocusDistance: 3.46,
	})

	ground := b.AddMaterial(material.NewLambertian(solid(0.8, 0.8, 0.0)))
	diffuse := b.AddMaterial(material.NewLambertian(solid(0.1, 0.2, 0.5)))
	glass := b.AddMaterial(material.NewDielectric(1.5))
	gold := b.AddMaterial(material.NewMetal(solid(0.8, 0.6, 0.2), 0.0))

	b.AddSphere(core.NewVec3(0, -100.5, -1), 100, ground)
	b.AddSphere(core.NewVec3(0, 0, -1), 0.5, diffuse)
	b.AddSphere(core.NewVec3(-1, 0, -1), 0.5, glass)
	b.AddSphere(core.NewVec3(1, 0, -1), 0.5, gold)

	return b.Build()
}

// NewEmptyScene creates a scene with no geometry under a constant sky
func NewEmptyScene() (*Scene, error) {
	b := NewBuilder("empty")
	b.SetBackground(NewConstantBackground(core.NewVec3(0.5, 0.7, 1.0)))
	return b.Build()
}

// oklchToRGB converts OKLCH color values to linear RGB clamped to [0, 1]
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	bb := c * math.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*bb
	m_ := l - 0.1055613458*a - 0.0638541728*bb
	s_ := l - 0.0894841775*a - 1.2914855480*bb

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB
	return core.NewVec3(
		+4.0767416621*l_-3.3077115913*m_+0.2309699292*s_,
		-1.2684380046*l_+2.6097574011*m_-0.3413193965*s_,
		-0.0041960863*l_-0.7034186147*m_+1.7076147010*s_,
	).Clamp(0, 1)
}
