package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// MaterialKind identifies the scattering model of a Material
type MaterialKind uint8

const (
	Lambertian MaterialKind = iota
	Metal
	Dielectric
	Emissive
)

func (k MaterialKind) String() string {
	switch k {
	case Lambertian:
		return "lambertian"
	case Metal:
		return "metal"
	case Dielectric:
		return "dielectric"
	case Emissive:
		return "emissive"
	default:
		return "unknown"
	}
}

// minRefractiveIndex keeps refraction ratios finite
const minRefractiveIndex = 1e-3

// Material describes how light interacts with a surface. Only the fields
// for its Kind are meaningful.
type Material struct {
	Kind            MaterialKind
	Albedo          Texture // Lambertian, Metal
	Fuzz            float64 // Metal, in [0, 1]
	RefractiveIndex float64 // Dielectric
	Radiance        Texture // Emissive
}

// NewLambertian creates a diffuse material
func NewLambertian(albedo Texture) Material {
	return Material{Kind: Lambertian, Albedo: albedo}
}

// NewMetal creates a reflective material. Fuzz is clamped to [0, 1].
func NewMetal(albedo Texture, fuzz float64) Material {
	if math.IsNaN(fuzz) {
		fuzz = 0
	}
	return Material{Kind: Metal, Albedo: albedo, Fuzz: max(0, min(1, fuzz))}
}

// NewDielectric creates a clear refractive material such as glass (1.5)
func NewDielectric(refractiveIndex float64) Material {
	if math.IsNaN(refractiveIndex) {
		refractiveIndex = 1
	}
	return Material{Kind: Dielectric, RefractiveIndex: max(minRefractiveIndex, refractiveIndex)}
}

// NewEmissive creates a light-emitting material
func NewEmissive(radiance Texture) Material {
	return Material{Kind: Emissive, Radiance: radiance}
}

// DefaultMaterial is used for hits whose material id does not resolve
func DefaultMaterial() Material {
	return NewLambertian(NewConstantTexture(core.NewVec3(0.5, 0.5, 0.5)))
}

// ScatterKind is the outcome of a surface interaction
type ScatterKind uint8

const (
	Scattered ScatterKind = iota
	Emitted
	Absorbed
)

func (k ScatterKind) String() string {
	switch k {
	case Scattered:
		return "scattered"
	case Emitted:
		return "emitted"
	default:
		return "absorbed"
	}
}

// ScatterResult is the outcome of Scatter. Ray and Attenuation are set for
// Scattered, Radiance for Emitted.
type ScatterResult struct {
	Kind        ScatterKind
	Ray         core.Ray
	Attenuation core.Vec3
	Radiance    core.Vec3
}

func absorbed() ScatterResult {
	return ScatterResult{Kind: Absorbed}
}

// Scatter computes how the incoming ray interacts with the surface at hit.
// hit.Normal must be unit length and face against the ray.
func (m *Material) Scatter(in core.Ray, hit geometry.HitRecord, sampler core.Sampler) ScatterResult {
	switch m.Kind {
	case Lambertian:
		return m.scatterLambertian(hit, sampler)
	case Metal:
		return m.scatterMetal(in, hit, sampler)
	case Dielectric:
		return m.scatterDielectric(in, hit, sampler)
	case Emissive:
		return ScatterResult{Kind: Emitted, Radiance: m.Radiance.Sample(hit.UV, hit.Point)}
	default:
		return absorbed()
	}
}
