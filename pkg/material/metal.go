package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// scatterMetal reflects about the normal and perturbs the reflection by a
// point in a sphere of radius Fuzz. Perturbations that end up below the
// surface are absorbed.
func (m *Material) scatterMetal(in core.Ray, hit geometry.HitRecord, sampler core.Sampler) ScatterResult {
	reflected := in.Direction.Normalize().Reflect(hit.Normal)
	if m.Fuzz > 0 {
		reflected = reflected.Add(core.SamplePointInUnitSphere(sampler.Get3D()).Multiply(m.Fuzz))
	}

	if reflected.Dot(hit.Normal) <= 0 {
		return absorbed()
	}

	return ScatterResult{
		Kind:        Scattered,
		Ray:         core.NewRay(hit.Point, reflected),
		Attenuation: m.Albedo.Sample(hit.UV, hit.Point).Clamp(0, 1),
	}
}
