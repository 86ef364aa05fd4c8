package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// scatterLambertian samples a cosine-weighted direction about the normal.
// With cosine-weighted sampling the BRDF cosine and pdf cancel, so the
// throughput factor is the albedo itself.
func (m *Material) scatterLambertian(hit geometry.HitRecord, sampler core.Sampler) ScatterResult {
	direction := core.SampleCosineHemisphere(hit.Normal, sampler.Get2D())

	// Catch degenerate scatter direction
	if direction.NearZero() {
		direction = hit.Normal
	}

	return ScatterResult{
		Kind:        Scattered,
		Ray:         core.NewRay(hit.Point, direction),
		Attenuation: m.Albedo.Sample(hit.UV, hit.Point).Clamp(0, 1),
	}
}
