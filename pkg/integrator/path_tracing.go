package integrator

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// PathTracer implements unidirectional path tracing as an iterative loop
type PathTracer struct {
	scene  *scene.Scene
	config Config
}

// NewPathTracer creates a path tracer over an immutable scene
func NewPathTracer(s *scene.Scene, config Config) *PathTracer {
	return &PathTracer{scene: s, config: config.withDefaults()}
}

// Config returns the effective configuration
func (pt *PathTracer) Config() Config {
	return pt.config
}

// Trace follows a camera ray through the scene. Each step queries the
// scene once, then either terminates or continues with the scattered ray
// and an updated throughput. No path makes more than MaxDepth queries.
func (pt *PathTracer) Trace(ray core.Ray, sampler core.Sampler) TraceResult {
	var radiance core.Vec3
	throughput := core.NewVec3(1, 1, 1)

	for bounce := 0; ; bounce++ {
		if bounce >= pt.config.MaxDepth {
			return TraceResult{Radiance: radiance, Bounces: bounce, Termination: TerminationMaxDepth}
		}

		hit, ok := pt.scene.NearestHit(ray)
		if !ok {
			contribution := throughput.MultiplyVec(pt.scene.Background(ray))
			if !contribution.IsFinite() {
				return TraceResult{Radiance: radiance, Bounces: bounce, Termination: TerminationAbsorbed}
			}
			return TraceResult{Radiance: radiance.Add(contribution), Bounces: bounce, Termination: TerminationMiss}
		}

		mat := pt.scene.Material(hit.Material)
		result := mat.Scatter(ray, hit, sampler)

		switch result.Kind {
		case material.Emitted:
			contribution := throughput.MultiplyVec(result.Radiance)
			if !contribution.IsFinite() {
				return TraceResult{Radiance: radiance, Bounces: bounce + 1, Termination: TerminationAbsorbed}
			}
			return TraceResult{Radiance: radiance.Add(contribution), Bounces: bounce + 1, Termination: TerminationEmitted}

		case material.Absorbed:
			return TraceResult{Radiance: radiance, Bounces: bounce + 1, Termination: TerminationAbsorbed}
		}

		throughput = throughput.MultiplyVec(result.Attenuation)
		if !throughput.IsFinite() || !result.Ray.Valid() {
			return TraceResult{Radiance: radiance, Bounces: bounce + 1, Termination: TerminationAbsorbed}
		}

		// Russian roulette: survive with probability p and compensate by 1/p
		if bounce+1 >= pt.config.RussianRouletteMinBounces {
			p := max(pt.config.MinSurvival, min(pt.config.MaxSurvival, throughput.MaxComponent()))
			if sampler.Get1D() >= p {
				return TraceResult{Radiance: radiance, Bounces: bounce + 1, Termination: TerminationRoulette}
			}
			throughput = throughput.Multiply(1 / p)
		}

		ray = result.Ray
	}
}
