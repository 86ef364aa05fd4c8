package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// scatterDielectric either reflects or refracts, choosing reflection with
// the Schlick reflectance probability. Total internal reflection is
// detected before any square root is taken.
func (m *Material) scatterDielectric(in core.Ray, hit geometry.HitRecord, sampler core.Sampler) ScatterResult {
	var refractionRatio float64
	if hit.FrontFace {
		refractionRatio = 1.0 / m.RefractiveIndex // Entering the material
	} else {
		refractionRatio = m.RefractiveIndex // Leaving the material
	}

	unitDirection := in.Direction.Normalize()
	cosTheta := math.Min(-unitDirection.Dot(hit.Normal), 1.0)

	var direction core.Vec3
	pReflect, _ := FresnelProbabilities(cosTheta, refractionRatio)
	if pReflect >= 1 || sampler.Get1D() < pReflect {
		direction = unitDirection.Reflect(hit.Normal)
	} else {
		direction = refract(unitDirection, hit.Normal, cosTheta, refractionRatio)
	}

	return ScatterResult{
		Kind:        Scattered,
		Ray:         core.NewRay(hit.Point, direction),
		Attenuation: core.NewVec3(1, 1, 1),
	}
}

// cannotRefract reports total internal reflection
func cannotRefract(cosTheta, refractionRatio float64) bool {
	sin2Theta := math.Max(0, 1-cosTheta*cosTheta)
	return refractionRatio*refractionRatio*sin2Theta > 1
}

// refract bends a unit direction through the surface using Snell's law.
// Callers must have ruled out total internal reflection.
func refract(uv, n core.Vec3, cosTheta, etaiOverEtat float64) core.Vec3 {
	rOutPerp := uv.Add(n.Multiply(cosTheta)).Multiply(etaiOverEtat)
	rOutParallel := n.Multiply(-math.Sqrt(math.Max(0, 1.0-rOutPerp.LengthSquared())))
	return rOutPerp.Add(rOutParallel)
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-clamp01(cosine), 5)
}

// FresnelProbabilities returns the probabilities of reflecting and
// refracting at an interface. They always sum to 1; under total internal
// reflection the result is (1, 0).
func FresnelProbabilities(cosine, refractionRatio float64) (reflect, refract float64) {
	if cannotRefract(cosine, refractionRatio) {
		return 1, 0
	}
	r := Reflectance(cosine, refractionRatio)
	return r, 1 - r
}

// FresnelExact evaluates the unpolarized Fresnel equations for a dielectric
// interface. refractionRatio is the incident index over the transmitted index.
func FresnelExact(cosine, refractionRatio float64) float64 {
	cosI := clamp01(cosine)
	sin2T := refractionRatio * refractionRatio * math.Max(0, 1-cosI*cosI)
	if sin2T >= 1 {
		return 1
	}
	cosT := math.Sqrt(1 - sin2T)

	// Index ratio n_i/n_t expressed with n_t = 1
	ni, nt := refractionRatio, 1.0
	rs := (ni*cosI - nt*cosT) / (ni*cosI + nt*cosT)
	rp := (ni*cosT - nt*cosI) / (ni*cosT + nt*cosI)
	return 0.5 * (rs*rs + rp*rp)
}
