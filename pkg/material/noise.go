package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Coherent noise hash constants, after libnoise
const (
	noiseA int64 = 0x369E6D3B899E43CF
	noiseB int64 = 0x53F89E7FFDA3B07D
	noiseC int64 = 0x3B13C1CA4937E629
	noiseD int64 = 0x577C2C6E4019D645
	noiseE int64 = 60493
	noiseF int64 = 19990303
	noiseG int64 = 1376312589
)

// noiseInt hashes a lattice point and seed to a pseudo-random integer.
// Arithmetic wraps on overflow.
func noiseInt(x, y, z, seed int64) int64 {
	h := noiseA*x + noiseB*y + noiseC*z + noiseD*seed
	h = (h >> 13) ^ h
	return h*(h*h*noiseE+noiseF) + noiseG
}

// noiseReal hashes a lattice point to a value in [-1, 1]
func noiseReal(x, y, z, seed int64) float64 {
	return float64(noiseInt(x, y, z, seed)) / float64(math.MaxInt64)
}

func floorInt(x float64) int64 {
	return int64(math.Floor(x))
}

// gradDot dots the offset from a lattice corner with that corner's gradient
func gradDot(p core.Vec3, x, y, z, seed int64) float64 {
	grad := core.NewVec3(
		noiseReal(x, y, z, seed+1),
		noiseReal(x, y, z, seed+2),
		noiseReal(x, y, z, seed+3),
	)
	return p.Subtract(core.NewVec3(float64(x), float64(y), float64(z))).Dot(grad)
}

func mix(a, b, t float64) float64 {
	return (b-a)*t + a
}

func smootherstep(t float64) float64 {
	return (t*(t*6-15) + 10) * t * t * t
}

// perlin evaluates gradient noise at p. The result is zero on lattice points.
func perlin(p core.Vec3, seed int64) float64 {
	fx, fy, fz := math.Floor(p.X), math.Floor(p.Y), math.Floor(p.Z)
	x0, y0, z0 := int64(fx), int64(fy), int64(fz)
	x1, y1, z1 := x0+1, y0+1, z0+1

	k1 := gradDot(p, x0, y0, z0, seed)
	k2 := gradDot(p, x1, y0, z0, seed)
	k3 := gradDot(p, x0, y1, z0, seed)
	k4 := gradDot(p, x1, y1, z0, seed)
	k5 := gradDot(p, x0, y0, z1, seed)
	k6 := gradDot(p, x1, y0, z1, seed)
	k7 := gradDot(p, x0, y1, z1, seed)
	k8 := gradDot(p, x1, y1, z1, seed)

	tx := smootherstep(p.X - fx)
	ty := smootherstep(p.Y - fy)
	tz := smootherstep(p.Z - fz)

	k12 := mix(k1, k2, tx)
	k34 := mix(k3, k4, tx)
	k56 := mix(k5, k6, tx)
	k78 := mix(k7, k8, tx)
	k1234 := mix(k12, k34, ty)
	k5678 := mix(k56, k78, ty)
	return mix(k1234, k5678, tz)
}
