package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// CameraConfig describes a thin-lens perspective camera
type CameraConfig struct {
	LookFrom      core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera looks at
	Up            core.Vec3 // Up direction
	VFov          float64   // Vertical field of view in degrees
	AspectRatio   float64   // Width / height
	Aperture      float64   // Lens diameter, 0 for a pinhole
	FocusDistance float64   // Distance to the plane in focus, 0 to focus on LookAt
}

// DefaultCameraConfig looks down -Z from the origin with a 90 degree field of view
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 1,
	}
}

// Camera generates primary rays. It is immutable once built.
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3 // Camera basis, w points backwards
	lensRadius      float64
	config          CameraConfig
}

// NewCamera builds a camera from the configuration. Out-of-range values are
// replaced: a field of view outside (0, 180) becomes 90, a non-positive
// aspect ratio becomes 1, and an up vector parallel to the view direction is
// swapped for another axis.
func NewCamera(config CameraConfig) *Camera {
	if !(config.VFov > 0 && config.VFov < 180) {
		config.VFov = 90
	}
	if !(config.AspectRatio > 0) || math.IsInf(config.AspectRatio, 0) {
		config.AspectRatio = 1
	}
	if !(config.Aperture > 0) {
		config.Aperture = 0
	}

	w := config.LookFrom.Subtract(config.LookAt)
	distance := w.Length()
	if !(distance > 0) || math.IsInf(distance, 0) {
		w = core.NewVec3(0, 0, 1)
		distance = 1
	}
	w = w.Normalize()

	up := config.Up.Normalize()
	if up.Cross(w).Length() < 1e-9 {
		up = core.NewVec3(0, 1, 0)
		if math.Abs(w.Y) > 0.9 {
			up = core.NewVec3(0, 0, -1)
		}
	}
	u := up.Cross(w).Normalize()
	v := w.Cross(u)

	focusDistance := config.FocusDistance
	if !(focusDistance > 0) || math.IsInf(focusDistance, 0) {
		focusDistance = distance
	}

	theta := config.VFov * math.Pi / 180
	viewportHeight := 2 * math.Tan(theta/2) * focusDistance
	viewportWidth := config.AspectRatio * viewportHeight

	horizontal := u.Multiply(viewportWidth)
	vertical := v.Multiply(viewportHeight)
	lowerLeftCorner := config.LookFrom.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focusDistance))

	return &Camera{
		origin:          config.LookFrom,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2,
		config:          config,
	}
}

// GenerateRay returns a ray through normalized image coordinates (s, t),
// where (0, 0) is the bottom-left corner. With a non-zero aperture the ray
// origin is jittered across the lens and re-aimed at the same point on the
// focus plane.
func (c *Camera) GenerateRay(s, t float64, sampler core.Sampler) core.Ray {
	origin := c.origin
	if c.lensRadius > 0 {
		rd := core.SamplePointInUnitDisk(sampler.Get2D()).Multiply(c.lensRadius)
		origin = origin.Add(c.u.Multiply(rd.X)).Add(c.v.Multiply(rd.Y))
	}

	target := c.lowerLeftCorner.Add(c.horizontal.Multiply(s)).Add(c.vertical.Multiply(t))
	return core.NewRaySegment(origin, target.Subtract(origin), 0, math.Inf(1))
}

// Config returns the sanitized configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// Forward returns the unit viewing direction
func (c *Camera) Forward() core.Vec3 {
	return c.w.Negate()
}
