package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

func TestCamera_CenterRay(t *testing.T) {
	cam := NewCamera(CameraConfig{
		LookFrom:    core.NewVec3(1, 2, 3),
		LookAt:      core.NewVec3(1, 2, -7),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        60,
		AspectRatio: 2,
	})

	ray := cam.GenerateRay(0.5, 0.5, core.NewSampler(1))
	if ray.Origin != core.NewVec3(1, 2, 3) {
		t.Errorf("Expected origin at LookFrom, got %v", ray.Origin)
	}
	dir := ray.Direction.Normalize()
	if dir.Subtract(core.NewVec3(0, 0, -1)).Length() > 1e-12 {
		t.Errorf("Expected center ray along -Z, got %v", dir)
	}
}

func TestCamera_FieldOfView(t *testing.T) {
	cam := NewCamera(CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 2,
	})
	sampler := core.NewSampler(1)

	// Top edge center is 45 degrees above the view axis
	top := cam.GenerateRay(0.5, 1, sampler).Direction.Normalize()
	if math.Abs(top.Y-math.Sin(math.Pi/4)) > 1e-12 {
		t.Errorf("Expected top ray at 45 degrees, got %v", top)
	}

	// Right edge spans twice the vertical half-height
	right := cam.GenerateRay(1, 0.5, sampler).Direction
	if math.Abs(right.X/-right.Z-2) > 1e-12 {
		t.Errorf("Expected horizontal half-extent 2, got %f", right.X/-right.Z)
	}

	// t=0 is the bottom of the image
	bottom := cam.GenerateRay(0.5, 0, sampler).Direction
	if bottom.Y >= 0 {
		t.Errorf("Expected bottom ray to point down, got %v", bottom)
	}
}

func TestCamera_ThinLensFocus(t *testing.T) {
	cam := NewCamera(CameraConfig{
		LookFrom:      core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -4),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          40,
		AspectRatio:   1,
		Aperture:      0.5,
		FocusDistance: 0, // focus on LookAt
	})
	sampler := core.NewSampler(5)

	pinhole := cam.GenerateRay(0.3, 0.7, fixedLensSampler{})
	focusPoint := pinhole.At(1)

	spread := false
	for i := 0; i < 200; i++ {
		ray := cam.GenerateRay(0.3, 0.7, sampler)
		offset := ray.Origin.Length()
		if offset > 0.25+1e-12 {
			t.Fatalf("Lens sample %v outside aperture radius 0.25", ray.Origin)
		}
		if offset > 1e-3 {
			spread = true
		}
		// Every lens sample converges on the same focus-plane point
		if p := ray.At(1); p.Subtract(focusPoint).Length() > 1e-9 {
			t.Fatalf("Expected ray to pass through %v, got %v", focusPoint, p)
		}
	}
	if !spread {
		t.Error("Expected lens samples to spread across the aperture")
	}
	if math.Abs(focusPoint.Z+4) > 1e-12 {
		t.Errorf("Expected focus plane at z=-4, got %f", focusPoint.Z)
	}
}

func TestCamera_DegenerateConfig(t *testing.T) {
	configs := []CameraConfig{
		{LookFrom: core.NewVec3(0, 0, 0), LookAt: core.NewVec3(0, 0, 0)},
		{LookFrom: core.NewVec3(0, 5, 0), LookAt: core.NewVec3(0, 0, 0), Up: core.NewVec3(0, 1, 0), VFov: 45},
		{LookFrom: core.NewVec3(0, 0, 1), LookAt: core.NewVec3(0, 0, 0), VFov: 400, AspectRatio: -1},
	}

	for i, cfg := range configs {
		cam := NewCamera(cfg)
		ray := cam.GenerateRay(0.25, 0.75, core.NewSampler(uint64(i)))
		if !ray.Valid() {
			t.Errorf("Config %d: expected a valid ray, got %+v", i, ray)
		}
	}
}

// fixedLensSampler always samples the lens center
type fixedLensSampler struct{}

func (fixedLensSampler) Get1D() float64   { return 0.5 }
func (fixedLensSampler) Get2D() core.Vec2 { return core.NewVec2(0.5, 0.5) }
func (fixedLensSampler) Get3D() core.Vec3 { return core.NewVec3(0.5, 0.5, 0.5) }
