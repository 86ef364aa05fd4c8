package scene

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/pkg/errors"
)

func TestBuilder_BuildIsIsolatedFromLaterChanges(t *testing.T) {
	b := NewBuilder("test")
	red := b.AddMaterial(material.NewLambertian(solid(1, 0, 0)))
	b.AddSphere(core.NewVec3(0, 0, -3), 1, red)

	s, err := b.Build()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	b.AddSphere(core.NewVec3(0, 0, -1.5), 0.2, red)
	b.AddMaterial(material.NewMetal(solid(1, 1, 1), 0))
	b.SetBackground(NewConstantBackground(core.NewVec3(9, 9, 9)))

	if n := len(s.Primitives()); n != 1 {
		t.Errorf("Expected scene to keep 1 primitive, got %d", n)
	}
	if n := len(s.Materials()); n != 1 {
		t.Errorf("Expected scene to keep 1 material, got %d", n)
	}
	hit, ok := s.NearestHit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)))
	if !ok || math.Abs(hit.T-2) > 1e-9 {
		t.Errorf("Expected hit at t=2 on the original sphere, got ok=%v t=%f", ok, hit.T)
	}
	if bg := s.Background(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))); bg == core.NewVec3(9, 9, 9) {
		t.Error("Expected background change after Build not to reach the scene")
	}
}

func TestScene_MaterialOutOfRange(t *testing.T) {
	b := NewBuilder("test")
	id := b.AddMaterial(material.NewMetal(solid(1, 1, 1), 0))
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if s.Material(id).Kind != material.Metal {
		t.Errorf("Expected metal for id %d, got %v", id, s.Material(id).Kind)
	}
	for _, bad := range []geometry.MaterialID{-1, 1, 1000} {
		m := s.Material(bad)
		if m.Kind != material.Lambertian || m.Albedo.Sample(core.Vec2{}, core.Vec3{}) != core.NewVec3(0.5, 0.5, 0.5) {
			t.Errorf("Expected default grey lambertian for id %d, got %+v", bad, m)
		}
	}
}

func TestScene_FallbackMaterialIsPerScene(t *testing.T) {
	build := func() *Scene {
		s, err := NewBuilder("test").Build()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		return s
	}
	first, second := build(), build()

	first.Material(5).Kind = material.Emissive
	if got := second.Material(5).Kind; got != material.Lambertian {
		t.Errorf("Expected another scene's fallback to stay lambertian, got %v", got)
	}
	if got := material.DefaultMaterial().Kind; got != material.Lambertian {
		t.Errorf("Expected DefaultMaterial to stay lambertian, got %v", got)
	}
}

func TestBackground(t *testing.T) {
	gradient := NewGradientBackground(core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 1))
	tests := []struct {
		name     string
		bg       Background
		dir      core.Vec3
		expected core.Vec3
	}{
		{"Gradient up", gradient, core.NewVec3(0, 5, 0), core.NewVec3(0, 0, 1)},
		{"Gradient down", gradient, core.NewVec3(0, -2, 0), core.NewVec3(1, 1, 1)},
		{"Gradient horizon", gradient, core.NewVec3(3, 0, 0), core.NewVec3(0.5, 0.5, 1)},
		{"Constant", NewConstantBackground(core.NewVec3(0.2, 0.3, 0.4)), core.NewVec3(1, 2, 3), core.NewVec3(0.2, 0.3, 0.4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.bg.Sample(core.NewRay(core.Vec3{}, tt.dir))
			if got.Subtract(tt.expected).Length() > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestBuilder_AddPrimitiveRejectsUnknownKind(t *testing.T) {
	b := NewBuilder("test")
	err := b.AddPrimitive(geometry.Primitive{Kind: geometry.Kind(42)})
	if errors.Cause(err) != ErrInvalidPrimitive {
		t.Errorf("Expected ErrInvalidPrimitive, got %v", err)
	}
	if err := b.AddPrimitive(geometry.NewSphere(core.Vec3{}, 1, 0)); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if b.PrimitiveCount() != 1 {
		t.Errorf("Expected 1 primitive, got %d", b.PrimitiveCount())
	}
}

func TestBuilder_AddMesh(t *testing.T) {
	b := NewBuilder("test")
	if err := b.AddMesh(&geometry.MeshData{}, 0); errors.Cause(err) != ErrEmptyMesh {
		t.Errorf("Expected ErrEmptyMesh, got %v", err)
	}

	bad := &geometry.MeshData{Positions: []core.Vec3{{}, {}}, Indices: []int{0, 1, 2}}
	if err := b.AddMesh(bad, 0); errors.Cause(err) != geometry.ErrInvalidMesh {
		t.Errorf("Expected ErrInvalidMesh, got %v", err)
	}

	good := &geometry.MeshData{
		Positions: []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)},
		Indices:   []int{0, 1, 2},
	}
	if err := b.AddMesh(good, 0); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.PrimitiveCount() != 1 {
		t.Errorf("Expected 1 triangle, got %d", b.PrimitiveCount())
	}
}

func TestBuilder_AddBoxFacesOutward(t *testing.T) {
	b := NewBuilder("box")
	b.AddBox(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1), 0)
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n := len(s.Primitives()); n != 12 {
		t.Fatalf("Expected 12 triangles, got %d", n)
	}

	dirs := []core.Vec3{
		core.NewVec3(1, 0, 0), core.NewVec3(-1, 0, 0),
		core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0),
		core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1),
	}
	for _, d := range dirs {
		// Shoot from outside towards the center, slightly off the diagonal
		origin := d.Multiply(5).Add(core.NewVec3(0.1, 0.2, 0.3).Subtract(d.MultiplyVec(core.NewVec3(0.1, 0.2, 0.3))))
		hit, ok := s.NearestHit(core.NewRay(origin, d.Negate()))
		if !ok {
			t.Fatalf("Expected hit from %v", d)
		}
		if !hit.FrontFace {
			t.Errorf("Expected front face from %v", d)
		}
		if hit.Normal.Subtract(d).Length() > 1e-9 {
			t.Errorf("Expected normal %v, got %v", d, hit.Normal)
		}
	}
}

func TestBuiltInScenes(t *testing.T) {
	names := Names()
	if len(names) != len(List()) {
		t.Fatalf("Names and List disagree: %v", names)
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			s, err := ByName(name)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if s.Name() != name {
				t.Errorf("Expected name %q, got %q", name, s.Name())
			}
			if err := s.BVH().Validate(); err != nil {
				t.Errorf("Invalid BVH: %v", err)
			}
			if name != "empty" && s.BVH().Len() == 0 {
				t.Error("Expected geometry")
			}
		})
	}
}

func TestByName_Unknown(t *testing.T) {
	if _, err := ByName("nope"); errors.Cause(err) != ErrUnknownScene {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
}

func TestDegenerateTriangleDoesNotChangeHits(t *testing.T) {
	build := func(withDegenerate bool) *Scene {
		b := NewBuilder("test")
		m := b.AddMaterial(material.NewLambertian(solid(0.5, 0.5, 0.5)))
		if withDegenerate {
			b.AddTriangle(core.NewVec3(-1, -1, -2), core.NewVec3(0, 0, -2), core.NewVec3(1, 1, -2), m)
		}
		b.AddSphere(core.NewVec3(0, 0, -4), 1, m)
		s, err := b.Build()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		return s
	}

	a, b := build(true), build(false)
	sampler := core.NewSampler(4)
	for i := 0; i < 500; i++ {
		dir := core.SampleOnUnitSphere(sampler.Get2D())
		ray := core.NewRay(core.Vec3{}, dir)
		ha, oka := a.NearestHit(ray)
		hb, okb := b.NearestHit(ray)
		if oka != okb || ha.T != hb.T || ha.Normal != hb.Normal {
			t.Fatalf("Ray %v: expected identical hits, got (%v,%f) and (%v,%f)", dir, oka, ha.T, okb, hb.T)
		}
	}
}

func TestScene_WithCamera(t *testing.T) {
	s, err := NewDefaultScene()
	if err != nil {
		t.Fatalf("Failed to build scene: %v", err)
	}
	cfg := geometry.DefaultCameraConfig()
	cfg.VFov = 30

	moved := s.WithCamera(cfg)
	if moved.Camera().VFov != 30 {
		t.Errorf("Expected vfov 30, got %f", moved.Camera().VFov)
	}
	if s.Camera().VFov == 30 {
		t.Error("Expected the original scene camera to be unchanged")
	}
	if moved.BVH() != s.BVH() {
		t.Error("Expected the BVH to be shared")
	}
}
