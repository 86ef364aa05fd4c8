package material

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
)

var (
	red   = core.NewVec3(1, 0, 0)
	green = core.NewVec3(0, 1, 0)
	blue  = core.NewVec3(0, 0, 1)
	white = core.NewVec3(1, 1, 1)
)

func TestImageTexture_Sample(t *testing.T) {
	// Top row red, green; bottom row blue, white
	tex, err := NewImageTexture(2, 2, []core.Vec3{red, green, blue, white})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		uv       core.Vec2
		expected core.Vec3
	}{
		{"Top left", core.NewVec2(0, 1), red},
		{"Top right", core.NewVec2(1, 1), green},
		{"Bottom left", core.NewVec2(0, 0), blue},
		{"Bottom right", core.NewVec2(1, 0), white},
		{"Center blends all four", core.NewVec2(0.5, 0.5), core.NewVec3(0.5, 0.5, 0.5)},
		{"Top edge midpoint", core.NewVec2(0.5, 1), core.NewVec3(0.5, 0.5, 0)},
		{"Clamped above", core.NewVec2(-3, 7), red},
		{"Clamped below", core.NewVec2(4, -2), white},
		{"NaN clamps to zero", core.NewVec2(math.NaN(), math.NaN()), blue},
	}

	approx := cmpopts.EquateApprox(0, 1e-12)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tex.Sample(tt.uv, core.Vec3{})
			if diff := cmp.Diff(tt.expected, got, approx); diff != "" {
				t.Errorf("Unexpected color (-want +got):\n%s", diff)
			}
		})
	}
}

func TestImageTexture_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		pixels        int
	}{
		{"Too few pixels", 4, 4, 15},
		{"Too many pixels", 2, 2, 5},
		{"Zero width", 0, 4, 0},
		{"Negative height", 2, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewImageTexture(tt.width, tt.height, make([]core.Vec3, tt.pixels))
			if errors.Cause(err) != ErrInvalidTexture {
				t.Errorf("Expected ErrInvalidTexture, got %v", err)
			}
		})
	}

	// Hand-built textures with a mismatched buffer sample as black
	broken := Texture{Kind: TextureImage, Width: 8, Height: 8, Pixels: []core.Vec3{white}}
	for _, uv := range []core.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0.3, Y: 0.9}} {
		if got := broken.Sample(uv, core.Vec3{}); got != (core.Vec3{}) {
			t.Errorf("Expected black for uv %v, got %v", uv, got)
		}
	}
}

func TestImageTexture_SingleTexel(t *testing.T) {
	tex, err := NewImageTexture(1, 1, []core.Vec3{green})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, uv := range []core.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0.5, Y: 0.25}} {
		if got := tex.Sample(uv, core.Vec3{}); got != green {
			t.Errorf("Expected %v for uv %v, got %v", green, uv, got)
		}
	}
}

func TestCheckerTexture(t *testing.T) {
	tex := NewSolidCheckerTexture(white, blue, 0.5)

	tests := []struct {
		name     string
		point    core.Vec3
		expected core.Vec3
	}{
		{"Origin cell", core.NewVec3(0.1, 0.1, 0.1), white},
		{"Step in X", core.NewVec3(0.6, 0.1, 0.1), blue},
		{"Step in X and Y", core.NewVec3(0.6, 0.6, 0.1), white},
		{"Negative cell", core.NewVec3(-0.1, 0.1, 0.1), blue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tex.Sample(core.Vec2{}, tt.point); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestCheckerTexture_NestedTextures(t *testing.T) {
	img, err := NewImageTexture(2, 1, []core.Vec3{white, blue})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	noise := NewNoiseTexture(7, 1)
	tex := NewCheckerTexture(img, noise, 1)

	// Even cell samples the image by uv
	even := core.NewVec3(0.5, 0.5, 0.5)
	if got := tex.Sample(core.NewVec2(0, 0.5), even); got != white {
		t.Errorf("Expected %v from the image's left texel, got %v", white, got)
	}
	if got := tex.Sample(core.NewVec2(1, 0.5), even); got != blue {
		t.Errorf("Expected %v from the image's right texel, got %v", blue, got)
	}

	// Odd cell samples the noise at the world position
	odd := core.NewVec3(1.5, 0.5, 0.5)
	if got, want := tex.Sample(core.Vec2{}, odd), noise.Sample(core.Vec2{}, odd); got != want {
		t.Errorf("Expected noise value %v, got %v", want, got)
	}

	var empty Texture
	empty.Kind = TextureChecker
	if got := empty.Sample(core.Vec2{}, even); got != (core.Vec3{}) {
		t.Errorf("Expected black for a checker without cell textures, got %v", got)
	}
}

func TestNoiseTextures(t *testing.T) {
	noise := NewNoiseTexture(7, 1)
	perlinTex := NewPerlinTexture(7, 1)

	// Value noise is constant within a cell and stays in [0, 1]
	a := noise.Sample(core.Vec2{}, core.NewVec3(2.1, 3.2, -4.7))
	b := noise.Sample(core.Vec2{}, core.NewVec3(2.9, 3.8, -4.1))
	if a != b {
		t.Errorf("Expected equal noise within a cell, got %v and %v", a, b)
	}
	if a.X < 0 || a.X > 1 || a.X != a.Y || a.Y != a.Z {
		t.Errorf("Expected grey value in [0,1], got %v", a)
	}

	// Gradient noise vanishes on lattice points
	lattice := perlinTex.Sample(core.Vec2{}, core.NewVec3(3, -2, 5))
	if lattice != core.NewVec3(0.5, 0.5, 0.5) {
		t.Errorf("Expected 0.5 grey on a lattice point, got %v", lattice)
	}

	// Deterministic for a given seed, different across seeds
	p := core.NewVec3(0.3, 1.7, 2.2)
	if perlinTex.Sample(core.Vec2{}, p) != perlinTex.Sample(core.Vec2{}, p) {
		t.Error("Expected deterministic perlin noise")
	}
	other := NewPerlinTexture(8, 1)
	if perlinTex.Sample(core.Vec2{}, p) == other.Sample(core.Vec2{}, p) {
		t.Error("Expected different seeds to give different noise")
	}
}

func TestNoiseInt_Range(t *testing.T) {
	for x := int64(-20); x < 20; x++ {
		v := noiseReal(x, 2*x, -x, 3)
		if v < -1 || v > 1 {
			t.Fatalf("noiseReal(%d) = %f outside [-1, 1]", x, v)
		}
	}
}
