package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/pkg/errors"
)

// TextureKind identifies how a Texture computes its color
type TextureKind uint8

const (
	TextureConstant TextureKind = iota
	TextureImage
	TextureChecker
	TextureNoise
	TexturePerlin
)

func (k TextureKind) String() string {
	switch k {
	case TextureConstant:
		return "constant"
	case TextureImage:
		return "image"
	case TextureChecker:
		return "checker"
	case TextureNoise:
		return "noise"
	case TexturePerlin:
		return "perlin"
	default:
		return "unknown"
	}
}

// Texture maps a surface location to a color. Only the fields for its Kind
// are meaningful.
type Texture struct {
	Kind TextureKind

	Color core.Vec3 // Constant

	Width, Height int         // Image
	Pixels        []core.Vec3 // Image, row-major with row 0 at the top

	Even, Odd *Texture // Checker cell textures

	Scale float64 // Checker cell size, noise feature size
	Seed  int64   // Noise and Perlin
}

// NewConstantTexture creates a texture with the same color everywhere
func NewConstantTexture(color core.Vec3) Texture {
	return Texture{Kind: TextureConstant, Color: color}
}

// NewImageTexture creates a bilinearly filtered image texture. Pixels are
// row-major starting at the top row.
func NewImageTexture(width, height int, pixels []core.Vec3) (Texture, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height {
		return Texture{}, errors.Wrapf(ErrInvalidTexture, "%dx%d image with %d pixels", width, height, len(pixels))
	}
	return Texture{Kind: TextureImage, Width: width, Height: height, Pixels: pixels}, nil
}

// NewCheckerTexture creates a 3D checkerboard of cells with the given edge
// length, alternating between two textures
func NewCheckerTexture(even, odd Texture, scale float64) Texture {
	return Texture{Kind: TextureChecker, Even: &even, Odd: &odd, Scale: scale}
}

// NewSolidCheckerTexture creates a checkerboard of two constant colors
func NewSolidCheckerTexture(even, odd core.Vec3, scale float64) Texture {
	return NewCheckerTexture(NewConstantTexture(even), NewConstantTexture(odd), scale)
}

// NewNoiseTexture creates blocky value noise with cells of the given size
func NewNoiseTexture(seed int64, scale float64) Texture {
	return Texture{Kind: TextureNoise, Seed: seed, Scale: scale}
}

// NewPerlinTexture creates smooth gradient noise with features of the given size
func NewPerlinTexture(seed int64, scale float64) Texture {
	return Texture{Kind: TexturePerlin, Seed: seed, Scale: scale}
}

// Sample evaluates the texture at surface coordinates uv and world position p
func (t *Texture) Sample(uv core.Vec2, p core.Vec3) core.Vec3 {
	switch t.Kind {
	case TextureConstant:
		return t.Color
	case TextureImage:
		return t.sampleImage(uv)
	case TextureChecker:
		return t.sampleChecker(uv, p)
	case TextureNoise:
		x := 0.5*noiseReal(floorInt(p.X/t.scale()), floorInt(p.Y/t.scale()), floorInt(p.Z/t.scale()), t.Seed) + 0.5
		return core.NewVec3(x, x, x)
	case TexturePerlin:
		x := 0.5*perlin(p.Multiply(1/t.scale()), t.Seed) + 0.5
		return core.NewVec3(x, x, x)
	default:
		return core.Vec3{}
	}
}

func (t *Texture) scale() float64 {
	if t.Scale > 0 {
		return t.Scale
	}
	return 1
}

// sampleImage clamps uv to [0,1], flips v so that v=1 is the top row, and
// blends the four nearest texels. A malformed texture samples as black.
func (t *Texture) sampleImage(uv core.Vec2) core.Vec3 {
	if t.Width <= 0 || t.Height <= 0 || len(t.Pixels) != t.Width*t.Height {
		return core.Vec3{}
	}

	u := clamp01(uv.X)
	v := 1 - clamp01(uv.Y)

	x := u * float64(t.Width-1)
	y := v * float64(t.Height-1)
	x0, y0 := int(x), int(y)
	x1, y1 := min(x0+1, t.Width-1), min(y0+1, t.Height-1)
	fx, fy := x-float64(x0), y-float64(y0)

	top := t.Pixels[y0*t.Width+x0].Multiply(1 - fx).Add(t.Pixels[y0*t.Width+x1].Multiply(fx))
	bottom := t.Pixels[y1*t.Width+x0].Multiply(1 - fx).Add(t.Pixels[y1*t.Width+x1].Multiply(fx))
	return top.Multiply(1 - fy).Add(bottom.Multiply(fy))
}

// sampleChecker picks the cell texture at p and samples it. A missing cell
// texture samples as black.
func (t *Texture) sampleChecker(uv core.Vec2, p core.Vec3) core.Vec3 {
	s := t.scale()
	sum := math.Floor(p.X/s) + math.Floor(p.Y/s) + math.Floor(p.Z/s)
	cell := t.Odd
	if math.Mod(sum, 2) == 0 {
		cell = t.Even
	}
	if cell == nil {
		return core.Vec3{}
	}
	return cell.Sample(uv, p)
}

// clamp01 maps NaN to 0
func clamp01(x float64) float64 {
	if !(x > 0) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
