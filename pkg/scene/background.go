package scene

import "github.com/df07/go-pathtracer/pkg/core"

// BackgroundKind selects how escaped rays are colored
type BackgroundKind uint8

const (
	BackgroundConstant BackgroundKind = iota
	BackgroundGradient
)

// Background is the radiance seen by rays that leave the scene
type Background struct {
	Kind   BackgroundKind
	Color  core.Vec3 // Constant
	Bottom core.Vec3 // Gradient color looking straight down
	Top    core.Vec3 // Gradient color looking straight up
}

// NewConstantBackground returns the same radiance in every direction
func NewConstantBackground(color core.Vec3) Background {
	return Background{Kind: BackgroundConstant, Color: color}
}

// NewGradientBackground blends linearly from bottom to top by ray elevation
func NewGradientBackground(bottom, top core.Vec3) Background {
	return Background{Kind: BackgroundGradient, Bottom: bottom, Top: top}
}

// DefaultBackground is a sky gradient from white at the horizon to blue
func DefaultBackground() Background {
	return NewGradientBackground(core.NewVec3(1.0, 1.0, 1.0), core.NewVec3(0.5, 0.7, 1.0))
}

// Sample returns the background radiance for an escaped ray
func (b Background) Sample(ray core.Ray) core.Vec3 {
	switch b.Kind {
	case BackgroundGradient:
		unit := ray.Direction.Normalize()
		t := 0.5 * (unit.Y + 1.0)
		return b.Bottom.Multiply(1.0 - t).Add(b.Top.Multiply(t))
	default:
		return b.Color
	}
}
