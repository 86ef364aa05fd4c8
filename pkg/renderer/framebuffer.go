package renderer

import (
	"image"
	"image/color"

	"github.com/df07/go-pathtracer/pkg/core"
)

// PixelStats accumulates the samples of a single pixel
type PixelStats struct {
	Sum   core.Vec3 // Sum of linear radiance samples
	Count int       // Number of samples taken
}

// AddSample adds a radiance sample to the pixel
func (ps *PixelStats) AddSample(radiance core.Vec3) {
	ps.Sum = ps.Sum.Add(radiance)
	ps.Count++
}

// Color returns the current average radiance for this pixel
func (ps PixelStats) Color() core.Vec3 {
	if ps.Count == 0 {
		return core.Vec3{}
	}
	return ps.Sum.Multiply(1.0 / float64(ps.Count))
}

// Framebuffer holds per-pixel accumulators in row-major order, row 0 at the
// top. Each pixel is written by the single worker that owns its region, so
// no locking is needed.
type Framebuffer struct {
	width, height int
	pixels        []PixelStats
	complete      []bool
}

// NewFramebuffer creates a zeroed framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	width, height = max(0, width), max(0, height)
	return &Framebuffer{
		width:    width,
		height:   height,
		pixels:   make([]PixelStats, width*height),
		complete: make([]bool, width*height),
	}
}

func (fb *Framebuffer) Width() int  { return fb.width }
func (fb *Framebuffer) Height() int { return fb.height }

func (fb *Framebuffer) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= fb.width || y >= fb.height {
		return 0, false
	}
	return y*fb.width + x, true
}

// Pixel returns the accumulator at (x, y); out of range yields a zero value.
func (fb *Framebuffer) Pixel(x, y int) PixelStats {
	if i, ok := fb.index(x, y); ok {
		return fb.pixels[i]
	}
	return PixelStats{}
}

// Complete reports whether every sample of pixel (x, y) was taken
func (fb *Framebuffer) Complete(x, y int) bool {
	i, ok := fb.index(x, y)
	return ok && fb.complete[i]
}

// CompletedPixels counts the pixels that received all their samples
func (fb *Framebuffer) CompletedPixels() int {
	n := 0
	for _, done := range fb.complete {
		if done {
			n++
		}
	}
	return n
}

func (fb *Framebuffer) addSample(x, y int, radiance core.Vec3) {
	fb.pixels[y*fb.width+x].AddSample(radiance)
}

func (fb *Framebuffer) markComplete(x, y int) {
	fb.complete[y*fb.width+x] = true
}

// Resolve averages every pixel, clamps it to [0,1] and applies gamma. The
// result is row-major with row 0 at the top.
func (fb *Framebuffer) Resolve(gamma float64) []core.Vec3 {
	out := make([]core.Vec3, len(fb.pixels))
	for i, ps := range fb.pixels {
		out[i] = resolvePixel(ps.Color(), gamma)
	}
	return out
}

// Image converts the framebuffer to an 8-bit RGBA image for encoders
func (fb *Framebuffer) Image(gamma float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	for y := 0; y < fb.height; y++ {
		for x := 0; x < fb.width; x++ {
			c := resolvePixel(fb.pixels[y*fb.width+x].Color(), gamma)
			img.SetRGBA(x, y, color.RGBA{
				R: toByte(c.X),
				G: toByte(c.Y),
				B: toByte(c.Z),
				A: 255,
			})
		}
	}
	return img
}

func resolvePixel(c core.Vec3, gamma float64) core.Vec3 {
	if !c.IsFinite() {
		return core.Vec3{}
	}
	c = c.Clamp(0.0, 1.0)
	if gamma > 0 && gamma != 1 {
		c = c.GammaCorrect(gamma)
	}
	return c
}

func toByte(v float64) uint8 {
	return uint8(255*v + 0.5)
}
