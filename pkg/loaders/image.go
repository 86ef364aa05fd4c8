package loaders

import (
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"os"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
)

// ImageData contains loaded image data as a row-major Vec3 color array,
// row 0 at the top
type ImageData struct {
	Width  int
	Height int
	Format string // Decoder that read the data: png, jpeg, bmp or tiff
	Pixels []core.Vec3
}

// LoadImage loads a PNG, JPEG, BMP or TIFF image
func LoadImage(filename string) (*ImageData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open image file")
	}
	defer file.Close()

	data, err := DecodeImage(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", filename)
	}
	logger.Debugf("loaded %s image %s: %dx%d", data.Format, filename, data.Width, data.Height)
	return data, nil
}

// DecodeImage decodes any registered image format (auto-detected from the
// header) into linear [0,1] colors. Alpha is ignored.
func DecodeImage(r io.Reader) (*ImageData, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidImage, err.Error())
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidImage, "empty %s image", format)
	}

	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535], convert to [0, 1]
			pixels[y*width+x] = core.NewVec3(
				float64(r)/65535.0,
				float64(g)/65535.0,
				float64(b)/65535.0,
			)
		}
	}

	return &ImageData{
		Width:  width,
		Height: height,
		Format: format,
		Pixels: pixels,
	}, nil
}

// Texture wraps the image in a bilinearly filtered image texture
func (d *ImageData) Texture() (material.Texture, error) {
	return material.NewImageTexture(d.Width, d.Height, d.Pixels)
}
