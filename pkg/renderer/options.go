package renderer

import (
	"math"
	"runtime"
	"strings"

	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/pkg/errors"
)

// Partition selects how the image is split into independent regions
type Partition uint8

const (
	PartitionTiles Partition = iota // Square tiles of TileSize pixels
	PartitionRows                   // One region per image row
)

func (p Partition) String() string {
	switch p {
	case PartitionTiles:
		return "tiles"
	case PartitionRows:
		return "rows"
	default:
		return "unknown"
	}
}

// ParsePartition maps "tiles" or "rows" to a Partition.
func ParsePartition(name string) (Partition, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "tiles":
		return PartitionTiles, nil
	case "rows":
		return PartitionRows, nil
	default:
		return 0, errors.Wrapf(ErrInvalidOptions, "unknown partition %q", name)
	}
}

// Options contains the configuration for a single render
type Options struct {
	// Frame dims.
	Width  int
	Height int

	// Primary rays traced per pixel.
	SamplesPerPixel int

	// Maximum scene queries per path.
	MaxDepth int

	// Bounces before Russian roulette may terminate a path.
	RussianRouletteMinBounces int

	// Parallel workers (0 = use CPU count).
	NumWorkers int

	// Region layout; TileSize only applies to PartitionTiles.
	Partition Partition
	TileSize  int

	// Global seed. Each region derives its own stream from (Seed, region id).
	Seed uint64

	// Display gamma applied when resolving the framebuffer.
	Gamma float64
}

// DefaultOptions returns sensible default values
func DefaultOptions() Options {
	return Options{
		Width:                     400,
		Height:                    225,
		SamplesPerPixel:           100,
		MaxDepth:                  50,
		RussianRouletteMinBounces: 5,
		NumWorkers:                0, // Auto-detect CPU count
		Partition:                 PartitionTiles,
		TileSize:                  32,
		Seed:                      42,
		Gamma:                     2.0,
	}
}

// Validate checks the options and reports the first problem found.
func (o Options) Validate() error {
	switch {
	case o.Width <= 0 || o.Height <= 0:
		return errors.Wrapf(ErrInvalidOptions, "frame size %dx%d", o.Width, o.Height)
	case o.SamplesPerPixel <= 0:
		return errors.Wrapf(ErrInvalidOptions, "samples per pixel %d", o.SamplesPerPixel)
	case o.MaxDepth < 0:
		return errors.Wrapf(ErrInvalidOptions, "max depth %d", o.MaxDepth)
	case o.RussianRouletteMinBounces < 0:
		return errors.Wrapf(ErrInvalidOptions, "russian roulette bounces %d", o.RussianRouletteMinBounces)
	case o.NumWorkers < 0:
		return errors.Wrapf(ErrInvalidOptions, "workers %d", o.NumWorkers)
	case o.Partition != PartitionTiles && o.Partition != PartitionRows:
		return errors.Wrapf(ErrInvalidOptions, "partition %d", o.Partition)
	case o.Partition == PartitionTiles && o.TileSize <= 0:
		return errors.Wrapf(ErrInvalidOptions, "tile size %d", o.TileSize)
	case !(o.Gamma > 0) || math.IsInf(o.Gamma, 0):
		return errors.Wrapf(ErrInvalidOptions, "gamma %v", o.Gamma)
	}
	return nil
}

// IntegratorConfig returns the path tracing parameters implied by the options
func (o Options) IntegratorConfig() integrator.Config {
	config := integrator.DefaultConfig()
	config.MaxDepth = o.MaxDepth
	config.RussianRouletteMinBounces = o.RussianRouletteMinBounces
	return config
}

// Workers returns the effective worker count
func (o Options) Workers() int {
	if o.NumWorkers <= 0 {
		return runtime.NumCPU()
	}
	return o.NumWorkers
}
