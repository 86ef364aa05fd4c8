package renderer

import (
	"fmt"
	"image"

	"github.com/pkg/errors"
)

var (
	ErrInvalidOptions    = errors.New("renderer: invalid options")
	ErrInterrupted       = errors.New("renderer: interrupted while rendering")
	ErrNonFiniteRadiance = errors.New("renderer: integrator returned non-finite radiance")
	ErrRegionPanicked    = errors.New("renderer: region worker panicked")
)

// RegionError reports a fault confined to a single region. Pixels of other
// regions are unaffected.
type RegionError struct {
	Region int
	Bounds image.Rectangle
	Err    error
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("renderer: region %d %v: %v", e.Region, e.Bounds, e.Err)
}

func (e *RegionError) Unwrap() error { return e.Err }

// Cause lets errors.Cause reach the underlying fault.
func (e *RegionError) Cause() error { return e.Err }
