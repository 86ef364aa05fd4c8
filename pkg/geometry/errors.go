package geometry

import "github.com/pkg/errors"

var (
	// ErrCorruptBVH is returned by Validate when a node does not contain
	// the bounds of its children or primitives.
	ErrCorruptBVH = errors.New("geometry: corrupt BVH")

	// ErrInvalidMesh is returned when mesh data references vertices that
	// do not exist or its index list is not made of whole triangles.
	ErrInvalidMesh = errors.New("geometry: invalid mesh")
)
