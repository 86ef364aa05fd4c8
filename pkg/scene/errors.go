package scene

import "github.com/pkg/errors"

var (
	// ErrInvalidPrimitive is returned when a primitive has an unknown kind
	ErrInvalidPrimitive = errors.New("scene: invalid primitive")

	// ErrEmptyMesh is returned when a mesh contains no triangles
	ErrEmptyMesh = errors.New("scene: empty mesh")

	// ErrUnknownScene is returned by ByName for names that are not registered
	ErrUnknownScene = errors.New("scene: unknown scene")
)
