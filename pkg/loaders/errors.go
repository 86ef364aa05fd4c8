package loaders

import "github.com/pkg/errors"

var (
	ErrInvalidPLY   = errors.New("loaders: invalid PLY data")
	ErrInvalidImage = errors.New("loaders: invalid image data")
)
