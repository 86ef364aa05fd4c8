package material

import "github.com/pkg/errors"

// ErrInvalidTexture is returned when an image texture's dimensions do not
// match its pixel buffer.
var ErrInvalidTexture = errors.New("material: invalid texture")
