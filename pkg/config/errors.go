package config

import "github.com/pkg/errors"

var (
	ErrInvalidConfig   = errors.New("config: invalid configuration")
	ErrUnknownMaterial = errors.New("config: unknown material")
	ErrUnknownTexture  = errors.New("config: unknown texture")
)
