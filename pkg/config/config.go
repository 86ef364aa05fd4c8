// Package config reads YAML render configurations: render options, an
// optional camera, and either a built-in scene or an inline scene
// description.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var logger = log.New("config")

// Vec is a YAML triple, written as [x, y, z]
type Vec [3]float64

func (v Vec) vec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// File is a parsed configuration file
type File struct {
	Render RenderConfig  `yaml:"render"`
	Camera *CameraConfig `yaml:"camera,omitempty"`
	Scene  SceneConfig   `yaml:"scene"`

	// Directory relative asset paths are resolved against
	dir string
}

// RenderConfig mirrors renderer.Options. Zero or absent values keep the
// defaults; pointer fields distinguish an explicit zero.
type RenderConfig struct {
	Width           int     `yaml:"width,omitempty"`
	Height          int     `yaml:"height,omitempty"`
	SamplesPerPixel int     `yaml:"spp,omitempty"`
	MaxDepth        *int    `yaml:"max_depth,omitempty"`
	RRMinBounces    *int    `yaml:"rr_bounces,omitempty"`
	Workers         int     `yaml:"workers,omitempty"`
	Partition       string  `yaml:"partition,omitempty"`
	TileSize        int     `yaml:"tile_size,omitempty"`
	Seed            *uint64 `yaml:"seed,omitempty"`
	Gamma           float64 `yaml:"gamma,omitempty"`
}

// CameraConfig overrides fields of the scene camera. Absent fields keep the
// scene's values; an explicit zero is applied.
type CameraConfig struct {
	LookFrom      *Vec     `yaml:"look_from,omitempty"`
	LookAt        *Vec     `yaml:"look_at,omitempty"`
	Up            *Vec     `yaml:"up,omitempty"`
	VFov          *float64 `yaml:"vfov,omitempty"`
	Aperture      *float64 `yaml:"aperture,omitempty"`
	FocusDistance *float64 `yaml:"focus_distance,omitempty"`
}

// Load reads and parses a configuration file. Asset paths inside it are
// resolved relative to the file's directory.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	f.dir = filepath.Dir(path)
	logger.Debugf("loaded config %s", path)
	return f, nil
}

// Parse decodes a configuration. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	f := &File{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && err != io.EOF {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return f, nil
}

// RenderOptions overlays the file's render section on renderer.DefaultOptions
// and validates the result
func (f *File) RenderOptions() (renderer.Options, error) {
	opts := renderer.DefaultOptions()
	r := f.Render

	if r.Width != 0 {
		opts.Width = r.Width
	}
	if r.Height != 0 {
		opts.Height = r.Height
	}
	if r.SamplesPerPixel != 0 {
		opts.SamplesPerPixel = r.SamplesPerPixel
	}
	if r.MaxDepth != nil {
		opts.MaxDepth = *r.MaxDepth
	}
	if r.RRMinBounces != nil {
		opts.RussianRouletteMinBounces = *r.RRMinBounces
	}
	if r.Workers != 0 {
		opts.NumWorkers = r.Workers
	}
	if r.Partition != "" {
		p, err := renderer.ParsePartition(r.Partition)
		if err != nil {
			return opts, err
		}
		opts.Partition = p
	}
	if r.TileSize != 0 {
		opts.TileSize = r.TileSize
	}
	if r.Seed != nil {
		opts.Seed = *r.Seed
	}
	if r.Gamma != 0 {
		opts.Gamma = r.Gamma
	}

	return opts, opts.Validate()
}

// apply merges the override into base
func (c *CameraConfig) apply(base geometry.CameraConfig) geometry.CameraConfig {
	if c == nil {
		return base
	}
	camera := base
	if c.LookFrom != nil {
		camera.LookFrom = c.LookFrom.vec3()
	}
	if c.LookAt != nil {
		camera.LookAt = c.LookAt.vec3()
	}
	if c.Up != nil {
		camera.Up = c.Up.vec3()
	}
	if c.VFov != nil {
		camera.VFov = *c.VFov
	}
	if c.Aperture != nil {
		camera.Aperture = *c.Aperture
	}
	if c.FocusDistance != nil {
		camera.FocusDistance = *c.FocusDistance
	}
	return camera
}

func (f *File) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || f.dir == "" {
		return path
	}
	return filepath.Join(f.dir, path)
}
