package config

import (
	"maps"
	"slices"
	"strings"

	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/pkg/errors"
)

// SceneConfig selects a built-in scene or describes one inline. Builtin
// and inline content are mutually exclusive.
type SceneConfig struct {
	Builtin    string                    `yaml:"builtin,omitempty"`
	Name       string                    `yaml:"name,omitempty"`
	Background *BackgroundConfig         `yaml:"background,omitempty"`
	Textures   map[string]TextureConfig  `yaml:"textures,omitempty"`
	Materials  map[string]MaterialConfig `yaml:"materials,omitempty"`
	Spheres    []SphereConfig            `yaml:"spheres,omitempty"`
	Triangles  []TriangleConfig          `yaml:"triangles,omitempty"`
	Quads      []QuadConfig              `yaml:"quads,omitempty"`
	Boxes      []BoxConfig               `yaml:"boxes,omitempty"`
	Meshes     []MeshConfig              `yaml:"meshes,omitempty"`
	BVH        *BVHConfig                `yaml:"bvh,omitempty"`
}

// BackgroundConfig is either {type: constant, color} or
// {type: gradient, bottom, top}
type BackgroundConfig struct {
	Type   string `yaml:"type"`
	Color  Vec    `yaml:"color,omitempty"`
	Bottom Vec    `yaml:"bottom,omitempty"`
	Top    Vec    `yaml:"top,omitempty"`
}

// TextureConfig describes a named texture. Type is one of constant, image,
// checker, noise or perlin. A checker cell is the texture named by
// EvenTexture/OddTexture, or else the constant Even/Odd color.
type TextureConfig struct {
	Type        string  `yaml:"type"`
	Color       Vec     `yaml:"color,omitempty"`
	Path        string  `yaml:"path,omitempty"`
	Even        Vec     `yaml:"even,omitempty"`
	Odd         Vec     `yaml:"odd,omitempty"`
	EvenTexture string  `yaml:"even_texture,omitempty"`
	OddTexture  string  `yaml:"odd_texture,omitempty"`
	Scale       float64 `yaml:"scale,omitempty"`
	Seed        int64   `yaml:"seed,omitempty"`
}

// MaterialConfig describes a named material. Type is one of lambertian,
// metal, dielectric or emissive. Color is the albedo (or radiance for
// emissive) unless Texture names a texture.
type MaterialConfig struct {
	Type            string  `yaml:"type"`
	Color           Vec     `yaml:"color,omitempty"`
	Texture         string  `yaml:"texture,omitempty"`
	Fuzz            float64 `yaml:"fuzz,omitempty"`
	RefractiveIndex float64 `yaml:"refractive_index,omitempty"`
}

type SphereConfig struct {
	Center   Vec     `yaml:"center"`
	Radius   float64 `yaml:"radius"`
	Material string  `yaml:"material"`
}

type TriangleConfig struct {
	Vertices [3]Vec `yaml:"vertices"`
	Material string `yaml:"material"`
}

// QuadConfig is the parallelogram corner, corner+u, corner+u+v, corner+v
type QuadConfig struct {
	Corner   Vec    `yaml:"corner"`
	U        Vec    `yaml:"u"`
	V        Vec    `yaml:"v"`
	Material string `yaml:"material"`
}

type BoxConfig struct {
	Min      Vec    `yaml:"min"`
	Max      Vec    `yaml:"max"`
	Material string `yaml:"material"`
}

// MeshConfig loads a PLY mesh, scales it about the origin, then translates it
type MeshConfig struct {
	Path      string  `yaml:"path"`
	Material  string  `yaml:"material"`
	Scale     float64 `yaml:"scale,omitempty"`
	Translate Vec     `yaml:"translate,omitempty"`
}

type BVHConfig struct {
	LeafSize int    `yaml:"leaf_size,omitempty"`
	Strategy string `yaml:"strategy,omitempty"` // sah or median
	Buckets  int    `yaml:"buckets,omitempty"`
}

func (s *SceneConfig) inline() bool {
	return s.Background != nil || len(s.Textures) != 0 || len(s.Materials) != 0 ||
		len(s.Spheres) != 0 || len(s.Triangles) != 0 || len(s.Quads) != 0 ||
		len(s.Boxes) != 0 || len(s.Meshes) != 0 || s.BVH != nil
}

// BuildScene builds the configured scene and applies the camera override.
// An absent scene section selects the "default" built-in scene.
func (f *File) BuildScene() (*scene.Scene, error) {
	sc := &f.Scene

	if sc.Builtin != "" && sc.inline() {
		return nil, errors.Wrap(ErrInvalidConfig, "builtin scene cannot be combined with inline content")
	}

	if !sc.inline() {
		name := sc.Builtin
		if name == "" {
			name = "default"
		}
		s, err := scene.ByName(name)
		if err != nil {
			return nil, errors.Wrap(err, "config")
		}
		return s.WithCamera(f.Camera.apply(s.Camera())), nil
	}

	return f.buildInline()
}

func (f *File) buildInline() (*scene.Scene, error) {
	sc := &f.Scene
	name := sc.Name
	if name == "" {
		name = "inline"
	}
	b := scene.NewBuilder(name)

	if sc.Background != nil {
		bg, err := sc.Background.build()
		if err != nil {
			return nil, err
		}
		b.SetBackground(bg)
	}

	if sc.BVH != nil {
		opts, err := sc.BVH.build()
		if err != nil {
			return nil, err
		}
		b.SetBVHOptions(opts)
	}

	ts := &textureSet{
		file:     f,
		configs:  sc.Textures,
		built:    make(map[string]material.Texture, len(sc.Textures)),
		visiting: make(map[string]bool),
	}
	for _, name := range slices.Sorted(maps.Keys(sc.Textures)) {
		if _, err := ts.get(name); err != nil {
			return nil, err
		}
	}
	textures := ts.built

	// Sorted so material ids do not depend on map order
	materials := make(map[string]geometry.MaterialID, len(sc.Materials))
	for _, name := range slices.Sorted(maps.Keys(sc.Materials)) {
		m, err := sc.Materials[name].build(textures)
		if err != nil {
			return nil, errors.Wrapf(err, "material %q", name)
		}
		materials[name] = b.AddMaterial(m)
	}
	lookup := func(name string) (geometry.MaterialID, error) {
		id, ok := materials[name]
		if !ok {
			return 0, errors.Wrapf(ErrUnknownMaterial, "%q", name)
		}
		return id, nil
	}

	for i, s := range sc.Spheres {
		mat, err := lookup(s.Material)
		if err != nil {
			return nil, errors.Wrapf(err, "sphere %d", i)
		}
		b.AddSphere(s.Center.vec3(), s.Radius, mat)
	}
	for i, t := range sc.Triangles {
		mat, err := lookup(t.Material)
		if err != nil {
			return nil, errors.Wrapf(err, "triangle %d", i)
		}
		b.AddTriangle(t.Vertices[0].vec3(), t.Vertices[1].vec3(), t.Vertices[2].vec3(), mat)
	}
	for i, q := range sc.Quads {
		mat, err := lookup(q.Material)
		if err != nil {
			return nil, errors.Wrapf(err, "quad %d", i)
		}
		b.AddQuad(q.Corner.vec3(), q.U.vec3(), q.V.vec3(), mat)
	}
	for i, box := range sc.Boxes {
		mat, err := lookup(box.Material)
		if err != nil {
			return nil, errors.Wrapf(err, "box %d", i)
		}
		b.AddBox(box.Min.vec3(), box.Max.vec3(), mat)
	}
	for i, m := range sc.Meshes {
		mat, err := lookup(m.Material)
		if err != nil {
			return nil, errors.Wrapf(err, "mesh %d", i)
		}
		mesh, err := loaders.LoadPLY(f.resolve(m.Path))
		if err != nil {
			return nil, errors.Wrapf(err, "mesh %d", i)
		}
		m.transform(mesh)
		if err := b.AddMesh(mesh, mat); err != nil {
			return nil, errors.Wrapf(err, "mesh %d", i)
		}
	}

	if f.Camera != nil {
		b.SetCamera(f.Camera.apply(geometry.DefaultCameraConfig()))
	}

	logger.Debugf("inline scene %q: %d materials, %d primitives", name, len(materials), b.PrimitiveCount())
	return b.Build()
}

func (m MeshConfig) transform(mesh *geometry.MeshData) {
	scale := m.Scale
	if scale == 0 {
		scale = 1
	}
	offset := m.Translate.vec3()
	for i, p := range mesh.Positions {
		mesh.Positions[i] = p.Multiply(scale).Add(offset)
	}
	if scale < 0 {
		for i, n := range mesh.Normals {
			mesh.Normals[i] = n.Negate()
		}
	}
}

func (bg *BackgroundConfig) build() (scene.Background, error) {
	switch strings.ToLower(bg.Type) {
	case "constant":
		return scene.NewConstantBackground(bg.Color.vec3()), nil
	case "", "gradient":
		if bg.Bottom == (Vec{}) && bg.Top == (Vec{}) {
			return scene.DefaultBackground(), nil
		}
		return scene.NewGradientBackground(bg.Bottom.vec3(), bg.Top.vec3()), nil
	default:
		return scene.Background{}, errors.Wrapf(ErrInvalidConfig, "unknown background type %q", bg.Type)
	}
}

func (c *BVHConfig) build() (geometry.BuildOptions, error) {
	opts := geometry.DefaultBuildOptions()
	if c.LeafSize != 0 {
		opts.LeafSize = c.LeafSize
	}
	if c.Buckets != 0 {
		opts.Buckets = c.Buckets
	}
	switch strings.ToLower(c.Strategy) {
	case "", "sah":
		opts.Strategy = geometry.SplitSAH
	case "median":
		opts.Strategy = geometry.SplitMedian
	default:
		return opts, errors.Wrapf(ErrInvalidConfig, "unknown bvh strategy %q", c.Strategy)
	}
	return opts, nil
}

// textureSet builds named textures on demand so checkers can refer to
// other textures regardless of declaration order
type textureSet struct {
	file     *File
	configs  map[string]TextureConfig
	built    map[string]material.Texture
	visiting map[string]bool
}

func (ts *textureSet) get(name string) (material.Texture, error) {
	if tex, ok := ts.built[name]; ok {
		return tex, nil
	}
	cfg, ok := ts.configs[name]
	if !ok {
		return material.Texture{}, errors.Wrapf(ErrUnknownTexture, "%q", name)
	}
	if ts.visiting[name] {
		return material.Texture{}, errors.Wrapf(ErrInvalidConfig, "texture %q refers to itself", name)
	}
	ts.visiting[name] = true
	defer delete(ts.visiting, name)

	tex, err := ts.file.buildTexture(cfg, ts)
	if err != nil {
		return material.Texture{}, errors.Wrapf(err, "texture %q", name)
	}
	ts.built[name] = tex
	return tex, nil
}

// cell resolves one side of a checker
func (ts *textureSet) cell(ref string, color Vec) (material.Texture, error) {
	if ref == "" {
		return material.NewConstantTexture(color.vec3()), nil
	}
	return ts.get(ref)
}

func (f *File) buildTexture(t TextureConfig, ts *textureSet) (material.Texture, error) {
	switch strings.ToLower(t.Type) {
	case "", "constant":
		return material.NewConstantTexture(t.Color.vec3()), nil
	case "image":
		img, err := loaders.LoadImage(f.resolve(t.Path))
		if err != nil {
			return material.Texture{}, err
		}
		return img.Texture()
	case "checker":
		even, err := ts.cell(t.EvenTexture, t.Even)
		if err != nil {
			return material.Texture{}, err
		}
		odd, err := ts.cell(t.OddTexture, t.Odd)
		if err != nil {
			return material.Texture{}, err
		}
		return material.NewCheckerTexture(even, odd, t.Scale), nil
	case "noise":
		return material.NewNoiseTexture(t.Seed, t.Scale), nil
	case "perlin":
		return material.NewPerlinTexture(t.Seed, t.Scale), nil
	default:
		return material.Texture{}, errors.Wrapf(ErrInvalidConfig, "unknown texture type %q", t.Type)
	}
}

func (m MaterialConfig) build(textures map[string]material.Texture) (material.Material, error) {
	tex := material.NewConstantTexture(m.Color.vec3())
	if m.Texture != "" {
		t, ok := textures[m.Texture]
		if !ok {
			return material.Material{}, errors.Wrapf(ErrUnknownTexture, "%q", m.Texture)
		}
		tex = t
	}

	switch strings.ToLower(m.Type) {
	case "lambertian", "diffuse":
		return material.NewLambertian(tex), nil
	case "metal":
		return material.NewMetal(tex, m.Fuzz), nil
	case "dielectric", "glass":
		index := m.RefractiveIndex
		if index == 0 {
			index = 1.5
		}
		return material.NewDielectric(index), nil
	case "emissive", "light":
		return material.NewEmissive(tex), nil
	default:
		return material.Material{}, errors.Wrapf(ErrInvalidConfig, "unknown material type %q", m.Type)
	}
}
