package scene

import (
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/pkg/errors"
)

var logger = log.New("scene")

// Builder accumulates scene content. It is not safe for concurrent use.
// Build produces an immutable Scene; the builder may keep being used
// afterwards without affecting scenes already built.
type Builder struct {
	name       string
	materials  []material.Material
	prims      []geometry.Primitive
	background Background
	camera     geometry.CameraConfig
	bvhOptions geometry.BuildOptions
}

// NewBuilder creates a builder with the default sky background and camera
func NewBuilder(name string) *Builder {
	return &Builder{
		name:       name,
		background: DefaultBackground(),
		camera:     geometry.DefaultCameraConfig(),
		bvhOptions: geometry.DefaultBuildOptions(),
	}
}

// AddMaterial appends a material and returns its id
func (b *Builder) AddMaterial(m material.Material) geometry.MaterialID {
	b.materials = append(b.materials, m)
	return geometry.MaterialID(len(b.materials) - 1)
}

// AddPrimitive appends a primitive. Degenerate primitives are accepted and
// left out of the BVH at build time.
func (b *Builder) AddPrimitive(p geometry.Primitive) error {
	if p.Kind != geometry.KindTriangle && p.Kind != geometry.KindSphere {
		return errors.Wrapf(ErrInvalidPrimitive, "kind %d", p.Kind)
	}
	b.prims = append(b.prims, p)
	return nil
}

// AddSphere appends a sphere
func (b *Builder) AddSphere(center core.Vec3, radius float64, mat geometry.MaterialID) {
	b.prims = append(b.prims, geometry.NewSphere(center, radius, mat))
}

// AddTriangle appends a flat triangle
func (b *Builder) AddTriangle(v0, v1, v2 core.Vec3, mat geometry.MaterialID) {
	b.prims = append(b.prims, geometry.NewTriangle(v0, v1, v2, mat))
}

// AddQuad appends the parallelogram corner, corner+u, corner+u+v, corner+v
// as two triangles. The front face is on the u × v side.
func (b *Builder) AddQuad(corner, u, v core.Vec3, mat geometry.MaterialID) {
	p1 := corner.Add(u)
	p2 := corner.Add(u).Add(v)
	p3 := corner.Add(v)
	b.AddTriangle(corner, p1, p2, mat)
	b.AddTriangle(corner, p2, p3, mat)
}

// AddBox appends an axis-aligned box made of six quads with outward faces
func (b *Builder) AddBox(min, max core.Vec3, mat geometry.MaterialID) {
	dx := core.NewVec3(max.X-min.X, 0, 0)
	dy := core.NewVec3(0, max.Y-min.Y, 0)
	dz := core.NewVec3(0, 0, max.Z-min.Z)

	b.AddQuad(core.NewVec3(min.X, min.Y, max.Z), dx, dy, mat)          // front
	b.AddQuad(core.NewVec3(max.X, min.Y, min.Z), dx.Negate(), dy, mat) // back
	b.AddQuad(core.NewVec3(min.X, min.Y, min.Z), dz, dy, mat)          // left
	b.AddQuad(core.NewVec3(max.X, min.Y, max.Z), dz.Negate(), dy, mat) // right
	b.AddQuad(core.NewVec3(min.X, max.Y, max.Z), dx, dz.Negate(), mat) // top
	b.AddQuad(core.NewVec3(min.X, min.Y, min.Z), dx, dz, mat)          // bottom
}

// AddMesh appends every triangle of the mesh. Triangles outside the mesh's
// material groups use mat.
func (b *Builder) AddMesh(mesh *geometry.MeshData, mat geometry.MaterialID) error {
	if mesh == nil || mesh.TriangleCount() == 0 {
		return ErrEmptyMesh
	}
	tris, err := mesh.Triangles(mat)
	if err != nil {
		return errors.Wrap(err, "adding mesh")
	}
	b.prims = append(b.prims, tris...)
	return nil
}

// SetBackground sets the radiance for rays that escape the scene
func (b *Builder) SetBackground(bg Background) {
	b.background = bg
}

// SetCamera sets the scene camera
func (b *Builder) SetCamera(cfg geometry.CameraConfig) {
	b.camera = cfg
}

// SetBVHOptions overrides the BVH construction options
func (b *Builder) SetBVHOptions(opts geometry.BuildOptions) {
	b.bvhOptions = opts
}

// PrimitiveCount returns the number of primitives added so far
func (b *Builder) PrimitiveCount() int {
	return len(b.prims)
}

// Build freezes the accumulated content into a Scene and builds its BVH
func (b *Builder) Build() (*Scene, error) {
	start := time.Now()

	bvh := geometry.BuildBVH(b.prims, b.bvhOptions)
	if err := bvh.Validate(); err != nil {
		return nil, errors.Wrapf(err, "building scene %q", b.name)
	}

	s := &Scene{
		name:       b.name,
		materials:  append([]material.Material(nil), b.materials...),
		bvh:        bvh,
		background: b.background,
		camera:     b.camera,
		fallback:   material.DefaultMaterial(),
	}

	stats := bvh.Stats()
	logger.Infof("built scene %q: %d primitives (%d degenerate), %d materials, %d BVH nodes in %s",
		b.name, stats.Primitives, stats.Excluded, len(s.materials), stats.Nodes, time.Since(start))

	return s, nil
}
