package geometry

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/pkg/errors"
)

// Group assigns a material to a contiguous run of triangles in a mesh.
// Start and Count are measured in triangles, not indices.
type Group struct {
	Start    int
	Count    int
	Material MaterialID
}

// MeshData is an indexed triangle mesh as produced by a loader.
// Normals and UVs are optional; when present they are indexed like Positions.
type MeshData struct {
	Positions []core.Vec3
	Normals   []core.Vec3
	UVs       []core.Vec2
	Indices   []int
	Groups    []Group
}

// TriangleCount returns the number of triangles described by the index list
func (m *MeshData) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds returns the bounding box of all vertex positions
func (m *MeshData) Bounds() core.AABB {
	return core.NewAABBFromPoints(m.Positions...)
}

// Validate checks that the index list is made of whole triangles and only
// references existing vertices
func (m *MeshData) Validate() error {
	if len(m.Indices)%3 != 0 {
		return errors.Wrapf(ErrInvalidMesh, "index count %d is not a multiple of 3", len(m.Indices))
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Positions) {
		return errors.Wrapf(ErrInvalidMesh, "%d normals for %d positions", len(m.Normals), len(m.Positions))
	}
	if len(m.UVs) != 0 && len(m.UVs) != len(m.Positions) {
		return errors.Wrapf(ErrInvalidMesh, "%d uvs for %d positions", len(m.UVs), len(m.Positions))
	}
	for i, idx := range m.Indices {
		if idx < 0 || idx >= len(m.Positions) {
			return errors.Wrapf(ErrInvalidMesh, "index %d at position %d out of range [0, %d)", idx, i, len(m.Positions))
		}
	}
	return nil
}

// Triangles converts the mesh into triangle primitives. Triangles not
// covered by a group use defaultMaterial.
func (m *MeshData) Triangles(defaultMaterial MaterialID) ([]Primitive, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	count := m.TriangleCount()
	materials := make([]MaterialID, count)
	for i := range materials {
		materials[i] = defaultMaterial
	}
	for _, g := range m.Groups {
		for i := max(g.Start, 0); i-g.Start < g.Count && i < count; i++ {
			materials[i] = g.Material
		}
	}

	triangles := make([]Primitive, 0, count)
	for i := 0; i < count; i++ {
		i0, i1, i2 := m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]
		v := [3]core.Vec3{m.Positions[i0], m.Positions[i1], m.Positions[i2]}

		uv := defaultTriangleUVs
		if len(m.UVs) != 0 {
			uv = [3]core.Vec2{m.UVs[i0], m.UVs[i1], m.UVs[i2]}
		}

		var tri Primitive
		if len(m.Normals) != 0 {
			n := [3]core.Vec3{m.Normals[i0], m.Normals[i1], m.Normals[i2]}
			tri = NewSmoothTriangle(v, n, uv, materials[i])
		} else {
			tri = NewTriangle(v[0], v[1], v[2], materials[i])
			tri.UV0, tri.UV1, tri.UV2 = uv[0], uv[1], uv[2]
		}
		triangles = append(triangles, tri)
	}

	return triangles, nil
}
