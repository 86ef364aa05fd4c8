package loaders

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/pkg/errors"
)

var logger = log.New("loaders")

// PLY body encodings
const (
	FormatASCII              = "ascii"
	FormatBinaryLittleEndian = "binary_little_endian"
	FormatBinaryBigEndian    = "binary_big_endian"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format   string // FormatASCII, FormatBinaryLittleEndian or FormatBinaryBigEndian
	Version  string // Usually "1.0"
	Elements []PLYElement
}

// PLYElement is an element declaration with its properties in file order
type PLYElement struct {
	Name       string
	Count      int
	Properties []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string // Scalar type, or the item type for lists
	IsList   bool
	ListType string // For list properties, the type of the count
}

// Element returns the named element, if declared
func (h *PLYHeader) Element(name string) (PLYElement, bool) {
	for _, e := range h.Elements {
		if e.Name == name {
			return e, true
		}
	}
	return PLYElement{}, false
}

// LoadPLY loads a PLY file as an indexed triangle mesh
func LoadPLY(filename string) (*geometry.MeshData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PLY file")
	}
	defer file.Close()

	mesh, err := ReadPLY(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", filename)
	}
	logger.Infof("loaded %s: %d vertices, %d triangles", filename, len(mesh.Positions), mesh.TriangleCount())
	return mesh, nil
}

// ReadPLY decodes ascii, binary little-endian and binary big-endian PLY
// data. Polygonal faces are fan-triangulated; normals and texture
// coordinates are kept when the vertex element declares them.
func ReadPLY(r io.Reader) (*geometry.MeshData, error) {
	br := bufio.NewReaderSize(r, 1024*1024) // 1MB buffer

	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse PLY header")
	}

	var values plyValueReader
	switch header.Format {
	case FormatASCII:
		values = newASCIIValueReader(br)
	case FormatBinaryLittleEndian:
		values = &binaryValueReader{r: br, order: binary.LittleEndian}
	case FormatBinaryBigEndian:
		values = &binaryValueReader{r: br, order: binary.BigEndian}
	default:
		return nil, errors.Wrapf(ErrInvalidPLY, "unsupported format %q", header.Format)
	}

	mesh := &geometry.MeshData{}
	for _, element := range header.Elements {
		switch element.Name {
		case "vertex":
			err = readVertices(values, element, mesh)
		case "face":
			err = readFaces(values, element, mesh)
		default:
			err = skipElement(values, element)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := mesh.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidPLY, err.Error())
	}
	return mesh, nil
}

// parsePLYHeader reads header lines up to and including end_header. The
// reader is left positioned at the first byte of the body.
func parsePLYHeader(r *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}

	magic, err := r.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, errors.Wrap(ErrInvalidPLY, "missing ply magic")
	}

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, errors.Wrap(ErrInvalidPLY, "unexpected end of header")
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			if header.Format == "" {
				return nil, errors.Wrap(ErrInvalidPLY, "missing format line")
			}
			return header, nil
		case "format":
			if len(parts) < 3 {
				return nil, errors.Wrapf(ErrInvalidPLY, "invalid format line %q", strings.TrimSpace(line))
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
			// Ignore comments
		case "element":
			if len(parts) < 3 {
				return nil, errors.Wrapf(ErrInvalidPLY, "invalid element line %q", strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, errors.Wrapf(ErrInvalidPLY, "invalid element count: %s", parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, errors.Wrap(ErrInvalidPLY, "property before any element")
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			current := &header.Elements[len(header.Elements)-1]
			current.Properties = append(current.Properties, prop)
		default:
			return nil, errors.Wrapf(ErrInvalidPLY, "unknown header keyword %q", parts[0])
		}
	}
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, errors.Wrap(ErrInvalidPLY, "invalid property definition")
	}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, errors.Wrap(ErrInvalidPLY, "invalid list property definition")
		}
		prop := PLYProperty{IsList: true, ListType: parts[1], Type: parts[2], Name: parts[3]}
		if getTypeSize(prop.ListType) == 0 || getTypeSize(prop.Type) == 0 {
			return PLYProperty{}, errors.Wrapf(ErrInvalidPLY, "unsupported list types %s %s", prop.ListType, prop.Type)
		}
		return prop, nil
	}

	prop := PLYProperty{Type: parts[0], Name: parts[1]}
	if getTypeSize(prop.Type) == 0 {
		return PLYProperty{}, errors.Wrapf(ErrInvalidPLY, "unsupported data type: %s", prop.Type)
	}
	return prop, nil
}

// getTypeSize returns the size in bytes of a PLY data type, 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "float", "float32", "int", "int32", "uint", "uint32":
		return 4
	case "double", "float64":
		return 8
	case "short", "int16", "ushort", "uint16":
		return 2
	case "char", "int8", "uchar", "uint8":
		return 1
	default:
		return 0
	}
}

// vertexLayout maps the recognised vertex property names to their positions
type vertexLayout struct {
	position [3]int
	normal   [3]int
	uv       [2]int
}

func newVertexLayout(props []PLYProperty) (vertexLayout, error) {
	l := vertexLayout{
		position: [3]int{-1, -1, -1},
		normal:   [3]int{-1, -1, -1},
		uv:       [2]int{-1, -1},
	}
	for i, prop := range props {
		if prop.IsList {
			continue
		}
		switch prop.Name {
		case "x":
			l.position[0] = i
		case "y":
			l.position[1] = i
		case "z":
			l.position[2] = i
		case "nx":
			l.normal[0] = i
		case "ny":
			l.normal[1] = i
		case "nz":
			l.normal[2] = i
		case "u", "s", "texture_u":
			l.uv[0] = i
		case "v", "t", "texture_v":
			l.uv[1] = i
		}
	}
	if l.position[0] < 0 || l.position[1] < 0 || l.position[2] < 0 {
		return l, errors.Wrap(ErrInvalidPLY, "vertex element lacks x, y, z")
	}
	return l, nil
}

func (l vertexLayout) hasNormals() bool {
	return l.normal[0] >= 0 && l.normal[1] >= 0 && l.normal[2] >= 0
}

func (l vertexLayout) hasUVs() bool {
	return l.uv[0] >= 0 && l.uv[1] >= 0
}

// maxPrealloc caps the capacity reserved from a header element count
const maxPrealloc = 1 << 16

func readVertices(values plyValueReader, element PLYElement, mesh *geometry.MeshData) error {
	layout, err := newVertexLayout(element.Properties)
	if err != nil {
		return err
	}

	// Header counts are untrusted; a short body fails on read instead
	n := min(element.Count, maxPrealloc)
	mesh.Positions = make([]core.Vec3, 0, n)
	if layout.hasNormals() {
		mesh.Normals = make([]core.Vec3, 0, n)
	}
	if layout.hasUVs() {
		mesh.UVs = make([]core.Vec2, 0, n)
	}

	row := make([]float64, len(element.Properties))
	for i := 0; i < element.Count; i++ {
		for j, prop := range element.Properties {
			if prop.IsList {
				if err := skipList(values, prop); err != nil {
					return errors.Wrapf(err, "vertex %d", i)
				}
				continue
			}
			v, err := values.read(prop.Type)
			if err != nil {
				return errors.Wrapf(err, "vertex %d, property %s", i, prop.Name)
			}
			row[j] = v
		}

		mesh.Positions = append(mesh.Positions, core.NewVec3(row[layout.position[0]], row[layout.position[1]], row[layout.position[2]]))
		if layout.hasNormals() {
			mesh.Normals = append(mesh.Normals, core.NewVec3(row[layout.normal[0]], row[layout.normal[1]], row[layout.normal[2]]))
		}
		if layout.hasUVs() {
			mesh.UVs = append(mesh.UVs, core.NewVec2(row[layout.uv[0]], row[layout.uv[1]]))
		}
	}
	return nil
}

func readFaces(values plyValueReader, element PLYElement, mesh *geometry.MeshData) error {
	if element.Count > math.MaxInt/3 {
		return errors.Wrapf(ErrInvalidPLY, "face count %d too large", element.Count)
	}
	mesh.Indices = make([]int, 0, 3*min(element.Count, maxPrealloc)) // Assuming triangular faces

	polygon := make([]int, 0, 4)
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Properties {
			if !prop.IsList || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
				if err := skipProperty(values, prop); err != nil {
					return errors.Wrapf(err, "face %d, property %s", i, prop.Name)
				}
				continue
			}

			n, err := values.read(prop.ListType)
			if err != nil {
				return errors.Wrapf(err, "face %d vertex count", i)
			}
			if n < 0 || n > math.MaxInt32 {
				return errors.Wrapf(ErrInvalidPLY, "face %d has %v vertices", i, n)
			}

			polygon = polygon[:0]
			for k := 0; k < int(n); k++ {
				idx, err := values.read(prop.Type)
				if err != nil {
					return errors.Wrapf(err, "face %d index %d", i, k)
				}
				polygon = append(polygon, int(idx))
			}

			// Fan triangulation; faces with fewer than 3 vertices add nothing
			for k := 1; k+1 < len(polygon); k++ {
				mesh.Indices = append(mesh.Indices, polygon[0], polygon[k], polygon[k+1])
			}
		}
	}
	return nil
}

func skipElement(values plyValueReader, element PLYElement) error {
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Properties {
			if err := skipProperty(values, prop); err != nil {
				return errors.Wrapf(err, "element %s %d", element.Name, i)
			}
		}
	}
	return nil
}

func skipProperty(values plyValueReader, prop PLYProperty) error {
	if prop.IsList {
		return skipList(values, prop)
	}
	_, err := values.read(prop.Type)
	return err
}

func skipList(values plyValueReader, prop PLYProperty) error {
	n, err := values.read(prop.ListType)
	if err != nil {
		return err
	}
	for k := 0; k < int(n); k++ {
		if _, err := values.read(prop.Type); err != nil {
			return err
		}
	}
	return nil
}

// plyValueReader yields the next scalar of the body as a float64
type plyValueReader interface {
	read(dataType string) (float64, error)
}

// binaryValueReader decodes fixed-size scalars in the given byte order
type binaryValueReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryValueReader) read(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	if size == 0 {
		return 0, errors.Wrapf(ErrInvalidPLY, "unsupported data type: %s", dataType)
	}
	data := b.buf[:size]
	if _, err := io.ReadFull(b.r, data); err != nil {
		return 0, errors.Wrap(ErrInvalidPLY, "truncated body")
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(data[0])), nil
	case "uchar", "uint8":
		return float64(data[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(data))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(data)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(data))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(data)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(data))), nil
	default: // double, float64
		return math.Float64frombits(b.order.Uint64(data)), nil
	}
}

// asciiValueReader parses whitespace separated tokens
type asciiValueReader struct {
	scanner *bufio.Scanner
}

func newASCIIValueReader(r io.Reader) *asciiValueReader {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	return &asciiValueReader{scanner: scanner}
}

func (a *asciiValueReader) read(dataType string) (float64, error) {
	if !a.scanner.Scan() {
		return 0, errors.Wrap(ErrInvalidPLY, "truncated body")
	}
	token := a.scanner.Text()
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidPLY, "invalid %s value %q", dataType, token)
	}
	return v, nil
}
