package hellod3d

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unsafe"
)

var (
	// ErrInvalidVertexCount is returned when a vertex list cannot be drawn as a triangle list.
	ErrInvalidVertexCount = errors.New("vertex count must be a non-zero multiple of three")
	// ErrNonFiniteVertex is returned for a position holding NaN or an infinity.
	ErrNonFiniteVertex = errors.New("vertex position must be finite")
)

// Vertex is a single vertex as it is laid out in the GPU vertex buffer.
type Vertex struct {
	Position [3]float32 `toml:"position"`
	Color    [4]float32 `toml:"color"`
}

const (
	// VertexStride is the size in bytes of an encoded Vertex.
	VertexStride = uint32(unsafe.Sizeof(Vertex{}))
	// ColorOffset is the byte offset of the color attribute inside a vertex.
	ColorOffset = uint32(unsafe.Offsetof(Vertex{}.Color))
)

// DefaultTriangle returns the green, blue and red vertices of the hello triangle.
func DefaultTriangle() []Vertex {
	return []Vertex{
		{Position: [3]float32{0.0, 0.5, 0.5}, Color: [4]float32{0, 1, 0, 1}},
		{Position: [3]float32{0.0, -0.5, 0.5}, Color: [4]float32{0, 0, 1, 1}},
		{Position: [3]float32{-0.5, -0.5, 0.5}, Color: [4]float32{1, 0, 0, 1}},
	}
}

// ValidateVertices checks that the vertices form a triangle list with
// finite positions.
func ValidateVertices(vertices []Vertex) error {
	if len(vertices) == 0 || len(vertices)%3 != 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidVertexCount, len(vertices))
	}
	for i, v := range vertices {
		for _, f := range v.Position {
			if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
				return fmt.Errorf("%w: vertex %d has position %v", ErrNonFiniteVertex, i, v.Position)
			}
		}
	}
	return nil
}

// EncodeVertices packs the vertices into the little-endian byte layout
// expected by the input assembler.
func EncodeVertices(vertices []Vertex) []byte {
	buf := make([]byte, 0, len(vertices)*int(VertexStride))
	for _, v := range vertices {
		for _, f := range v.Position {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
		for _, f := range v.Color {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	return buf
}

// Format is a DXGI_FORMAT value.
type Format uint32

// The DXGI formats used by the pipeline.
const (
	FormatR32G32B32A32Float Format = 2
	FormatR32G32B32Float    Format = 6
	FormatR8G8B8A8Unorm     Format = 28
	FormatD24UnormS8Uint    Format = 45
)

func (f Format) String() string {
	switch f {
	case FormatR32G32B32A32Float:
		return "R32G32B32A32_FLOAT"
	case FormatR32G32B32Float:
		return "R32G32B32_FLOAT"
	case FormatR8G8B8A8Unorm:
		return "R8G8B8A8_UNORM"
	case FormatD24UnormS8Uint:
		return "D24_UNORM_S8_UINT"
	}
	return fmt.Sprintf("Format(%d)", uint32(f))
}

// InputElement describes one vertex attribute of the input layout.
type InputElement struct {
	Semantic string
	Index    uint32
	Format   Format
	Offset   uint32
}

// Semantic names a vertex attribute the way a shader declares it.
type Semantic struct {
	Name  string
	Index uint32
}

// VertexLayout returns the input layout binding the vertex position and
// color attributes to the given shader semantics.
func VertexLayout(position, color Semantic) []InputElement {
	return []InputElement{
		{Semantic: position.Name, Index: position.Index, Format: FormatR32G32B32Float, Offset: 0},
		{Semantic: color.Name, Index: color.Index, Format: FormatR32G32B32A32Float, Offset: ColorOffset},
	}
}
