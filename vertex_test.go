package hellod3d

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVertex_LayoutShouldMatchTheGPUStride(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint32(28), VertexStride)
	assert.Equal(uint32(12), ColorOffset)

	layout := VertexLayout(Semantic{Name: "POSITION"}, Semantic{Name: "COLOR"})
	assert.Len(layout, 2)
	assert.Equal(InputElement{Semantic: "POSITION", Format: FormatR32G32B32Float}, layout[0])
	assert.Equal(InputElement{Semantic: "COLOR", Format: FormatR32G32B32A32Float, Offset: 12}, layout[1])
	assert.Equal("R32G32B32A32_FLOAT", layout[1].Format.String())
}

func TestVertex_EncodeShouldPackLittleEndianFloats(t *testing.T) {
	assert := assert.New(t)

	vertices := DefaultTriangle()
	buf := EncodeVertices(vertices)
	assert.Len(buf, len(vertices)*int(VertexStride))

	at := func(vertex, field int) float32 {
		off := vertex*int(VertexStride) + field*4
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}
	// First vertex: top, green.
	assert.Equal(float32(0.5), at(0, 1))
	assert.Equal(float32(0.5), at(0, 2))
	assert.Equal(float32(1), at(0, 4))
	// Third vertex: bottom left, red.
	assert.Equal(float32(-0.5), at(2, 0))
	assert.Equal(float32(1), at(2, 3))
	assert.Equal(float32(0), at(2, 4))
}

func TestVertex_ValidateShouldRejectPartialTriangles(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(ValidateVertices(DefaultTriangle()))
	assert.ErrorIs(ValidateVertices(nil), ErrInvalidVertexCount)
	assert.ErrorIs(ValidateVertices(DefaultTriangle()[:2]), ErrInvalidVertexCount)
}

func TestVertex_ValidateShouldRejectNonFinitePositions(t *testing.T) {
	assert := assert.New(t)

	nan := float32(math.NaN())
	inf := float32(math.Inf(-1))

	vertices := DefaultTriangle()
	vertices[1].Position[0] = nan
	assert.ErrorIs(ValidateVertices(vertices), ErrNonFiniteVertex)

	vertices = DefaultTriangle()
	vertices[2].Position[2] = inf
	assert.ErrorIs(ValidateVertices(vertices), ErrNonFiniteVertex)

	rast := &Rasterizer{Samples: 1, Cull: CullNone}
	_, err := rast.Render(vertices, Size{Width: 8, Height: 8})
	assert.ErrorIs(err, ErrNonFiniteVertex)
}
