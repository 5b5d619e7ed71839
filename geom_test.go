package hellod3d

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeom_WordsShouldBeSplitCorrectly(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint16(0x5678), LoWord(0x12345678))
	assert.Equal(uint16(0x1234), HiWord(0x12345678))
	assert.Equal(uint16(0), HiWord(0xffff))
}

func TestGeom_SizeFromLParamShouldUseBothWords(t *testing.T) {
	assert := assert.New(t)

	size := SizeFromLParam(uintptr(600<<16 | 800))
	assert.Equal(Size{Width: 800, Height: 600}, size)
	assert.False(size.Empty())
	assert.Equal("800x600", size.String())

	assert.True(SizeFromLParam(0).Empty())
	assert.True(Size{Width: 10}.Empty())
}

func TestGeom_ViewportShouldCoverTheRenderTarget(t *testing.T) {
	assert := assert.New(t)

	vp := NewViewport(Size{Width: 640, Height: 480})
	assert.Equal(Viewport{Width: 640, Height: 480, MinDepth: 0, MaxDepth: 1}, vp)

	x, y := NDCToPixel(-1, 1, vp)
	assert.Equal(float32(0), x)
	assert.Equal(float32(0), y)

	x, y = NDCToPixel(1, -1, vp)
	assert.Equal(float32(640), x)
	assert.Equal(float32(480), y)

	x, y = NDCToPixel(0, 0, vp)
	assert.Equal(float32(320), x)
	assert.Equal(float32(240), y)

	assert.Equal(float32(0.5), NDCToDepth(0.5, vp))
}
