package hellod3d

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var black = color.NRGBA{A: 255}

// fullscreen returns a clockwise triangle covering the whole viewport.
func fullscreen(z float32, c [4]float32) []Vertex {
	return []Vertex{
		{Position: [3]float32{-1, 3, z}, Color: c},
		{Position: [3]float32{3, -1, z}, Color: c},
		{Position: [3]float32{-1, -1, z}, Color: c},
	}
}

func TestRaster_DefaultTriangleShouldInterpolateColors(t *testing.T) {
	assert := assert.New(t)

	r := &Rasterizer{Samples: 1, ClearColor: [4]float32{0, 0, 0, 1}}
	img, err := r.Render(DefaultTriangle(), Size{Width: 100, Height: 100})
	require.NoError(t, err)
	assert.Equal(100, img.Bounds().Dx())

	// Centroid: the three vertex colors contribute equally.
	c := img.NRGBAAt(41, 58)
	assert.InDelta(85, int(c.R), 3)
	assert.InDelta(85, int(c.G), 3)
	assert.InDelta(85, int(c.B), 3)
	assert.Equal(uint8(255), c.A)

	// Close to the top vertex the color is mostly green.
	top := img.NRGBAAt(49, 28)
	assert.Greater(top.G, top.R)
	assert.Greater(top.G, top.B)

	// Close to the bottom left vertex the color is mostly red.
	left := img.NRGBAAt(28, 73)
	assert.Greater(left.R, left.G)
	assert.Greater(left.R, left.B)

	// The right half of the target stays cleared.
	assert.Equal(black, img.NRGBAAt(75, 50))
	assert.Equal(black, img.NRGBAAt(5, 5))
}

func TestRaster_BackFacesShouldBeCulled(t *testing.T) {
	assert := assert.New(t)

	tri := DefaultTriangle()
	tri[1], tri[2] = tri[2], tri[1]

	r := &Rasterizer{Samples: 1, ClearColor: [4]float32{0, 0, 0, 1}}
	img, err := r.Render(tri, Size{Width: 100, Height: 100})
	require.NoError(t, err)
	assert.Equal(black, img.NRGBAAt(41, 58))

	r.Cull = CullNone
	img, err = r.Render(tri, Size{Width: 100, Height: 100})
	require.NoError(t, err)
	assert.NotEqual(black, img.NRGBAAt(41, 58))

	r.Cull = CullFront
	img, err = r.Render(DefaultTriangle(), Size{Width: 100, Height: 100})
	require.NoError(t, err)
	assert.Equal(black, img.NRGBAAt(41, 58))
}

func TestRaster_DepthTestShouldKeepTheNearestTriangle(t *testing.T) {
	assert := assert.New(t)

	near := fullscreen(0.2, [4]float32{0, 0, 1, 1})
	far := fullscreen(0.8, [4]float32{1, 0, 0, 1})

	r := &Rasterizer{Samples: 1, ClearColor: [4]float32{0, 0, 0, 1}}
	for _, scene := range [][]Vertex{append(near, far...), append(far, near...)} {
		img, err := r.Render(scene, Size{Width: 16, Height: 16})
		require.NoError(t, err)
		assert.Equal(color.NRGBA{B: 255, A: 255}, img.NRGBAAt(8, 8))
		assert.Equal(color.NRGBA{B: 255, A: 255}, img.NRGBAAt(0, 15))
	}

	// Geometry beyond the far plane is clipped.
	img, err := r.Render(fullscreen(1.5, [4]float32{1, 1, 1, 1}), Size{Width: 4, Height: 4})
	require.NoError(t, err)
	assert.Equal(black, img.NRGBAAt(2, 2))
}

func TestRaster_ClearColorAndSupersampling(t *testing.T) {
	assert := assert.New(t)

	r := NewRasterizer(RendererConfig{Samples: 4, ClearColor: [4]float32{0, 0, 1, 1}})
	img, err := r.Render(DefaultTriangle(), Size{Width: 64, Height: 48})
	require.NoError(t, err)
	assert.Equal(64, img.Bounds().Dx())
	assert.Equal(48, img.Bounds().Dy())

	assert.Equal(color.NRGBA{B: 255, A: 255}, img.NRGBAAt(60, 4))
	c := img.NRGBAAt(26, 28)
	assert.Equal(uint8(255), c.A)
	assert.Greater(c.G, uint8(40))
}

func TestRaster_ShouldRejectInvalidInput(t *testing.T) {
	r := &Rasterizer{Samples: 1}

	_, err := r.Render(DefaultTriangle(), Size{})
	assert.ErrorIs(t, err, ErrEmptyTarget)

	_, err = r.Render(DefaultTriangle()[:2], Size{Width: 1, Height: 1})
	assert.ErrorIs(t, err, ErrInvalidVertexCount)
}

func TestRaster_SharedEdgeShouldBeCoveredOnce(t *testing.T) {
	white := [4]float32{1, 1, 1, 1}
	// A full target quad split along the top-left to bottom-right diagonal.
	upper := []Vertex{
		{Position: [3]float32{-1, 1, 0.5}, Color: white},
		{Position: [3]float32{1, 1, 0.5}, Color: white},
		{Position: [3]float32{1, -1, 0.5}, Color: white},
	}
	lower := []Vertex{
		{Position: [3]float32{-1, 1, 0.5}, Color: white},
		{Position: [3]float32{1, -1, 0.5}, Color: white},
		{Position: [3]float32{-1, -1, 0.5}, Color: white},
	}

	r := &Rasterizer{Samples: 1, ClearColor: [4]float32{0, 0, 0, 1}, Cull: CullNone}
	for _, size := range []Size{{Width: 8, Height: 8}, {Width: 7, Height: 5}} {
		a, err := r.Render(upper, size)
		require.NoError(t, err)
		b, err := r.Render(lower, size)
		require.NoError(t, err)

		for y := 0; y < size.Height; y++ {
			for x := 0; x < size.Width; x++ {
				covered := 0
				if a.NRGBAAt(x, y) != black {
					covered++
				}
				if b.NRGBAAt(x, y) != black {
					covered++
				}
				assert.Equalf(t, 1, covered, "pixel (%d, %d) of %v", x, y, size)
			}
		}
	}
	// Pixel centers on the diagonal belong to the triangle for which it is a left edge.
	a, err := r.Render(upper, Size{Width: 8, Height: 8})
	require.NoError(t, err)
	assert.NotEqual(t, black, a.NRGBAAt(3, 3))
}

func TestRaster_CompositeAndBlendShouldFollowTheConfig(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig().Renderer
	cfg.Samples = 1
	cfg.ClearColor = [4]float32{1, 0, 0, 1}

	img, err := NewRasterizer(cfg).Render(DefaultTriangle(), Size{Width: 100, Height: 100})
	require.NoError(t, err)
	c := img.NRGBAAt(41, 58)
	assert.InDelta(85, int(c.R), 3)
	assert.InDelta(85, int(c.G), 3)

	// The opaque backdrop hides the triangle layer.
	cfg.Composite = "dst_over"
	img, err = NewRasterizer(cfg).Render(DefaultTriangle(), Size{Width: 100, Height: 100})
	require.NoError(t, err)
	assert.Equal(color.NRGBA{R: 255, A: 255}, img.NRGBAAt(41, 58))

	// Multiplying with a red backdrop keeps only the red channel.
	cfg.Composite = "src_over"
	cfg.Blend = "multiply"
	img, err = NewRasterizer(cfg).Render(DefaultTriangle(), Size{Width: 100, Height: 100})
	require.NoError(t, err)
	c = img.NRGBAAt(41, 58)
	assert.InDelta(85, int(c.R), 3)
	assert.Equal(uint8(0), c.G)
	assert.Equal(uint8(0), c.B)
	assert.Equal(uint8(255), c.A)

	cfg.Blend = "hue"
	_, err = NewRasterizer(cfg).Render(DefaultTriangle(), Size{Width: 4, Height: 4})
	assert.Error(err)
}
