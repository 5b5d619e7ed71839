package imop

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlend_Basic(t *testing.T) {
	assert := assert.New(t)

	op := NewBlend()
	assert.Empty(op.Get())
	assert.Error(op.Set("blend_mode_not_supported"))
	assert.Empty(op.Get())
	assert.NoError(op.Set(Darken))
	assert.Equal(Darken, op.Get())
	assert.NoError(op.Set(Lighten))
	assert.Equal(Lighten, op.Get())
}

func TestBlend_Modes(t *testing.T) {
	front := color.NRGBA{R: 255, G: 128, B: 0, A: 255}
	back := color.NRGBA{R: 0, G: 128, B: 255, A: 255}

	cases := []struct {
		mode string
		want color.NRGBA
	}{
		{Normal, front},
		{Darken, color.NRGBA{R: 0, G: 128, B: 0, A: 255}},
		{Lighten, color.NRGBA{R: 255, G: 128, B: 255, A: 255}},
		{Multiply, color.NRGBA{R: 0, G: 64, B: 0, A: 255}},
		{Screen, color.NRGBA{R: 255, G: 192, B: 255, A: 255}},
		{Difference, color.NRGBA{R: 255, G: 0, B: 255, A: 255}},
	}

	rect := image.Rect(0, 0, 1, 1)
	source := image.NewNRGBA(rect)
	backdrop := image.NewNRGBA(rect)
	source.SetNRGBA(0, 0, front)
	backdrop.SetNRGBA(0, 0, back)

	op := InitOp()
	for _, tc := range cases {
		t.Run(tc.mode, func(t *testing.T) {
			assert := assert.New(t)

			blend := NewBlend()
			assert.NoError(blend.Set(tc.mode))

			got := op.Draw(nil, source, backdrop, blend).Img.NRGBAAt(0, 0)
			assert.InDelta(int(tc.want.R), int(got.R), 1)
			assert.InDelta(int(tc.want.G), int(got.G), 1)
			assert.InDelta(int(tc.want.B), int(got.B), 1)
			assert.Equal(tc.want.A, got.A)
		})
	}
}
