// Package imop implements the Porter-Duff composition operators and the
// separable blend modes used to merge a rendered layer with its backdrop.
// The image/draw package only covers the Src and Over operators, while the
// software rasterizer resolves its frame with any operator and blend mode
// picked in the renderer configuration.
package imop

import (
	"fmt"
	"image"

	"github.com/esimov/hellod3d/utils"
)

// Porter-Duff composition operators.
const (
	Clear   = "clear"
	Copy    = "copy"
	Dst     = "dst"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

// Bitmap is the destination of a composition.
type Bitmap struct {
	Img *image.NRGBA
}

// NewBitmap allocates a transparent bitmap.
func NewBitmap(rect image.Rectangle) *Bitmap {
	return &Bitmap{
		Img: image.NewNRGBA(rect),
	}
}

// Composite holds the active composition operator.
type Composite struct {
	current string
	ops     []string
}

// InitOp returns a Composite using SrcOver.
func InitOp() *Composite {
	return &Composite{
		current: SrcOver,
		ops: []string{
			Clear, Copy, Dst,
			SrcOver, DstOver,
			SrcIn, DstIn,
			SrcOut, DstOut,
			SrcAtop, DstAtop,
			Xor,
		},
	}
}

// Set activates one of the supported operators.
func (op *Composite) Set(cop string) error {
	if !utils.Contains(op.ops, cop) {
		return fmt.Errorf("unsupported composite operation: %q", cop)
	}
	op.current = cop
	return nil
}

// Get returns the active operator.
func (op *Composite) Get() string {
	return op.current
}

// factors returns the Porter-Duff source and backdrop coefficients for the
// given source and backdrop alpha.
func (op *Composite) factors(as, ab float64) (fa, fb float64) {
	switch op.current {
	case Clear:
		return 0, 0
	case Copy:
		return 1, 0
	case Dst:
		return 0, 1
	case SrcOver:
		return 1, 1 - as
	case DstOver:
		return 1 - ab, 1
	case SrcIn:
		return ab, 0
	case DstIn:
		return 0, as
	case SrcOut:
		return 1 - ab, 0
	case DstOut:
		return 0, 1 - as
	case SrcAtop:
		return ab, 1 - as
	case DstAtop:
		return 1 - ab, as
	case Xor:
		return 1 - ab, 1 - as
	}
	return 1, 1 - as
}

// Draw composes src over the dst backdrop into bitmap, optionally mixing the
// colors with a blend mode first. A nil bitmap is allocated with the src bounds.
// All three images are addressed relative to their own bounds origin.
func (op *Composite) Draw(bitmap *Bitmap, src, dst *image.NRGBA, blend *Blend) *Bitmap {
	if bitmap == nil {
		bitmap = NewBitmap(src.Bounds())
	}
	dx := utils.Min(src.Bounds().Dx(), dst.Bounds().Dx())
	dy := utils.Min(src.Bounds().Dy(), dst.Bounds().Dy())
	dx = utils.Min(dx, bitmap.Img.Bounds().Dx())
	dy = utils.Min(dy, bitmap.Img.Bounds().Dy())

	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			si := src.PixOffset(src.Rect.Min.X+x, src.Rect.Min.Y+y)
			di := dst.PixOffset(dst.Rect.Min.X+x, dst.Rect.Min.Y+y)
			bi := bitmap.Img.PixOffset(bitmap.Img.Rect.Min.X+x, bitmap.Img.Rect.Min.Y+y)

			s := unpack(src.Pix[si : si+4])
			b := unpack(dst.Pix[di : di+4])

			if blend != nil && blend.Get() != "" {
				mixed := blend.apply(s, b)
				for c := 0; c < 3; c++ {
					s[c] = (1-b[3])*s[c] + b[3]*mixed[c]
				}
			}

			fa, fb := op.factors(s[3], b[3])
			ao := fa*s[3] + fb*b[3]

			out := bitmap.Img.Pix[bi : bi+4]
			if ao <= 0 {
				out[0], out[1], out[2], out[3] = 0, 0, 0, 0
				continue
			}
			for c := 0; c < 3; c++ {
				co := fa*s[3]*s[c] + fb*b[3]*b[c]
				out[c] = utils.Unit(co / ao)
			}
			out[3] = utils.Unit(ao)
		}
	}
	return bitmap
}

func unpack(p []uint8) [4]float64 {
	return [4]float64{
		float64(p[0]) / 255,
		float64(p[1]) / 255,
		float64(p[2]) / 255,
		float64(p[3]) / 255,
	}
}
