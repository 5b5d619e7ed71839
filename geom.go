package hellod3d

import "fmt"

// Position is the location of a window in screen coordinates.
type Position struct {
	X, Y int
}

// Size is the size of a window client area or render target in pixels.
type Size struct {
	Width, Height int
}

// Empty reports whether the size covers no pixels, as it happens for minimized windows.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// LoWord returns the low-order 16 bits of v.
func LoWord(v uint32) uint16 {
	return uint16(v & 0xffff)
}

// HiWord returns the high-order 16 bits of v.
func HiWord(v uint32) uint16 {
	return uint16((v >> 16) & 0xffff)
}

// SizeFromLParam decodes the client size packed into the lParam of a WM_SIZE message.
func SizeFromLParam(lParam uintptr) Size {
	v := uint32(lParam)
	return Size{
		Width:  int(LoWord(v)),
		Height: int(HiWord(v)),
	}
}

// Viewport mirrors the D3D11_VIEWPORT layout.
type Viewport struct {
	TopLeftX float32
	TopLeftY float32
	Width    float32
	Height   float32
	MinDepth float32
	MaxDepth float32
}

// NewViewport returns a viewport covering the whole render target
// with the full [0, 1] depth range.
func NewViewport(s Size) Viewport {
	return Viewport{
		Width:    float32(s.Width),
		Height:   float32(s.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}

// NDCToPixel maps normalized device coordinates into viewport pixel
// coordinates. The y axis is flipped: +1 is the top edge of the viewport.
func NDCToPixel(x, y float32, vp Viewport) (float32, float32) {
	px := (x+1)*0.5*vp.Width + vp.TopLeftX
	py := (1-y)*0.5*vp.Height + vp.TopLeftY
	return px, py
}

// NDCToDepth maps a normalized device depth into the viewport depth range.
func NDCToDepth(z float32, vp Viewport) float32 {
	return vp.MinDepth + z*(vp.MaxDepth-vp.MinDepth)
}
