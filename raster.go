package hellod3d

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/esimov/hellod3d/imop"
	"github.com/esimov/hellod3d/utils"
	xdraw "golang.org/x/image/draw"
)

// ErrEmptyTarget is returned when rendering into a zero sized target.
var ErrEmptyTarget = errors.New("render target has no pixels")

// CullMode selects which triangles are discarded before rasterization.
type CullMode int

// Culling modes, matching D3D11_CULL_MODE.
const (
	CullNone CullMode = iota + 1
	CullFront
	CullBack
)

// Rasterizer draws triangle lists on the CPU following the Direct3D 11
// rasterization rules: clockwise front faces, top-left fill convention and a
// LESS depth test against a buffer cleared to 1. It is used by the preview
// window and for offscreen snapshots.
type Rasterizer struct {
	// Samples is the supersampling factor applied on each axis.
	Samples int
	// ClearColor is the RGBA color the target is cleared to.
	ClearColor [4]float32
	// Cull defaults to CullBack when zero.
	Cull CullMode
	// Composite is the Porter-Duff operator merging the triangle layer with
	// the cleared backdrop. Empty means imop.SrcOver.
	Composite string
	// Blend is the separable blend mode applied before compositing.
	// Empty disables blending.
	Blend string
}

// NewRasterizer returns a rasterizer configured from the renderer settings.
func NewRasterizer(cfg RendererConfig) *Rasterizer {
	return &Rasterizer{
		Samples:    cfg.Samples,
		ClearColor: cfg.ClearColor,
		Cull:       CullBack,
		Composite:  cfg.Composite,
		Blend:      cfg.Blend,
	}
}

type screenVertex struct {
	x, y, z float32
	color   [4]float32
}

// Render rasterizes the triangle list into an image of the given size.
func (r *Rasterizer) Render(vertices []Vertex, size Size) (*image.NRGBA, error) {
	if err := ValidateVertices(vertices); err != nil {
		return nil, err
	}
	if size.Empty() {
		return nil, fmt.Errorf("%w: %v", ErrEmptyTarget, size)
	}
	op, blend, err := r.operators()
	if err != nil {
		return nil, err
	}
	samples := utils.Clamp(r.Samples, 1, 16)
	target := Size{Width: size.Width * samples, Height: size.Height * samples}

	layer := image.NewNRGBA(image.Rect(0, 0, target.Width, target.Height))
	depth := make([]float32, target.Width*target.Height)
	for i := range depth {
		depth[i] = 1
	}

	vp := NewViewport(target)
	for i := 0; i < len(vertices); i += 3 {
		var tri [3]screenVertex
		for j := range tri {
			v := vertices[i+j]
			x, y := NDCToPixel(v.Position[0], v.Position[1], vp)
			tri[j] = screenVertex{x: x, y: y, z: NDCToDepth(v.Position[2], vp), color: v.Color}
		}
		r.fill(layer, depth, target, tri)
	}

	frame := layer
	if samples > 1 {
		frame = image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))
		xdraw.BiLinear.Scale(frame, frame.Bounds(), layer, layer.Bounds(), xdraw.Src, nil)
	}
	return r.resolve(frame, op, blend), nil
}

// operators returns the composition operator and the blend mode used to
// resolve the triangle layer. The blend mode is nil when none is set.
func (r *Rasterizer) operators() (*imop.Composite, *imop.Blend, error) {
	op := imop.InitOp()
	if r.Composite != "" {
		if err := op.Set(r.Composite); err != nil {
			return nil, nil, err
		}
	}
	if r.Blend == "" {
		return op, nil, nil
	}
	blend := imop.NewBlend()
	if err := blend.Set(r.Blend); err != nil {
		return nil, nil, err
	}
	return op, blend, nil
}

// edge returns twice the signed area of the triangle (a, b, p). It is
// positive when p lies on the inner side of a clockwise edge a→b.
func edge(a, b screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// topLeft reports whether the clockwise edge a→b is a top or a left edge.
func topLeft(a, b screenVertex) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return (dy == 0 && dx > 0) || dy < 0
}

func (r *Rasterizer) fill(layer *image.NRGBA, depth []float32, target Size, tri [3]screenVertex) {
	area := edge(tri[0], tri[1], tri[2].x, tri[2].y)
	if area == 0 {
		return
	}
	switch r.Cull {
	case CullNone:
	case CullFront:
		if area > 0 {
			return
		}
	default:
		if area < 0 {
			return
		}
	}
	if area < 0 {
		tri[1], tri[2] = tri[2], tri[1]
		area = -area
	}

	minX := utils.Clamp(int(utils.Min(tri[0].x, utils.Min(tri[1].x, tri[2].x))), 0, target.Width-1)
	maxX := utils.Clamp(int(utils.Max(tri[0].x, utils.Max(tri[1].x, tri[2].x))), 0, target.Width-1)
	minY := utils.Clamp(int(utils.Min(tri[0].y, utils.Min(tri[1].y, tri[2].y))), 0, target.Height-1)
	maxY := utils.Clamp(int(utils.Max(tri[0].y, utils.Max(tri[1].y, tri[2].y))), 0, target.Height-1)

	edges := [3][2]int{{1, 2}, {2, 0}, {0, 1}}
	var isTopLeft [3]bool
	for i, e := range edges {
		isTopLeft[i] = topLeft(tri[e[0]], tri[e[1]])
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float32(x)+0.5, float32(y)+0.5

			var w [3]float32
			inside := true
			for i, e := range edges {
				w[i] = edge(tri[e[0]], tri[e[1]], px, py)
				if w[i] < 0 || (w[i] == 0 && !isTopLeft[i]) {
					inside = false
					break
				}
			}
			if !inside {
				continue
			}

			l0, l1, l2 := w[0]/area, w[1]/area, w[2]/area
			z := l0*tri[0].z + l1*tri[1].z + l2*tri[2].z
			if z < 0 || z > 1 {
				continue
			}
			di := y*target.Width + x
			if z >= depth[di] {
				continue
			}
			depth[di] = z

			var c [3]float32
			for k := range c {
				c[k] = l0*tri[0].color[k] + l1*tri[1].color[k] + l2*tri[2].color[k]
			}
			layer.SetNRGBA(x, y, color.NRGBA{
				R: utils.Unit(c[0]),
				G: utils.Unit(c[1]),
				B: utils.Unit(c[2]),
				A: 0xff,
			})
		}
	}
}

// resolve composes the rasterized layer with the clear color. The layer
// alpha holds the pixel coverage, so partially covered edge pixels mix
// with the backdrop.
func (r *Rasterizer) resolve(layer *image.NRGBA, op *imop.Composite, blend *imop.Blend) *image.NRGBA {
	backdrop := image.NewNRGBA(layer.Bounds())
	clear := color.NRGBA{
		R: utils.Unit(r.ClearColor[0]),
		G: utils.Unit(r.ClearColor[1]),
		B: utils.Unit(r.ClearColor[2]),
		A: utils.Unit(r.ClearColor[3]),
	}
	draw.Draw(backdrop, backdrop.Bounds(), &image.Uniform{clear}, image.Point{}, draw.Src)

	return op.Draw(imop.NewBitmap(layer.Bounds()), layer, backdrop, blend).Img
}
