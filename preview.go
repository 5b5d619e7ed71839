package hellod3d

import (
	"image"

	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
)

// Preview shows the software rendered scene in a Gio window. The frame is
// rasterized again each time the window size changes.
type Preview struct {
	title    string
	size     Size
	vertices []Vertex
	rast     *Rasterizer

	frame     *image.NRGBA
	frameSize Size
}

// NewPreview returns a preview of the configured scene.
func NewPreview(cfg *Config) *Preview {
	return &Preview{
		title:    cfg.Window.Title,
		size:     cfg.Window.Size(),
		vertices: cfg.Scene(),
		rast:     NewRasterizer(cfg.Renderer),
	}
}

// Frame returns the scene rendered at the given size. The last frame is
// reused while the size does not change.
func (p *Preview) Frame(size Size) (*image.NRGBA, error) {
	if p.frame != nil && size == p.frameSize {
		return p.frame, nil
	}
	img, err := p.rast.Render(p.vertices, size)
	if err != nil {
		return nil, err
	}
	p.frame, p.frameSize = img, size
	Logger().Debug("preview frame rasterized", "size", size)
	return img, nil
}

// Run opens the preview window and blocks until it is closed with the
// window controls or the Escape key.
func (p *Preview) Run() error {
	w := new(app.Window)
	w.Option(
		app.Title(p.title),
		app.Size(unit.Dp(p.size.Width), unit.Dp(p.size.Height)),
	)

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			for {
				ev, ok := gtx.Event(key.Filter{Name: key.NameEscape})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					w.Perform(system.ActionClose)
				}
			}

			size := Size{Width: e.Size.X, Height: e.Size.Y}
			if !size.Empty() {
				img, err := p.Frame(size)
				if err != nil {
					return err
				}
				paint.NewImageOp(img).Add(gtx.Ops)
				paint.PaintOp{}.Add(gtx.Ops)
			}
			e.Frame(gtx.Ops)
		}
	}
}
