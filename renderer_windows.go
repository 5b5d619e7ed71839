package hellod3d

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/esimov/hellod3d/internal/d3d11"
	"golang.org/x/sys/windows"
)

// RendererOptions configures the Direct3D renderer.
type RendererOptions struct {
	Driver       string
	Debug        bool
	SyncInterval int
	ClearColor   [4]float32
	// Cache stores compiled shader objects. A nil cache compiles on every start.
	Cache *Cache
	// Compiler defaults to the system HLSL compiler.
	Compiler Compiler
}

// Renderer draws a vertex list into the swap chain of a window.
// It is not safe for concurrent use.
type Renderer struct {
	opts RendererOptions

	dev     *d3d11.Device
	ctx     *d3d11.DeviceContext
	swchain *d3d11.IDXGISwapChain
	level   uint32

	target *d3d11.RenderTargetView
	depth  *d3d11.DepthStencilView
	size   Size

	vs          *d3d11.VertexShader
	ps          *d3d11.PixelShader
	layout      *d3d11.InputLayout
	vbuf        *d3d11.Buffer
	vertexCount uint32
}

var featureLevels = []uint32{d3d11.FEATURE_LEVEL_11_1, d3d11.FEATURE_LEVEL_11_0}

func driverType(name string) (uint32, error) {
	switch name {
	case DriverHardware, "":
		return d3d11.DRIVER_TYPE_HARDWARE, nil
	case DriverWarp:
		return d3d11.DRIVER_TYPE_WARP, nil
	case DriverReference:
		return d3d11.DRIVER_TYPE_REFERENCE, nil
	}
	return 0, fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, name)
}

func isErrorCode(err error, code uint32) bool {
	var ecode d3d11.ErrorCode
	return errors.As(err, &ecode) && ecode.Code == code
}

func createDevice(driver uint32, debug bool) (*d3d11.Device, *d3d11.DeviceContext, uint32, error) {
	var flags uint32
	if debug {
		flags |= d3d11.CREATE_DEVICE_DEBUG
	}
	dev, ctx, lvl, err := d3d11.CreateDevice(driver, flags, featureLevels)
	if err != nil && isErrorCode(err, d3d11.E_INVALIDARG) {
		// Runtimes without 11.1 reject the whole list.
		dev, ctx, lvl, err = d3d11.CreateDevice(driver, flags, featureLevels[1:])
	}
	if err != nil && debug && isErrorCode(err, d3d11.DXGI_ERROR_SDK_COMPONENT_MISSING) {
		Logger().Warn("debug layer not installed, creating device without it")
		return createDevice(driver, false)
	}
	return dev, ctx, lvl, err
}

// NewRenderer creates a device and a swap chain bound to w.
func NewRenderer(w *Window, opts RendererOptions) (*Renderer, error) {
	driver, err := driverType(opts.Driver)
	if err != nil {
		return nil, err
	}
	if opts.Compiler == nil {
		opts.Compiler = D3DCompiler(opts.Debug)
	}
	dev, ctx, lvl, err := createDevice(driver, opts.Debug)
	if err != nil {
		return nil, fmt.Errorf("could not create device: %w", err)
	}
	r := &Renderer{
		opts:  opts,
		dev:   dev,
		ctx:   ctx,
		level: lvl,
		size:  w.Size(),
	}
	Logger().Info("device created", "driver", opts.Driver, "feature_level", fmt.Sprintf("%#x", lvl))

	swchain, legacy, err := d3d11.CreateSwapChain(dev, w.Handle(), d3d11.SwapChainConfig{
		Width:       uint32(max(r.size.Width, 0)),
		Height:      uint32(max(r.size.Height, 0)),
		Format:      d3d11.DXGI_FORMAT_R8G8B8A8_UNORM,
		BufferCount: 1,
		RefreshRate: d3d11.DXGI_RATIONAL{Numerator: 60, Denominator: 1},
	})
	if err != nil {
		r.Release()
		return nil, err
	}
	if legacy {
		Logger().Warn("DXGI 1.2 unavailable, using a legacy swap chain")
	}
	r.swchain = swchain

	if err := r.createViews(); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

// FeatureLevel returns the feature level of the device.
func (r *Renderer) FeatureLevel() uint32 {
	return r.level
}

// Size returns the size of the render target.
func (r *Renderer) Size() Size {
	return r.size
}

func (r *Renderer) createViews() error {
	if r.size.Empty() {
		return nil
	}
	target, err := d3d11.CreateBackBufferView(r.dev, r.swchain)
	if err != nil {
		return fmt.Errorf("could not create render target view: %w", err)
	}
	depth, err := d3d11.CreateDepthView(r.dev, r.size.Width, r.size.Height)
	if err != nil {
		d3d11.IUnknownRelease(unsafe.Pointer(target), target.Vtbl.Release)
		return fmt.Errorf("could not create depth stencil view: %w", err)
	}
	r.target, r.depth = target, depth
	r.ctx.OMSetRenderTargets(r.target, r.depth)

	vp := d3d11.VIEWPORT(NewViewport(r.size))
	r.ctx.RSSetViewports(&vp)
	Logger().Debug("views created", "size", r.size)
	return nil
}

func (r *Renderer) releaseViews() {
	r.ctx.OMSetRenderTargets(nil, nil)
	if r.target != nil {
		d3d11.IUnknownRelease(unsafe.Pointer(r.target), r.target.Vtbl.Release)
		r.target = nil
	}
	if r.depth != nil {
		d3d11.IUnknownRelease(unsafe.Pointer(r.depth), r.depth.Vtbl.Release)
		r.depth = nil
	}
}

// Render compiles the program and uploads the vertices, replacing the
// previously bound pipeline state.
func (r *Renderer) Render(p *Program, vertices []Vertex) error {
	if err := ValidateVertices(vertices); err != nil {
		return err
	}
	bc, err := p.Compile(r.opts.Cache, r.opts.Compiler)
	if err != nil {
		return err
	}
	vs, err := r.dev.CreateVertexShader(bc.Vertex)
	if err != nil {
		return fmt.Errorf("could not create vertex shader: %w", err)
	}
	ps, err := r.dev.CreatePixelShader(bc.Pixel)
	if err != nil {
		d3d11.IUnknownRelease(unsafe.Pointer(vs), vs.Vtbl.Release)
		return fmt.Errorf("could not create pixel shader: %w", err)
	}
	layout, err := r.createInputLayout(bc)
	if err != nil {
		d3d11.IUnknownRelease(unsafe.Pointer(vs), vs.Vtbl.Release)
		d3d11.IUnknownRelease(unsafe.Pointer(ps), ps.Vtbl.Release)
		return err
	}
	data := EncodeVertices(vertices)
	vbuf, err := r.dev.CreateBuffer(&d3d11.BUFFER_DESC{
		ByteWidth: uint32(len(data)),
		Usage:     d3d11.USAGE_IMMUTABLE,
		BindFlags: d3d11.BIND_VERTEX_BUFFER,
	}, data)
	if err != nil {
		d3d11.IUnknownRelease(unsafe.Pointer(vs), vs.Vtbl.Release)
		d3d11.IUnknownRelease(unsafe.Pointer(ps), ps.Vtbl.Release)
		d3d11.IUnknownRelease(unsafe.Pointer(layout), layout.Vtbl.Release)
		return fmt.Errorf("could not create vertex buffer: %w", err)
	}

	r.releasePipeline()
	r.vs, r.ps, r.layout, r.vbuf = vs, ps, layout, vbuf
	r.vertexCount = uint32(len(vertices))

	r.ctx.IASetVertexBuffers(r.vbuf, VertexStride, 0)
	r.ctx.IASetPrimitiveTopology(d3d11.PRIMITIVE_TOPOLOGY_TRIANGLELIST)
	r.ctx.IASetInputLayout(r.layout)
	r.ctx.VSSetShader(r.vs)
	r.ctx.PSSetShader(r.ps)
	Logger().Debug("pipeline bound", "vertices", r.vertexCount, "bytes", len(data))
	return nil
}

func (r *Renderer) createInputLayout(bc *Bytecode) (*d3d11.InputLayout, error) {
	descs := make([]d3d11.INPUT_ELEMENT_DESC, len(bc.Layout))
	for i, el := range bc.Layout {
		name, err := windows.BytePtrFromString(el.Semantic)
		if err != nil {
			return nil, err
		}
		descs[i] = d3d11.INPUT_ELEMENT_DESC{
			SemanticName:      name,
			SemanticIndex:     el.Index,
			Format:            uint32(el.Format),
			AlignedByteOffset: el.Offset,
			InputSlotClass:    d3d11.INPUT_PER_VERTEX_DATA,
		}
	}
	layout, err := r.dev.CreateInputLayout(descs, bc.Vertex)
	if err != nil {
		return nil, fmt.Errorf("could not create input layout: %w", err)
	}
	return layout, nil
}

func (r *Renderer) releasePipeline() {
	if r.vbuf != nil {
		d3d11.IUnknownRelease(unsafe.Pointer(r.vbuf), r.vbuf.Vtbl.Release)
		r.vbuf = nil
	}
	if r.layout != nil {
		d3d11.IUnknownRelease(unsafe.Pointer(r.layout), r.layout.Vtbl.Release)
		r.layout = nil
	}
	if r.vs != nil {
		d3d11.IUnknownRelease(unsafe.Pointer(r.vs), r.vs.Vtbl.Release)
		r.vs = nil
	}
	if r.ps != nil {
		d3d11.IUnknownRelease(unsafe.Pointer(r.ps), r.ps.Vtbl.Release)
		r.ps = nil
	}
	r.vertexCount = 0
}

// DrawScene clears the render target, draws the uploaded vertices and
// presents the frame. Nothing is drawn while the target is empty.
func (r *Renderer) DrawScene() error {
	if r.target == nil {
		return nil
	}
	r.ctx.ClearRenderTargetView(r.target, &r.opts.ClearColor)
	r.ctx.ClearDepthStencilView(r.depth, d3d11.CLEAR_DEPTH|d3d11.CLEAR_STENCIL, 1, 0)
	if r.vertexCount > 0 {
		r.ctx.Draw(r.vertexCount, 0)
	}
	status, err := r.swchain.Present(r.opts.SyncInterval, 0)
	if err != nil {
		return fmt.Errorf("could not present frame: %w", err)
	}
	if status == d3d11.DXGI_STATUS_OCCLUDED {
		Logger().Debug("window occluded")
	}
	return nil
}

// Resize resizes the swap chain buffers and recreates the views. An empty
// size releases the views until a non-empty one arrives.
func (r *Renderer) Resize(size Size) error {
	if size == r.size && r.target != nil {
		return nil
	}
	r.releaseViews()
	r.size = size
	if size.Empty() {
		Logger().Debug("render target minimized")
		return nil
	}
	if err := r.swchain.ResizeBuffers(0, uint32(size.Width), uint32(size.Height), d3d11.DXGI_FORMAT_R8G8B8A8_UNORM, 0); err != nil {
		return fmt.Errorf("could not resize swap chain: %w", err)
	}
	return r.createViews()
}

// Release releases every Direct3D object owned by the renderer.
func (r *Renderer) Release() {
	if r.ctx != nil {
		r.releaseViews()
		r.releasePipeline()
	}
	if r.swchain != nil {
		d3d11.IUnknownRelease(unsafe.Pointer(r.swchain), r.swchain.Vtbl.Release)
		r.swchain = nil
	}
	if r.ctx != nil {
		d3d11.IUnknownRelease(unsafe.Pointer(r.ctx), r.ctx.Vtbl.Release)
		r.ctx = nil
	}
	if r.dev != nil {
		d3d11.IUnknownRelease(unsafe.Pointer(r.dev), r.dev.Vtbl.Release)
		r.dev = nil
	}
}

// D3DCompiler returns a Compiler backed by the system HLSL compiler.
// Debug builds keep debug information and skip optimizations.
func D3DCompiler(debug bool) Compiler {
	flags := uint32(d3d11.D3DCOMPILE_ENABLE_STRICTNESS)
	if debug {
		flags |= d3d11.D3DCOMPILE_DEBUG | d3d11.D3DCOMPILE_SKIP_OPTIMIZATION
	} else {
		flags |= d3d11.D3DCOMPILE_OPTIMIZATION_LEVEL3
	}
	return d3dCompiler{flags: flags}
}

type d3dCompiler struct {
	flags uint32
}

// Variant returns the compile flags, so debug and release objects are cached apart.
func (c d3dCompiler) Variant() string {
	return fmt.Sprintf("d3dcompiler_47/%#x", c.flags)
}

func (c d3dCompiler) Compile(src Source) ([]byte, error) {
	bytecode, warnings, err := d3d11.D3DCompile(src.Code, src.Name, src.Entry, src.Profile, c.flags)
	if err != nil {
		var cerr d3d11.CompileError
		if errors.As(err, &cerr) {
			return nil, &CompileError{Name: src.Name, Entry: src.Entry, Log: cerr.Log, Err: cerr.ErrorCode}
		}
		return nil, err
	}
	if warnings != "" {
		Logger().Warn("shader compiled with warnings", "shader", src.Name, "entry", src.Entry, "log", warnings)
	}
	Logger().Debug("shader compiled", "shader", src.Name, "entry", src.Entry, "bytes", len(bytecode))
	return bytecode, nil
}
