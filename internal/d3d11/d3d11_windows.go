// SPDX-License-Identifier: Unlicense OR MIT

package d3d11

import (
	"fmt"
	"math"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

type TEXTURE2D_DESC struct {
	Width          uint32
	Height         uint32
	MipLevels      uint32
	ArraySize      uint32
	Format         uint32
	SampleDesc     DXGI_SAMPLE_DESC
	Usage          uint32
	BindFlags      uint32
	CPUAccessFlags uint32
	MiscFlags      uint32
}

type BUFFER_DESC struct {
	ByteWidth           uint32
	Usage               uint32
	BindFlags           uint32
	CPUAccessFlags      uint32
	MiscFlags           uint32
	StructureByteStride uint32
}

type SUBRESOURCE_DATA struct {
	PSysMem          *byte
	SysMemPitch      uint32
	SysMemSlicePitch uint32
}

type INPUT_ELEMENT_DESC struct {
	SemanticName         *byte
	SemanticIndex        uint32
	Format               uint32
	InputSlot            uint32
	AlignedByteOffset    uint32
	InputSlotClass       uint32
	InstanceDataStepRate uint32
}

type DEPTH_STENCIL_VIEW_DESC_TEX2D struct {
	Format        uint32
	ViewDimension uint32
	Flags         uint32
	Texture2D     TEX2D_DSV
}

type TEX2D_DSV struct {
	MipSlice uint32
}

type VIEWPORT struct {
	TopLeftX float32
	TopLeftY float32
	Width    float32
	Height   float32
	MinDepth float32
	MaxDepth float32
}

type GUID struct {
	Data1   uint32
	Data2   uint16
	Data3   uint16
	Data4_0 uint8
	Data4_1 uint8
	Data4_2 uint8
	Data4_3 uint8
	Data4_4 uint8
	Data4_5 uint8
	Data4_6 uint8
	Data4_7 uint8
}

type Device struct {
	Vtbl *struct {
		_IUnknownVTbl
		CreateBuffer                         uintptr
		CreateTexture1D                      uintptr
		CreateTexture2D                      uintptr
		CreateTexture3D                      uintptr
		CreateShaderResourceView             uintptr
		CreateUnorderedAccessView            uintptr
		CreateRenderTargetView               uintptr
		CreateDepthStencilView               uintptr
		CreateInputLayout                    uintptr
		CreateVertexShader                   uintptr
		CreateGeometryShader                 uintptr
		CreateGeometryShaderWithStreamOutput uintptr
		CreatePixelShader                    uintptr
		CreateHullShader                     uintptr
		CreateDomainShader                   uintptr
		CreateComputeShader                  uintptr
		CreateClassLinkage                   uintptr
		CreateBlendState                     uintptr
		CreateDepthStencilState              uintptr
		CreateRasterizerState                uintptr
		CreateSamplerState                   uintptr
		CreateQuery                          uintptr
		CreatePredicate                      uintptr
		CreateCounter                        uintptr
		CreateDeferredContext                uintptr
		OpenSharedResource                   uintptr
		CheckFormatSupport                   uintptr
		CheckMultisampleQualityLevels        uintptr
		CheckCounterInfo                     uintptr
		CheckCounter                         uintptr
		CheckFeatureSupport                  uintptr
		GetPrivateData                       uintptr
		SetPrivateData                       uintptr
		SetPrivateDataInterface              uintptr
		GetFeatureLevel                      uintptr
		GetCreationFlags                     uintptr
		GetDeviceRemovedReason               uintptr
		GetImmediateContext                  uintptr
		SetExceptionMode                     uintptr
		GetExceptionMode                     uintptr
	}
}

// DeviceContext lists the vtable up to the last method in use.
type DeviceContext struct {
	Vtbl *struct {
		_IUnknownVTbl
		GetDevice                                 uintptr
		GetPrivateData                            uintptr
		SetPrivateData                            uintptr
		SetPrivateDataInterface                   uintptr
		VSSetConstantBuffers                      uintptr
		PSSetShaderResources                      uintptr
		PSSetShader                               uintptr
		PSSetSamplers                             uintptr
		VSSetShader                               uintptr
		DrawIndexed                               uintptr
		Draw                                      uintptr
		Map                                       uintptr
		Unmap                                     uintptr
		PSSetConstantBuffers                      uintptr
		IASetInputLayout                          uintptr
		IASetVertexBuffers                        uintptr
		IASetIndexBuffer                          uintptr
		DrawIndexedInstanced                      uintptr
		DrawInstanced                             uintptr
		GSSetConstantBuffers                      uintptr
		GSSetShader                               uintptr
		IASetPrimitiveTopology                    uintptr
		VSSetShaderResources                      uintptr
		VSSetSamplers                             uintptr
		Begin                                     uintptr
		End                                       uintptr
		GetData                                   uintptr
		SetPredication                            uintptr
		GSSetShaderResources                      uintptr
		GSSetSamplers                             uintptr
		OMSetRenderTargets                        uintptr
		OMSetRenderTargetsAndUnorderedAccessViews uintptr
		OMSetBlendState                           uintptr
		OMSetDepthStencilState                    uintptr
		SOSetTargets                              uintptr
		DrawAuto                                  uintptr
		DrawIndexedInstancedIndirect              uintptr
		DrawInstancedIndirect                     uintptr
		Dispatch                                  uintptr
		DispatchIndirect                          uintptr
		RSSetState                                uintptr
		RSSetViewports                            uintptr
		RSSetScissorRects                         uintptr
		CopySubresourceRegion                     uintptr
		CopyResource                              uintptr
		UpdateSubresource                         uintptr
		CopyStructureCount                        uintptr
		ClearRenderTargetView                     uintptr
		ClearUnorderedAccessViewUint              uintptr
		ClearUnorderedAccessViewFloat             uintptr
		ClearDepthStencilView                     uintptr
	}
}

type RenderTargetView struct {
	Vtbl *struct {
		_IUnknownVTbl
	}
}

type DepthStencilView struct {
	Vtbl *struct {
		_IUnknownVTbl
	}
}

type Resource struct {
	Vtbl *struct {
		_IUnknownVTbl
	}
}

type Texture2D struct {
	Vtbl *struct {
		_IUnknownVTbl
	}
}

type Buffer struct {
	Vtbl *struct {
		_IUnknownVTbl
	}
}

type VertexShader struct {
	Vtbl *struct {
		_IUnknownVTbl
	}
}

type PixelShader struct {
	Vtbl *struct {
		_IUnknownVTbl
	}
}

type InputLayout struct {
	Vtbl *struct {
		_IUnknownVTbl
	}
}

type IUnknown struct {
	Vtbl *struct {
		_IUnknownVTbl
	}
}

type _IUnknownVTbl struct {
	QueryInterface uintptr
	AddRef         uintptr
	Release        uintptr
}

// ErrorCode is a failed HRESULT together with the call that returned it.
type ErrorCode struct {
	Name string
	Code uint32
}

var (
	IID_Texture2D    = GUID{0x6f15aaf2, 0xd208, 0x4e89, 0x9a, 0xb4, 0x48, 0x95, 0x35, 0xd3, 0x4f, 0x9c}
	IID_IDXGIDevice  = GUID{0x54ec77fa, 0x1377, 0x44e6, 0x8c, 0x32, 0x88, 0xfd, 0x5f, 0x44, 0xc8, 0x4c}
	IID_IDXGIFactory = GUID{0x7b7166ec, 0x21c7, 0x44ae, 0xb2, 0x1a, 0xc9, 0xae, 0x32, 0x1a, 0xe3, 0x69}
	// IID_IDXGIFactory2 is available from DXGI 1.2 (Windows 8, or 7 with the platform update).
	IID_IDXGIFactory2 = GUID{0x50c83a1c, 0xe072, 0x4c48, 0x87, 0xb0, 0x36, 0x30, 0xfa, 0x36, 0xa6, 0xd0}
)

var (
	d3d11 = windows.NewLazySystemDLL("d3d11.dll")

	_D3D11CreateDevice = d3d11.NewProc("D3D11CreateDevice")
)

const (
	SDK_VERSION = 7

	DRIVER_TYPE_HARDWARE  = 1
	DRIVER_TYPE_REFERENCE = 2
	DRIVER_TYPE_WARP      = 5

	CREATE_DEVICE_DEBUG = 0x2

	FEATURE_LEVEL_11_0 = 0xb000
	FEATURE_LEVEL_11_1 = 0xb100

	DXGI_FORMAT_R32G32B32A32_FLOAT = 2
	DXGI_FORMAT_R32G32B32_FLOAT    = 6
	DXGI_FORMAT_R8G8B8A8_UNORM     = 28
	DXGI_FORMAT_D24_UNORM_S8_UINT  = 45

	USAGE_DEFAULT   = 0
	USAGE_IMMUTABLE = 1

	BIND_VERTEX_BUFFER = 0x1
	BIND_DEPTH_STENCIL = 0x40

	DSV_DIMENSION_TEXTURE2D = 3

	INPUT_PER_VERTEX_DATA = 0

	PRIMITIVE_TOPOLOGY_TRIANGLELIST = 4

	CLEAR_DEPTH   = 0x1
	CLEAR_STENCIL = 0x2

	// DXGI_ERROR_SDK_COMPONENT_MISSING is returned when the debug layer is requested but not installed.
	DXGI_ERROR_SDK_COMPONENT_MISSING = 0x887a002d
	DXGI_ERROR_UNSUPPORTED           = 0x887a0004
	E_INVALIDARG                     = 0x80070057
)

// failed reports whether the HRESULT r signals an error. Success codes such
// as DXGI_STATUS_OCCLUDED are positive.
func failed(r uintptr) bool {
	return int32(r) < 0
}

// CreateDevice creates a device and its immediate context, requesting the
// first supported level out of featureLevels.
func CreateDevice(driverType uint32, flags uint32, featureLevels []uint32) (*Device, *DeviceContext, uint32, error) {
	var (
		dev     *Device
		ctx     *DeviceContext
		featLvl uint32
		levels  *uint32
	)
	if len(featureLevels) > 0 {
		levels = &featureLevels[0]
	}
	r, _, _ := _D3D11CreateDevice.Call(
		0,                                 // pAdapter
		uintptr(driverType),               // driverType
		0,                                 // Software
		uintptr(flags),                    // Flags
		uintptr(unsafe.Pointer(levels)),   // pFeatureLevels
		uintptr(len(featureLevels)),       // FeatureLevels
		SDK_VERSION,                       // SDKVersion
		uintptr(unsafe.Pointer(&dev)),     // ppDevice
		uintptr(unsafe.Pointer(&featLvl)), // pFeatureLevel
		uintptr(unsafe.Pointer(&ctx)),     // ppImmediateContext
	)
	if failed(r) {
		return nil, nil, 0, ErrorCode{Name: "D3D11CreateDevice", Code: uint32(r)}
	}
	return dev, ctx, featLvl, nil
}

func (d *Device) CreateBuffer(desc *BUFFER_DESC, data []byte) (*Buffer, error) {
	var dataDesc *SUBRESOURCE_DATA
	if len(data) > 0 {
		dataDesc = &SUBRESOURCE_DATA{
			PSysMem: &data[0],
		}
	}
	var buf *Buffer
	r, _, _ := syscall.SyscallN(
		d.Vtbl.CreateBuffer,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(dataDesc)),
		uintptr(unsafe.Pointer(&buf)),
	)
	if failed(r) {
		return nil, ErrorCode{Name: "DeviceCreateBuffer", Code: uint32(r)}
	}
	return buf, nil
}

func (d *Device) CreateTexture2D(desc *TEXTURE2D_DESC) (*Texture2D, error) {
	var tex *Texture2D
	r, _, _ := syscall.SyscallN(
		d.Vtbl.CreateTexture2D,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(desc)),
		0, // pInitialData
		uintptr(unsafe.Pointer(&tex)),
	)
	if failed(r) {
		return nil, ErrorCode{Name: "DeviceCreateTexture2D", Code: uint32(r)}
	}
	return tex, nil
}

func (d *Device) CreateRenderTargetView(res *Resource) (*RenderTargetView, error) {
	var target *RenderTargetView
	r, _, _ := syscall.SyscallN(
		d.Vtbl.CreateRenderTargetView,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(res)),
		0, // pDesc
		uintptr(unsafe.Pointer(&target)),
	)
	if failed(r) {
		return nil, ErrorCode{Name: "DeviceCreateRenderTargetView", Code: uint32(r)}
	}
	return target, nil
}

func (d *Device) CreateDepthStencilViewTEX2D(res *Resource, desc *DEPTH_STENCIL_VIEW_DESC_TEX2D) (*DepthStencilView, error) {
	var view *DepthStencilView
	r, _, _ := syscall.SyscallN(
		d.Vtbl.CreateDepthStencilView,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(res)),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(&view)),
	)
	if failed(r) {
		return nil, ErrorCode{Name: "DeviceCreateDepthStencilView", Code: uint32(r)}
	}
	return view, nil
}

func (d *Device) CreateVertexShader(bytecode []byte) (*VertexShader, error) {
	if len(bytecode) == 0 {
		return nil, ErrorCode{Name: "DeviceCreateVertexShader", Code: E_INVALIDARG}
	}
	var shader *VertexShader
	r, _, _ := syscall.SyscallN(
		d.Vtbl.CreateVertexShader,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(&bytecode[0])),
		uintptr(len(bytecode)),
		0, // pClassLinkage
		uintptr(unsafe.Pointer(&shader)),
	)
	if failed(r) {
		return nil, ErrorCode{Name: "DeviceCreateVertexShader", Code: uint32(r)}
	}
	return shader, nil
}

func (d *Device) CreatePixelShader(bytecode []byte) (*PixelShader, error) {
	if len(bytecode) == 0 {
		return nil, ErrorCode{Name: "DeviceCreatePixelShader", Code: E_INVALIDARG}
	}
	var shader *PixelShader
	r, _, _ := syscall.SyscallN(
		d.Vtbl.CreatePixelShader,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(&bytecode[0])),
		uintptr(len(bytecode)),
		0, // pClassLinkage
		uintptr(unsafe.Pointer(&shader)),
	)
	if failed(r) {
		return nil, ErrorCode{Name: "DeviceCreatePixelShader", Code: uint32(r)}
	}
	return shader, nil
}

func (d *Device) CreateInputLayout(descs []INPUT_ELEMENT_DESC, bytecode []byte) (*InputLayout, error) {
	if len(bytecode) == 0 {
		return nil, ErrorCode{Name: "DeviceCreateInputLayout", Code: E_INVALIDARG}
	}
	var pdesc *INPUT_ELEMENT_DESC
	if len(descs) > 0 {
		pdesc = &descs[0]
	}
	var layout *InputLayout
	r, _, _ := syscall.SyscallN(
		d.Vtbl.CreateInputLayout,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(pdesc)),
		uintptr(len(descs)),
		uintptr(unsafe.Pointer(&bytecode[0])),
		uintptr(len(bytecode)),
		uintptr(unsafe.Pointer(&layout)),
	)
	if failed(r) {
		return nil, ErrorCode{Name: "DeviceCreateInputLayout", Code: uint32(r)}
	}
	return layout, nil
}

func (d *Device) GetFeatureLevel() uint32 {
	lvl, _, _ := syscall.SyscallN(
		d.Vtbl.GetFeatureLevel,
		uintptr(unsafe.Pointer(d)),
	)
	return uint32(lvl)
}

func (c *DeviceContext) ClearDepthStencilView(target *DepthStencilView, flags uint32, depth float32, stencil uint8) {
	syscall.SyscallN(
		c.Vtbl.ClearDepthStencilView,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(target)),
		uintptr(flags),
		uintptr(math.Float32bits(depth)),
		uintptr(stencil),
	)
}

func (c *DeviceContext) ClearRenderTargetView(target *RenderTargetView, color *[4]float32) {
	syscall.SyscallN(
		c.Vtbl.ClearRenderTargetView,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(target)),
		uintptr(unsafe.Pointer(color)),
	)
}

func (c *DeviceContext) RSSetViewports(viewport *VIEWPORT) {
	syscall.SyscallN(
		c.Vtbl.RSSetViewports,
		uintptr(unsafe.Pointer(c)),
		1, // NumViewports
		uintptr(unsafe.Pointer(viewport)),
	)
}

func (c *DeviceContext) VSSetShader(s *VertexShader) {
	syscall.SyscallN(
		c.Vtbl.VSSetShader,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(s)),
		0, // ppClassInstances
		0, // NumClassInstances
	)
}

func (c *DeviceContext) PSSetShader(s *PixelShader) {
	syscall.SyscallN(
		c.Vtbl.PSSetShader,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(s)),
		0, // ppClassInstances
		0, // NumClassInstances
	)
}

func (c *DeviceContext) IASetInputLayout(layout *InputLayout) {
	syscall.SyscallN(
		c.Vtbl.IASetInputLayout,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(layout)),
	)
}

func (c *DeviceContext) IASetVertexBuffers(buf *Buffer, stride, offset uint32) {
	syscall.SyscallN(
		c.Vtbl.IASetVertexBuffers,
		uintptr(unsafe.Pointer(c)),
		0, // StartSlot
		1, // NumBuffers
		uintptr(unsafe.Pointer(&buf)),
		uintptr(unsafe.Pointer(&stride)),
		uintptr(unsafe.Pointer(&offset)),
	)
}

func (c *DeviceContext) IASetPrimitiveTopology(mode uint32) {
	syscall.SyscallN(
		c.Vtbl.IASetPrimitiveTopology,
		uintptr(unsafe.Pointer(c)),
		uintptr(mode),
	)
}

// OMSetRenderTargets binds a single render target. A nil target unbinds
// every render target and the depth-stencil view.
func (c *DeviceContext) OMSetRenderTargets(target *RenderTargetView, depthStencil *DepthStencilView) {
	if target == nil {
		syscall.SyscallN(
			c.Vtbl.OMSetRenderTargets,
			uintptr(unsafe.Pointer(c)),
			0, // NumViews
			0, // ppRenderTargetViews
			0, // pDepthStencilView
		)
		return
	}
	syscall.SyscallN(
		c.Vtbl.OMSetRenderTargets,
		uintptr(unsafe.Pointer(c)),
		1, // NumViews
		uintptr(unsafe.Pointer(&target)),
		uintptr(unsafe.Pointer(depthStencil)),
	)
}

func (c *DeviceContext) Draw(count, start uint32) {
	syscall.SyscallN(
		c.Vtbl.Draw,
		uintptr(unsafe.Pointer(c)),
		uintptr(count),
		uintptr(start),
	)
}

func IUnknownQueryInterface(obj unsafe.Pointer, queryInterfaceMethod uintptr, guid *GUID) (*IUnknown, error) {
	var ref *IUnknown
	r, _, _ := syscall.SyscallN(
		queryInterfaceMethod,
		uintptr(obj),
		uintptr(unsafe.Pointer(guid)),
		uintptr(unsafe.Pointer(&ref)),
	)
	if failed(r) {
		return nil, ErrorCode{Name: "IUnknownQueryInterface", Code: uint32(r)}
	}
	return ref, nil
}

func IUnknownRelease(obj unsafe.Pointer, releaseMethod uintptr) {
	syscall.SyscallN(
		releaseMethod,
		uintptr(obj),
	)
}

func (e ErrorCode) Error() string {
	return fmt.Sprintf("%s: %#x", e.Name, e.Code)
}

// CreateDepthView creates a D24S8 depth-stencil texture of the given size and a view on it.
func CreateDepthView(d *Device, width, height int) (*DepthStencilView, error) {
	depthTex, err := d.CreateTexture2D(&TEXTURE2D_DESC{
		Width:     uint32(width),
		Height:    uint32(height),
		MipLevels: 1,
		ArraySize: 1,
		Format:    DXGI_FORMAT_D24_UNORM_S8_UINT,
		SampleDesc: DXGI_SAMPLE_DESC{
			Count:   1,
			Quality: 0,
		},
		Usage:     USAGE_DEFAULT,
		BindFlags: BIND_DEPTH_STENCIL,
	})
	if err != nil {
		return nil, err
	}
	depthView, err := d.CreateDepthStencilViewTEX2D(
		(*Resource)(unsafe.Pointer(depthTex)),
		&DEPTH_STENCIL_VIEW_DESC_TEX2D{
			Format:        DXGI_FORMAT_D24_UNORM_S8_UINT,
			ViewDimension: DSV_DIMENSION_TEXTURE2D,
		},
	)
	IUnknownRelease(unsafe.Pointer(depthTex), depthTex.Vtbl.Release)
	return depthView, err
}
