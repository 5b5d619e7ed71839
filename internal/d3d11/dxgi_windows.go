// SPDX-License-Identifier: Unlicense OR MIT

package d3d11

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

type DXGI_SWAP_CHAIN_DESC struct {
	BufferDesc   DXGI_MODE_DESC
	SampleDesc   DXGI_SAMPLE_DESC
	BufferUsage  uint32
	BufferCount  uint32
	OutputWindow windows.Handle
	Windowed     uint32
	SwapEffect   uint32
	Flags        uint32
}

type DXGI_SWAP_CHAIN_DESC1 struct {
	Width       uint32
	Height      uint32
	Format      uint32
	Stereo      uint32
	SampleDesc  DXGI_SAMPLE_DESC
	BufferUsage uint32
	BufferCount uint32
	Scaling     uint32
	SwapEffect  uint32
	AlphaMode   uint32
	Flags       uint32
}

type DXGI_SWAP_CHAIN_FULLSCREEN_DESC struct {
	RefreshRate      DXGI_RATIONAL
	ScanlineOrdering uint32
	Scaling          uint32
	Windowed         uint32
}

type DXGI_SAMPLE_DESC struct {
	Count   uint32
	Quality uint32
}

type DXGI_MODE_DESC struct {
	Width            uint32
	Height           uint32
	RefreshRate      DXGI_RATIONAL
	Format           uint32
	ScanlineOrdering uint32
	Scaling          uint32
}

type DXGI_RATIONAL struct {
	Numerator   uint32
	Denominator uint32
}

// IDXGISwapChain covers IDXGISwapChain1 as well; the 1.2 methods are never called.
type IDXGISwapChain struct {
	Vtbl *struct {
		_IUnknownVTbl
		SetPrivateData          uintptr
		SetPrivateDataInterface uintptr
		GetPrivateData          uintptr
		GetParent               uintptr
		GetDevice               uintptr
		Present                 uintptr
		GetBuffer               uintptr
		SetFullscreenState      uintptr
		GetFullscreenState      uintptr
		GetDesc                 uintptr
		ResizeBuffers           uintptr
		ResizeTarget            uintptr
		GetContainingOutput     uintptr
		GetFrameStatistics      uintptr
		GetLastPresentCount     uintptr
	}
}

type IDXGIObject struct {
	Vtbl *struct {
		_IUnknownVTbl
		SetPrivateData          uintptr
		SetPrivateDataInterface uintptr
		GetPrivateData          uintptr
		GetParent               uintptr
	}
}

type IDXGIAdapter struct {
	Vtbl *struct {
		_IUnknownVTbl
		SetPrivateData          uintptr
		SetPrivateDataInterface uintptr
		GetPrivateData          uintptr
		GetParent               uintptr
		EnumOutputs             uintptr
		GetDesc                 uintptr
		CheckInterfaceSupport   uintptr
	}
}

type IDXGIDevice struct {
	Vtbl *struct {
		_IUnknownVTbl
		SetPrivateData          uintptr
		SetPrivateDataInterface uintptr
		GetPrivateData          uintptr
		GetParent               uintptr
		GetAdapter              uintptr
		CreateSurface           uintptr
		QueryResourceResidency  uintptr
		SetGPUThreadPriority    uintptr
		GetGPUThreadPriority    uintptr
	}
}

type IDXGIFactory struct {
	Vtbl *struct {
		_IUnknownVTbl
		SetPrivateData          uintptr
		SetPrivateDataInterface uintptr
		GetPrivateData          uintptr
		GetParent               uintptr
		EnumAdapters            uintptr
		MakeWindowAssociation   uintptr
		GetWindowAssociation    uintptr
		CreateSwapChain         uintptr
		CreateSoftwareAdapter   uintptr
	}
}

type IDXGIFactory2 struct {
	Vtbl *struct {
		_IUnknownVTbl
		SetPrivateData                uintptr
		SetPrivateDataInterface       uintptr
		GetPrivateData                uintptr
		GetParent                     uintptr
		EnumAdapters                  uintptr
		MakeWindowAssociation         uintptr
		GetWindowAssociation          uintptr
		CreateSwapChain               uintptr
		CreateSoftwareAdapter         uintptr
		EnumAdapters1                 uintptr
		IsCurrent                     uintptr
		IsWindowedStereoEnabled       uintptr
		CreateSwapChainForHwnd        uintptr
		CreateSwapChainForCoreWindow  uintptr
		GetSharedResourceAdapterLuid  uintptr
		RegisterStereoStatusWindow    uintptr
		RegisterStereoStatusEvent     uintptr
		UnregisterStereoStatus        uintptr
		RegisterOcclusionStatusWindow uintptr
		RegisterOcclusionStatusEvent  uintptr
		UnregisterOcclusionStatus     uintptr
		CreateSwapChainForComposition uintptr
	}
}

const (
	DXGI_USAGE_RENDER_TARGET_OUTPUT = 1 << (1 + 4)

	DXGI_SWAP_EFFECT_DISCARD = 0

	DXGI_MODE_SCANLINE_ORDER_UNSPECIFIED = 0
	DXGI_MODE_SCALING_UNSPECIFIED        = 0
	DXGI_SCALING_STRETCH                 = 0
	DXGI_ALPHA_MODE_UNSPECIFIED          = 0

	// DXGI_STATUS_OCCLUDED is a success code returned by Present while the window is hidden.
	DXGI_STATUS_OCCLUDED = 0x087a0001
)

func (s *IDXGISwapChain) ResizeBuffers(buffers, width, height, newFormat, flags uint32) error {
	r, _, _ := syscall.SyscallN(
		s.Vtbl.ResizeBuffers,
		uintptr(unsafe.Pointer(s)),
		uintptr(buffers),
		uintptr(width),
		uintptr(height),
		uintptr(newFormat),
		uintptr(flags),
	)
	if failed(r) {
		return ErrorCode{Name: "IDXGISwapChainResizeBuffers", Code: uint32(r)}
	}
	return nil
}

// Present returns the success status code along with any failure.
func (s *IDXGISwapChain) Present(syncInterval int, flags uint32) (uint32, error) {
	r, _, _ := syscall.SyscallN(
		s.Vtbl.Present,
		uintptr(unsafe.Pointer(s)),
		uintptr(syncInterval),
		uintptr(flags),
	)
	if failed(r) {
		return 0, ErrorCode{Name: "IDXGISwapChainPresent", Code: uint32(r)}
	}
	return uint32(r), nil
}

func (s *IDXGISwapChain) GetBuffer(index int, riid *GUID) (*IUnknown, error) {
	var buf *IUnknown
	r, _, _ := syscall.SyscallN(
		s.Vtbl.GetBuffer,
		uintptr(unsafe.Pointer(s)),
		uintptr(index),
		uintptr(unsafe.Pointer(riid)),
		uintptr(unsafe.Pointer(&buf)),
	)
	if failed(r) {
		return nil, ErrorCode{Name: "IDXGISwapChainGetBuffer", Code: uint32(r)}
	}
	return buf, nil
}

func (d *IDXGIObject) GetParent(guid *GUID) (*IDXGIObject, error) {
	var parent *IDXGIObject
	r, _, _ := syscall.SyscallN(
		d.Vtbl.GetParent,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(guid)),
		uintptr(unsafe.Pointer(&parent)),
	)
	if failed(r) {
		return nil, ErrorCode{Name: "IDXGIObjectGetParent", Code: uint32(r)}
	}
	return parent, nil
}

func (d *IDXGIDevice) GetAdapter() (*IDXGIAdapter, error) {
	var adapter *IDXGIAdapter
	r, _, _ := syscall.SyscallN(
		d.Vtbl.GetAdapter,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(&adapter)),
	)
	if failed(r) {
		return nil, ErrorCode{Name: "IDXGIDeviceGetAdapter", Code: uint32(r)}
	}
	return adapter, nil
}

func (d *IDXGIFactory) CreateSwapChain(device *IUnknown, desc *DXGI_SWAP_CHAIN_DESC) (*IDXGISwapChain, error) {
	var swchain *IDXGISwapChain
	r, _, _ := syscall.SyscallN(
		d.Vtbl.CreateSwapChain,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(device)),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(&swchain)),
	)
	if failed(r) {
		return nil, ErrorCode{Name: "IDXGIFactoryCreateSwapChain", Code: uint32(r)}
	}
	return swchain, nil
}

func (d *IDXGIFactory2) CreateSwapChainForHwnd(device *IUnknown, hwnd windows.Handle, desc *DXGI_SWAP_CHAIN_DESC1, fullscreen *DXGI_SWAP_CHAIN_FULLSCREEN_DESC) (*IDXGISwapChain, error) {
	var swchain *IDXGISwapChain
	r, _, _ := syscall.SyscallN(
		d.Vtbl.CreateSwapChainForHwnd,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(device)),
		uintptr(hwnd),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(fullscreen)),
		0, // pRestrictToOutput
		uintptr(unsafe.Pointer(&swchain)),
	)
	if failed(r) {
		return nil, ErrorCode{Name: "IDXGIFactory2CreateSwapChainForHwnd", Code: uint32(r)}
	}
	return swchain, nil
}

// SwapChainConfig describes the swap chain bound to a window.
type SwapChainConfig struct {
	Width, Height uint32
	Format        uint32
	BufferCount   uint32
	RefreshRate   DXGI_RATIONAL
}

// factory walks from the device to the DXGI factory that created its adapter.
func factory(dev *Device) (*IDXGIObject, error) {
	dxgiDev, err := IUnknownQueryInterface(unsafe.Pointer(dev), dev.Vtbl.QueryInterface, &IID_IDXGIDevice)
	if err != nil {
		return nil, err
	}
	adapter, err := (*IDXGIDevice)(unsafe.Pointer(dxgiDev)).GetAdapter()
	IUnknownRelease(unsafe.Pointer(dxgiDev), dxgiDev.Vtbl.Release)
	if err != nil {
		return nil, err
	}
	parent, err := (*IDXGIObject)(unsafe.Pointer(adapter)).GetParent(&IID_IDXGIFactory)
	IUnknownRelease(unsafe.Pointer(adapter), adapter.Vtbl.Release)
	if err != nil {
		return nil, err
	}
	return parent, nil
}

// CreateSwapChain creates a windowed, discard-effect swap chain for hwnd.
// It prefers IDXGIFactory2.CreateSwapChainForHwnd and falls back to the
// DXGI 1.0 factory when 1.2 is unavailable. legacy reports the fallback.
func CreateSwapChain(dev *Device, hwnd windows.Handle, cfg SwapChainConfig) (swchain *IDXGISwapChain, legacy bool, err error) {
	parent, err := factory(dev)
	if err != nil {
		return nil, false, fmt.Errorf("CreateSwapChain: %w", err)
	}
	defer IUnknownRelease(unsafe.Pointer(parent), parent.Vtbl.Release)

	f2, qerr := IUnknownQueryInterface(unsafe.Pointer(parent), parent.Vtbl.QueryInterface, &IID_IDXGIFactory2)
	if qerr == nil {
		defer IUnknownRelease(unsafe.Pointer(f2), f2.Vtbl.Release)
		swchain, err = (*IDXGIFactory2)(unsafe.Pointer(f2)).CreateSwapChainForHwnd(
			(*IUnknown)(unsafe.Pointer(dev)),
			hwnd,
			&DXGI_SWAP_CHAIN_DESC1{
				Width:       cfg.Width,
				Height:      cfg.Height,
				Format:      cfg.Format,
				SampleDesc:  DXGI_SAMPLE_DESC{Count: 1},
				BufferUsage: DXGI_USAGE_RENDER_TARGET_OUTPUT,
				BufferCount: cfg.BufferCount,
				Scaling:     DXGI_SCALING_STRETCH,
				SwapEffect:  DXGI_SWAP_EFFECT_DISCARD,
				AlphaMode:   DXGI_ALPHA_MODE_UNSPECIFIED,
			},
			&DXGI_SWAP_CHAIN_FULLSCREEN_DESC{
				RefreshRate:      cfg.RefreshRate,
				ScanlineOrdering: DXGI_MODE_SCANLINE_ORDER_UNSPECIFIED,
				Scaling:          DXGI_MODE_SCALING_UNSPECIFIED,
				Windowed:         1,
			},
		)
		if err != nil {
			return nil, false, fmt.Errorf("CreateSwapChain: %w", err)
		}
		return swchain, false, nil
	}
	var code ErrorCode
	if !errors.As(qerr, &code) || code.Code != 0x80004002 { // E_NOINTERFACE
		return nil, false, fmt.Errorf("CreateSwapChain: %w", qerr)
	}

	swchain, err = (*IDXGIFactory)(unsafe.Pointer(parent)).CreateSwapChain(
		(*IUnknown)(unsafe.Pointer(dev)),
		&DXGI_SWAP_CHAIN_DESC{
			BufferDesc: DXGI_MODE_DESC{
				Width:       cfg.Width,
				Height:      cfg.Height,
				RefreshRate: cfg.RefreshRate,
				Format:      cfg.Format,
			},
			SampleDesc: DXGI_SAMPLE_DESC{
				Count: 1,
			},
			BufferUsage:  DXGI_USAGE_RENDER_TARGET_OUTPUT,
			BufferCount:  cfg.BufferCount,
			OutputWindow: hwnd,
			Windowed:     1,
			SwapEffect:   DXGI_SWAP_EFFECT_DISCARD,
		},
	)
	if err != nil {
		return nil, true, fmt.Errorf("CreateSwapChain: %w", err)
	}
	return swchain, true, nil
}

// CreateBackBufferView creates a render target view on buffer 0 of the swap chain.
func CreateBackBufferView(dev *Device, swchain *IDXGISwapChain) (*RenderTargetView, error) {
	backBuffer, err := swchain.GetBuffer(0, &IID_Texture2D)
	if err != nil {
		return nil, err
	}
	defer IUnknownRelease(unsafe.Pointer(backBuffer), backBuffer.Vtbl.Release)
	return dev.CreateRenderTargetView((*Resource)(unsafe.Pointer(backBuffer)))
}
