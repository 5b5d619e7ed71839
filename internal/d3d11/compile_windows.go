// SPDX-License-Identifier: Unlicense OR MIT

package d3d11

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	d3dcompiler_47 = windows.NewLazySystemDLL("d3dcompiler_47.dll")

	__D3DCompile = d3dcompiler_47.NewProc("D3DCompile")
)

const (
	D3DCOMPILE_DEBUG               = 1 << 0
	D3DCOMPILE_SKIP_OPTIMIZATION   = 1 << 2
	D3DCOMPILE_ENABLE_STRICTNESS   = 1 << 11
	D3DCOMPILE_OPTIMIZATION_LEVEL3 = 1 << 15

	// D3D_COMPILE_STANDARD_FILE_INCLUDE resolves #include directives relative to the current directory.
	D3D_COMPILE_STANDARD_FILE_INCLUDE = 1
)

type _ID3DBlob struct {
	vtbl *struct {
		_IUnknownVTbl
		GetBufferPointer uintptr
		GetBufferSize    uintptr
	}
}

// CompileError is returned when D3DCompile fails. Log holds the compiler diagnostics.
type CompileError struct {
	ErrorCode
	Log string
}

// D3DCompile compiles HLSL source. sourceName is only used in diagnostics.
// Warnings are returned alongside the bytecode on success.
func D3DCompile(src []byte, sourceName, entryPoint, target string, flags uint32) (bytecode []byte, warnings string, err error) {
	if len(src) == 0 {
		return nil, "", CompileError{ErrorCode: ErrorCode{Name: "D3DCompile", Code: E_INVALIDARG}, Log: "empty source"}
	}
	var (
		code   *_ID3DBlob
		errors *_ID3DBlob
	)
	name0, err := windows.BytePtrFromString(sourceName)
	if err != nil {
		return nil, "", err
	}
	entry0, err := windows.BytePtrFromString(entryPoint)
	if err != nil {
		return nil, "", err
	}
	target0, err := windows.BytePtrFromString(target)
	if err != nil {
		return nil, "", err
	}
	r, _, _ := __D3DCompile.Call(
		uintptr(unsafe.Pointer(&src[0])),
		uintptr(len(src)),
		uintptr(unsafe.Pointer(name0)),
		0, // pDefines
		D3D_COMPILE_STANDARD_FILE_INCLUDE,
		uintptr(unsafe.Pointer(entry0)),
		uintptr(unsafe.Pointer(target0)),
		uintptr(flags), // Flags1
		0,              // Flags2
		uintptr(unsafe.Pointer(&code)),
		uintptr(unsafe.Pointer(&errors)),
	)
	var log string
	if errors != nil {
		log = string(errors.data())
		IUnknownRelease(unsafe.Pointer(errors), errors.vtbl.Release)
	}
	if failed(r) {
		if code != nil {
			IUnknownRelease(unsafe.Pointer(code), code.vtbl.Release)
		}
		return nil, "", CompileError{ErrorCode: ErrorCode{Name: "D3DCompile", Code: uint32(r)}, Log: log}
	}
	data := code.data()
	bytecode = make([]byte, len(data))
	copy(bytecode, data)
	IUnknownRelease(unsafe.Pointer(code), code.vtbl.Release)
	return bytecode, log, nil
}

func (b *_ID3DBlob) GetBufferPointer() uintptr {
	ptr, _, _ := syscall.SyscallN(
		b.vtbl.GetBufferPointer,
		uintptr(unsafe.Pointer(b)),
	)
	return ptr
}

func (b *_ID3DBlob) GetBufferSize() uintptr {
	sz, _, _ := syscall.SyscallN(
		b.vtbl.GetBufferSize,
		uintptr(unsafe.Pointer(b)),
	)
	return sz
}

func (b *_ID3DBlob) data() []byte {
	n := int(b.GetBufferSize())
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(b.GetBufferPointer())), n)
}
