// Package d3d11 binds the subset of Direct3D 11, DXGI and the HLSL compiler
// needed to draw through a swap chain. COM objects are plain structs whose
// first field points to the interface vtable; every method is a direct
// vtable call.
package d3d11
