// Package win32 exposes the user32 and kernel32 calls needed to register a
// window class, create a top-level window and pump its messages.
package win32
