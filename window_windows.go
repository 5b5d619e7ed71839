package hellod3d

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/esimov/hellod3d/internal/win32"
	"golang.org/x/sys/windows"
)

// ErrClassRegistered is returned when a second window class is registered in the same process.
var ErrClassRegistered = errors.New("window class already registered")

// WndClass is the window class shared by every window of the process.
// It owns the registry routing native messages to their Window.
type WndClass struct {
	name     string
	atom     uint16
	instance windows.Handle
	registry *Registry[windows.Handle, Window]
}

var (
	wndClassMu sync.Mutex
	wndClass   atomic.Pointer[WndClass]

	wndProcCallback = sync.OnceValue(func() uintptr {
		return windows.NewCallback(windowProc)
	})
)

// RegisterWndClass registers the process-wide window class.
func RegisterWndClass(name string) (*WndClass, error) {
	wndClassMu.Lock()
	defer wndClassMu.Unlock()

	if cls := wndClass.Load(); cls != nil {
		return nil, fmt.Errorf("%w: %q", ErrClassRegistered, cls.name)
	}
	if name == "" {
		return nil, errors.New("window class name is required")
	}
	hInst, err := win32.GetModuleHandle()
	if err != nil {
		return nil, err
	}
	curs, err := win32.LoadCursor(win32.IDC_ARROW)
	if err != nil {
		return nil, err
	}
	cname, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	wcls := win32.WndClassEx{
		CbSize:        uint32(unsafe.Sizeof(win32.WndClassEx{})),
		Style:         win32.CS_HREDRAW | win32.CS_VREDRAW | win32.CS_OWNDC,
		LpfnWndProc:   wndProcCallback(),
		HInstance:     hInst,
		HCursor:       curs,
		LpszClassName: cname,
	}
	atom, err := win32.RegisterClassEx(&wcls)
	if err != nil {
		return nil, err
	}
	cls := &WndClass{
		name:     name,
		atom:     atom,
		instance: hInst,
		registry: NewRegistry[windows.Handle, Window](),
	}
	wndClass.Store(cls)
	Logger().Info("window class registered", "class", name)
	return cls, nil
}

// WndClassInstance returns the registered window class, or nil.
func WndClassInstance() *WndClass {
	return wndClass.Load()
}

// Name returns the class name.
func (c *WndClass) Name() string { return c.name }

// Instance returns the module handle the class was registered with.
func (c *WndClass) Instance() windows.Handle { return c.instance }

// Unregister removes the class so that another one may be registered.
// Every window of the class must have been destroyed.
func (c *WndClass) Unregister() {
	wndClassMu.Lock()
	defer wndClassMu.Unlock()

	if wndClass.Load() != c {
		return
	}
	win32.UnregisterClass(c.atom, c.instance)
	wndClass.Store(nil)
}

// MessageLoop pumps the messages of the calling thread until WM_QUIT is received.
func (c *WndClass) MessageLoop() error {
	var msg win32.Msg
	for {
		switch win32.GetMessage(&msg, 0, 0, 0) {
		case 0:
			return nil
		case -1:
			return errors.New("GetMessage failed")
		}
		win32.TranslateMessage(&msg)
		win32.DispatchMessage(&msg)
	}
}

func windowProc(hwnd windows.Handle, msg uint32, wParam, lParam uintptr) uintptr {
	cls := WndClassInstance()
	if cls == nil {
		return win32.DefWindowProc(hwnd, msg, wParam, lParam)
	}
	switch msg {
	case win32.WM_NCDESTROY:
		r := win32.DefWindowProc(hwnd, msg, wParam, lParam)
		if cls.registry.Len() > 0 && cls.registry.Unregister(hwnd) == 0 {
			Logger().Info("last window destroyed")
			win32.PostQuitMessage(0)
		}
		return r
	}
	if w, ok := cls.registry.Lookup(hwnd); ok {
		return w.wndProc(msg, wParam, lParam)
	}
	return win32.DefWindowProc(hwnd, msg, wParam, lParam)
}

// EventHandler is called with the parameters of every message matching Msg.
type EventHandler struct {
	Msg     uint32
	Handler func(wParam, lParam uintptr)
}

// Window is a top-level native window. The registry only references it
// weakly: the caller must keep it reachable while the window is alive.
type Window struct {
	hwnd      windows.Handle
	destroyed atomic.Bool

	mu       sync.RWMutex
	handlers []EventHandler
}

// Handle returns the native window handle.
func (w *Window) Handle() windows.Handle {
	return w.hwnd
}

// AddHandler registers fn for msg. Handlers run in registration order.
func (w *Window) AddHandler(msg uint32, fn func(wParam, lParam uintptr)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, EventHandler{Msg: msg, Handler: fn})
}

// Show makes the window visible and paints it.
func (w *Window) Show() {
	win32.ShowWindow(w.hwnd, win32.SW_SHOWNORMAL)
	win32.UpdateWindow(w.hwnd)
}

// Size returns the size of the client area.
func (w *Window) Size() Size {
	r := win32.GetClientRect(w.hwnd)
	return Size{Width: int(r.Right - r.Left), Height: int(r.Bottom - r.Top)}
}

// Position returns the top-left corner of the window in screen coordinates.
func (w *Window) Position() Position {
	r := win32.GetWindowRect(w.hwnd)
	return Position{X: int(r.Left), Y: int(r.Top)}
}

// SetTitle changes the text of the title bar.
func (w *Window) SetTitle(title string) error {
	return win32.SetWindowText(w.hwnd, title)
}

// Destroy destroys the native window. Calling it more than once is a no-op.
func (w *Window) Destroy() error {
	if w.destroyed.Swap(true) {
		return nil
	}
	return win32.DestroyWindow(w.hwnd)
}

func (w *Window) wndProc(msg uint32, wParam, lParam uintptr) uintptr {
	w.mu.RLock()
	var matched []EventHandler
	for _, h := range w.handlers {
		if h.Msg == msg {
			matched = append(matched, h)
		}
	}
	w.mu.RUnlock()

	for _, h := range matched {
		h.Handler(wParam, lParam)
	}

	switch msg {
	case win32.WM_PAINT:
		win32.ValidateRect(w.hwnd, nil)
		return 0
	case win32.WM_DESTROY:
		w.destroyed.Store(true)
	}
	return win32.DefWindowProc(w.hwnd, msg, wParam, lParam)
}

// WindowBuilder collects the CreateWindowEx parameters of a Window.
type WindowBuilder struct {
	exStyle    uint32
	className  string
	windowName string
	hasName    bool
	style      uint32
	pos        Position
	size       Size
	parent     windows.Handle
	menu       windows.Handle
	instance   windows.Handle
	param      uintptr
}

// NewWindowBuilder returns a builder for an overlapped window with a
// system-chosen position and size.
func NewWindowBuilder() *WindowBuilder {
	return &WindowBuilder{
		style: win32.WS_OVERLAPPEDWINDOW,
		pos:   Position{X: win32.CW_USEDEFAULT, Y: win32.CW_USEDEFAULT},
		size:  Size{Width: win32.CW_USEDEFAULT, Height: win32.CW_USEDEFAULT},
	}
}

// ExStyle sets the extended window style.
func (b *WindowBuilder) ExStyle(style uint32) *WindowBuilder {
	b.exStyle = style
	return b
}

// ClassName sets the name of the registered window class.
func (b *WindowBuilder) ClassName(name string) *WindowBuilder {
	b.className = name
	return b
}

// WindowName sets the window title. An empty title is allowed.
func (b *WindowBuilder) WindowName(name string) *WindowBuilder {
	b.windowName = name
	b.hasName = true
	return b
}

// Style sets the window style.
func (b *WindowBuilder) Style(style uint32) *WindowBuilder {
	b.style = style
	return b
}

// Position sets the initial position of the window.
func (b *WindowBuilder) Position(x, y int) *WindowBuilder {
	b.pos = Position{X: x, Y: y}
	return b
}

// Size sets the initial outer size of the window.
func (b *WindowBuilder) Size(width, height int) *WindowBuilder {
	b.size = Size{Width: width, Height: height}
	return b
}

// Parent sets the owner window.
func (b *WindowBuilder) Parent(hwnd windows.Handle) *WindowBuilder {
	b.parent = hwnd
	return b
}

// Menu sets the menu handle.
func (b *WindowBuilder) Menu(menu windows.Handle) *WindowBuilder {
	b.menu = menu
	return b
}

// Instance sets the module instance handle.
func (b *WindowBuilder) Instance(h windows.Handle) *WindowBuilder {
	b.instance = h
	return b
}

// Param sets the creation parameter passed along with WM_NCCREATE.
func (b *WindowBuilder) Param(p uintptr) *WindowBuilder {
	b.param = p
	return b
}

// Build creates the window and registers it with the window class.
func (b *WindowBuilder) Build() (*Window, error) {
	switch {
	case b.className == "":
		return nil, errors.New("window class name is required")
	case !b.hasName:
		return nil, errors.New("window name is required")
	case b.instance == 0:
		return nil, errors.New("instance handle is required")
	}
	cls := WndClassInstance()
	if cls == nil || cls.name != b.className {
		return nil, fmt.Errorf("window class %q is not registered", b.className)
	}

	hwnd, err := win32.CreateWindowEx(
		b.exStyle,
		cls.atom,
		b.windowName,
		b.style,
		int32(b.pos.X), int32(b.pos.Y),
		int32(b.size.Width), int32(b.size.Height),
		b.parent,
		b.menu,
		b.instance,
		b.param,
	)
	if err != nil {
		return nil, err
	}
	w := &Window{hwnd: hwnd}
	cls.registry.Register(hwnd, w)
	Logger().Info("window created", "title", b.windowName, "size", w.Size())
	return w, nil
}
