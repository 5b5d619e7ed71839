package hellod3d

import (
	"errors"
	"runtime"
	"sync"

	"github.com/esimov/hellod3d/internal/win32"
)

func runD3D11(cfg *Config) error {
	// Windows and their message queue belong to the creating thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	prog, err := LoadProgram(cfg.Shader)
	if err != nil {
		return err
	}
	cls, err := RegisterWndClass(cfg.Window.ClassName)
	if err != nil {
		return err
	}
	defer cls.Unregister()

	b := NewWindowBuilder().
		ClassName(cls.Name()).
		WindowName(cfg.Window.Title).
		Instance(cls.Instance())
	if cfg.Window.Width > 0 && cfg.Window.Height > 0 {
		b.Size(cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.X != nil && cfg.Window.Y != nil {
		b.Position(*cfg.Window.X, *cfg.Window.Y)
	}
	win, err := b.Build()
	if err != nil {
		return err
	}
	defer runtime.KeepAlive(win)

	rnd, err := NewRenderer(win, RendererOptions{
		Driver:       cfg.Renderer.Driver,
		Debug:        cfg.Renderer.Debug,
		SyncInterval: cfg.Renderer.SyncInterval,
		ClearColor:   cfg.Renderer.ClearColor,
		Cache:        NewCache(cfg.Shader.CacheDir),
	})
	if err != nil {
		win.Destroy()
		return err
	}
	defer rnd.Release()

	if err := rnd.Render(prog, cfg.Scene()); err != nil {
		win.Destroy()
		return err
	}

	var (
		mu       sync.RWMutex
		frameErr error
	)
	// fail must be called without holding mu: destroying the window
	// dispatches messages synchronously.
	fail := func(err error) {
		Logger().Error("rendering failed", "error", err)
		if frameErr == nil {
			frameErr = err
		}
		win.Destroy()
	}
	draw := func() {
		mu.RLock()
		err := rnd.DrawScene()
		mu.RUnlock()
		if err != nil {
			fail(err)
		}
	}

	win.AddHandler(win32.WM_SIZE, func(wParam, lParam uintptr) {
		size := SizeFromLParam(lParam)
		if wParam == win32.SIZE_MINIMIZED {
			size = Size{}
		}
		mu.Lock()
		err := rnd.Resize(size)
		mu.Unlock()
		if err != nil {
			fail(err)
			return
		}
		draw()
	})
	win.AddHandler(win32.WM_PAINT, func(_, _ uintptr) {
		draw()
	})
	win.AddHandler(win32.WM_KEYDOWN, func(wParam, _ uintptr) {
		if wParam == win32.VK_ESCAPE {
			win.Destroy()
		}
	})

	win.Show()
	draw()

	loopErr := cls.MessageLoop()
	return errors.Join(frameErr, loopErr)
}
