package hellod3d

import (
	"errors"
	"fmt"
)

// ErrBackendUnsupported is returned when the selected backend cannot run on the current platform.
var ErrBackendUnsupported = errors.New("backend not supported on this platform")

// Run opens the window of the configured backend, draws the scene and
// blocks until the window is closed.
//
// The software backend runs on top of the Gio event loop: Run must then be
// called from a goroutine other than main while main calls app.Main.
func Run(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	switch cfg.Renderer.Backend {
	case BackendD3D11:
		return runD3D11(cfg)
	case BackendSoftware:
		return NewPreview(cfg).Run()
	}
	return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, cfg.Renderer.Backend)
}
