//go:build !windows

package hellod3d

import (
	"fmt"
	"runtime"
)

func runD3D11(*Config) error {
	return fmt.Errorf("%w: %s on %s", ErrBackendUnsupported, BackendD3D11, runtime.GOOS)
}
